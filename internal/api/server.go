// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/service"
	"github.com/outreach-engine/internal/types"
)

// Service interfaces for dependency injection and testing

// ProfileServiceInterface defines the interface for profile operations
type ProfileServiceInterface interface {
	Create(ctx context.Context, input *service.CreateProfileInput) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
}

// IngestServiceInterface defines the interface for CSV ingest operations
type IngestServiceInterface interface {
	Upload(ctx context.Context, userID string, file io.Reader) (*service.IngestResult, error)
	JobStatus(ctx context.Context, userID, jobID string) (*models.EnrichmentJob, error)
}

// ContactServiceInterface defines the interface for contact operations
type ContactServiceInterface interface {
	List(ctx context.Context, userID string, status *types.ContactStatus, limit, offset int) (*service.ContactPage, error)
	Archive(ctx context.Context, userID, contactID string) (*models.Contact, error)
}

// OutreachServiceInterface defines the interface for drafts feed and send
type OutreachServiceInterface interface {
	GetDraftsFeed(ctx context.Context, userID string, limit, offset int) (*service.DraftsFeed, error)
	Send(ctx context.Context, userID, contactID string, override *service.SendOverride) (*service.SendResult, error)
}

// FeedbackServiceInterface defines the interface for feedback operations
type FeedbackServiceInterface interface {
	Queue(ctx context.Context, userID string, limit int) ([]*service.QueueItem, error)
	RecordOutcome(ctx context.Context, userID, attemptID string, outcome types.OutcomeType) (*models.OutreachAttempt, error)
}

// AnalyticsServiceInterface defines the interface for analytics operations
type AnalyticsServiceInterface interface {
	GetDashboard(ctx context.Context, userID string) (*service.Dashboard, error)
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	profileService   ProfileServiceInterface
	ingestService    IngestServiceInterface
	contactService   ContactServiceInterface
	outreachService  OutreachServiceInterface
	feedbackService  FeedbackServiceInterface
	analyticsService AnalyticsServiceInterface
	config           *ServerConfig
	logger           *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	profileService ProfileServiceInterface,
	ingestService IngestServiceInterface,
	contactService ContactServiceInterface,
	outreachService OutreachServiceInterface,
	feedbackService FeedbackServiceInterface,
	analyticsService AnalyticsServiceInterface,
	logger *logging.Logger,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		profileService:   profileService,
		ingestService:    ingestService,
		contactService:   contactService,
		outreachService:  outreachService,
		feedbackService:  feedbackService,
		analyticsService: analyticsService,
		config:           config,
		logger:           logger,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS)

	// Middleware order matters
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Profile endpoints
	api.HandleFunc("/profiles", s.handleCreateProfile).Methods("POST")
	api.HandleFunc("/profiles/{id}", s.handleGetProfile).Methods("GET")

	// Ingest endpoints
	api.HandleFunc("/ingest/upload", s.handleIngestUpload).Methods("POST")
	api.HandleFunc("/ingest/status/{id}", s.handleIngestStatus).Methods("GET")

	// Contact endpoints
	api.HandleFunc("/contacts/list", s.handleListContacts).Methods("GET")
	api.HandleFunc("/contacts/{id}/archive", s.handleArchiveContact).Methods("POST")

	// Feed and action endpoints
	api.HandleFunc("/feed/drafts", s.handleDraftsFeed).Methods("GET")
	api.HandleFunc("/action/send", s.handleSend).Methods("POST")

	// Feedback endpoints
	api.HandleFunc("/feedback/queue", s.handleFeedbackQueue).Methods("GET")
	api.HandleFunc("/feedback/swipe", s.handleFeedbackSwipe).Methods("POST")

	// Analytics endpoints
	api.HandleFunc("/analytics/dashboard", s.handleAnalyticsDashboard).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "outreach-engine",
	})
}

// requireUserID extracts the caller's user ID from the X-User-ID header.
// Writes a 400 response and returns false when missing.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "X-User-ID header is required", nil)
		return "", false
	}
	return userID, true
}

// Handler returns the root HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
