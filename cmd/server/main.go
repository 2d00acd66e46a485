// Package main provides the API server entry point for the outreach engine.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outreach-engine/internal/adapter"
	"github.com/outreach-engine/internal/api"
	"github.com/outreach-engine/internal/config"
	"github.com/outreach-engine/internal/job"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/service"
	"github.com/outreach-engine/internal/storage"
	"github.com/outreach-engine/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Initialize repositories
	profileRepo := storage.NewProfileRepository(postgres)
	contactRepo := storage.NewContactRepository(postgres)
	researchRepo := storage.NewResearchRepository(postgres)
	outreachRepo := storage.NewOutreachRepository(postgres)
	jobRepo := storage.NewEnrichmentJobRepository(postgres)

	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	// Initialize external providers
	searchClient := adapter.NewSearchClient(adapter.SearchClientConfig{
		BaseURL:           cfg.Search.BaseURL,
		APIKey:            cfg.Search.APIKey,
		Timeout:           cfg.Search.Timeout,
		RequestsPerSecond: cfg.Enrichment.SearchRPS,
	}, logger)

	geminiGenerator, err := adapter.NewGeminiGenerator(context.Background(), adapter.GeminiConfig{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize Gemini client")
	}

	// Initialize enrichment runner and services
	logger.Info("Initializing services...")

	enrichmentRunner := job.NewRunner(
		jobRepo,
		contactRepo,
		profileRepo,
		researchRepo,
		searchClient,
		geminiGenerator,
		job.RunnerConfig{
			Concurrency:    cfg.Enrichment.Concurrency,
			RequestTimeout: cfg.Enrichment.RequestTimeout,
		},
		logger,
	)

	profileService := service.NewProfileService(profileRepo)
	ingestService := service.NewIngestService(contactRepo, profileRepo, jobRepo, enrichmentRunner, cfg.Enrichment.MaxBatchSize, logger)
	contactService := service.NewContactService(contactRepo, cacheService, logger)
	outreachService := service.NewOutreachService(contactRepo, researchRepo, outreachRepo, cacheService, cfg.Feedback.Delay, logger)
	feedbackService := service.NewFeedbackService(outreachRepo, contactRepo, cacheService, logger)
	analyticsService := service.NewAnalyticsService(outreachRepo, contactRepo, cacheService, logger)

	logger.Info("Services initialized")

	// Start the feedback due-scan worker
	feedbackWorker := worker.NewFeedbackWorker(outreachRepo, cfg.Feedback.PollInterval, logger)
	if err := feedbackWorker.Start(context.Background()); err != nil {
		logger.WithError(err).Fatal("Failed to start feedback worker")
	}

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
	}

	server := api.NewServer(
		serverConfig,
		profileService,
		ingestService,
		contactService,
		outreachService,
		feedbackService,
		analyticsService,
		logger,
	)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := feedbackWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Feedback worker shutdown failed")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	logger.Info("Server stopped")
}
