package service

import (
	"context"
	"time"

	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// Repository interfaces for dependency injection

// ProfileRepository interface for profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ContactRepository interface for contact data operations
type ContactRepository interface {
	BatchCreate(ctx context.Context, contacts []*models.Contact) ([]string, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error)
	ListByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus, limit, offset int) ([]*models.Contact, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus) (int64, error)
	TransitionStatus(ctx context.Context, id string, from, to types.ContactStatus) (bool, error)
	CompleteDraft(ctx context.Context, id string, message string, tag types.StrategyTag) (bool, error)
}

// ResearchRepository interface for research data operations
type ResearchRepository interface {
	Upsert(ctx context.Context, research *models.Research) error
	GetByContactID(ctx context.Context, contactID string) (*models.Research, error)
	GetByContactIDs(ctx context.Context, contactIDs []string) (map[string]*models.Research, error)
}

// OutreachRepository interface for outreach attempt operations
type OutreachRepository interface {
	Create(ctx context.Context, attempt *models.OutreachAttempt) error
	GetByID(ctx context.Context, id string) (*models.OutreachAttempt, error)
	ListDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]*models.OutreachAttempt, error)
	ListByUser(ctx context.Context, userID string) ([]*models.OutreachAttempt, error)
	RecordOutcome(ctx context.Context, id string, outcome types.OutcomeType) error
}

// EnrichmentJobRepository interface for enrichment job operations
type EnrichmentJobRepository interface {
	Create(ctx context.Context, job *models.EnrichmentJob) error
	GetByID(ctx context.Context, id string) (*models.EnrichmentJob, error)
	IncrementProcessed(ctx context.Context, id string) error
	IncrementFailed(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) (bool, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
}

// Cache interface for the read-path cache used by feed and analytics queries
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	GenerateDraftsKey(userID string, limit, offset int) string
	GenerateAnalyticsKey(userID string) string
	InvalidateUser(ctx context.Context, userID string) error
}
