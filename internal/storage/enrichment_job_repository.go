package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// EnrichmentJobRepository handles enrichment job persistence. Counter
// increments and terminal transitions are single conditional statements so
// concurrent workers never lose updates or resurrect a settled job.
type EnrichmentJobRepository struct {
	db *PostgresDB
}

// NewEnrichmentJobRepository creates a new enrichment job repository
func NewEnrichmentJobRepository(db *PostgresDB) *EnrichmentJobRepository {
	return &EnrichmentJobRepository{db: db}
}

// Create creates a new enrichment job in RUNNING state
func (r *EnrichmentJobRepository) Create(ctx context.Context, job *models.EnrichmentJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = types.JobRunning
	}
	job.CreatedAt = time.Now()

	query := `
		INSERT INTO enrichment_jobs (id, user_id, total_contacts, processed_count, failed_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		job.ID,
		job.UserID,
		job.TotalContacts,
		job.ProcessedCount,
		job.FailedCount,
		job.Status,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrichment job: %w", err)
	}

	return nil
}

// GetByID retrieves an enrichment job by ID
func (r *EnrichmentJobRepository) GetByID(ctx context.Context, id string) (*models.EnrichmentJob, error) {
	query := `
		SELECT id, user_id, total_contacts, processed_count, failed_count, status, created_at, completed_at
		FROM enrichment_jobs
		WHERE id = $1
	`

	var job models.EnrichmentJob

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.UserID,
		&job.TotalContacts,
		&job.ProcessedCount,
		&job.FailedCount,
		&job.Status,
		&job.CreatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "JOB_NOT_FOUND",
				Message: fmt.Sprintf("enrichment job not found: %s", id),
			}
		}
		return nil, fmt.Errorf("failed to get enrichment job: %w", err)
	}

	return &job, nil
}

// IncrementProcessed atomically bumps the processed counter. The guard on
// status keeps counters frozen once the job has settled.
func (r *EnrichmentJobRepository) IncrementProcessed(ctx context.Context, id string) error {
	query := `
		UPDATE enrichment_jobs
		SET processed_count = processed_count + 1
		WHERE id = $1 AND status = $2
	`

	_, err := r.db.Pool().Exec(ctx, query, id, types.JobRunning)
	if err != nil {
		return fmt.Errorf("failed to increment processed count: %w", err)
	}

	return nil
}

// IncrementFailed atomically bumps the failed counter
func (r *EnrichmentJobRepository) IncrementFailed(ctx context.Context, id string) error {
	query := `
		UPDATE enrichment_jobs
		SET failed_count = failed_count + 1
		WHERE id = $1 AND status = $2
	`

	_, err := r.db.Pool().Exec(ctx, query, id, types.JobRunning)
	if err != nil {
		return fmt.Errorf("failed to increment failed count: %w", err)
	}

	return nil
}

// Complete marks a RUNNING job as COMPLETED. Returns false when the job has
// already settled (e.g., marked FAILED by another path).
func (r *EnrichmentJobRepository) Complete(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE enrichment_jobs
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Pool().Exec(ctx, query, id, types.JobCompleted, time.Now(), types.JobRunning)
	if err != nil {
		return false, fmt.Errorf("failed to complete enrichment job: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkFailed marks a RUNNING job as FAILED
func (r *EnrichmentJobRepository) MarkFailed(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE enrichment_jobs
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.Pool().Exec(ctx, query, id, types.JobFailed, time.Now(), types.JobRunning)
	if err != nil {
		return false, fmt.Errorf("failed to mark enrichment job failed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
