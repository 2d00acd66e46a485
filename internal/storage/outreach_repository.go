package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// OutreachRepository handles outreach attempt persistence
type OutreachRepository struct {
	db *PostgresDB
}

// NewOutreachRepository creates a new outreach repository
func NewOutreachRepository(db *PostgresDB) *OutreachRepository {
	return &OutreachRepository{db: db}
}

const outreachColumns = `id, contact_id, strategy_tag, message_body, sent_at,
	   feedback_due_at, feedback_status, outcome`

// prefixColumns qualifies a comma-separated column list with a table alias
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func scanOutreachAttempt(row pgx.Row) (*models.OutreachAttempt, error) {
	var attempt models.OutreachAttempt

	err := row.Scan(
		&attempt.ID,
		&attempt.ContactID,
		&attempt.StrategyTag,
		&attempt.MessageBody,
		&attempt.SentAt,
		&attempt.FeedbackDueAt,
		&attempt.FeedbackStatus,
		&attempt.Outcome,
	)
	if err != nil {
		return nil, err
	}

	return &attempt, nil
}

// Create records a new outreach attempt with feedback pending
func (r *OutreachRepository) Create(ctx context.Context, attempt *models.OutreachAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.FeedbackStatus == "" {
		attempt.FeedbackStatus = types.FeedbackPending
	}

	query := `
		INSERT INTO outreach_attempts (id, contact_id, strategy_tag, message_body, sent_at, feedback_due_at, feedback_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		attempt.ID,
		attempt.ContactID,
		attempt.StrategyTag,
		attempt.MessageBody,
		attempt.SentAt,
		attempt.FeedbackDueAt,
		attempt.FeedbackStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to create outreach attempt: %w", err)
	}

	return nil
}

// GetByID retrieves an outreach attempt by ID
func (r *OutreachRepository) GetByID(ctx context.Context, id string) (*models.OutreachAttempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM outreach_attempts WHERE id = $1`, outreachColumns)

	attempt, err := scanOutreachAttempt(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "OUTREACH_NOT_FOUND",
				Message: fmt.Sprintf("outreach attempt not found: %s", id),
			}
		}
		return nil, fmt.Errorf("failed to get outreach attempt: %w", err)
	}

	return attempt, nil
}

// ListDueByUser retrieves a user's attempts whose feedback is pending and due,
// oldest first
func (r *OutreachRepository) ListDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]*models.OutreachAttempt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM outreach_attempts oa
		JOIN contacts c ON c.id = oa.contact_id
		WHERE c.user_id = $1
		  AND oa.feedback_status = $2
		  AND oa.feedback_due_at <= $3
		ORDER BY oa.feedback_due_at ASC
		LIMIT $4
	`, prefixColumns("oa", outreachColumns))

	return r.listAttempts(ctx, query, userID, types.FeedbackPending, now, limit)
}

// ListByUser retrieves all attempts for a user's contacts, newest first
func (r *OutreachRepository) ListByUser(ctx context.Context, userID string) ([]*models.OutreachAttempt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM outreach_attempts oa
		JOIN contacts c ON c.id = oa.contact_id
		WHERE c.user_id = $1
		ORDER BY oa.sent_at DESC
	`, prefixColumns("oa", outreachColumns))

	return r.listAttempts(ctx, query, userID)
}

func (r *OutreachRepository) listAttempts(ctx context.Context, query string, args ...interface{}) ([]*models.OutreachAttempt, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.OutreachAttempt
	for rows.Next() {
		attempt, err := scanOutreachAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outreach attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outreach attempts: %w", err)
	}

	return attempts, nil
}

// RecordOutcome records a feedback outcome for a pending attempt. The update
// is conditional on feedback_status so a second swipe on the same attempt
// loses the race and reports a conflict instead of overwriting.
func (r *OutreachRepository) RecordOutcome(ctx context.Context, id string, outcome types.OutcomeType) error {
	query := `
		UPDATE outreach_attempts
		SET outcome = $2, feedback_status = $3
		WHERE id = $1 AND feedback_status = $4
	`

	result, err := r.db.Pool().Exec(ctx, query, id, outcome, types.FeedbackCompleted, types.FeedbackPending)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the attempt does not exist or feedback was already recorded.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return &types.ServiceError{
			Code:    "FEEDBACK_ALREADY_RECORDED",
			Message: fmt.Sprintf("feedback already recorded for attempt: %s", id),
		}
	}

	return nil
}

// CountPendingDue returns the number of pending attempts due at or before now
func (r *OutreachRepository) CountPendingDue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM outreach_attempts
		WHERE feedback_status = $1 AND feedback_due_at <= $2
	`

	err := r.db.Pool().QueryRow(ctx, query, types.FeedbackPending, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count due attempts: %w", err)
	}

	return count, nil
}
