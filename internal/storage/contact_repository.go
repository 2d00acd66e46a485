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

// ContactRepository handles contact data persistence.
// Every status write is a conditional update guarded by the expected current
// status, so concurrent writers can never double-claim or regress a contact.
type ContactRepository struct {
	db *PostgresDB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *PostgresDB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, user_id, full_name, linkedin_url, raw_role, company_name,
	   status, draft_message, strategy_tag, created_at`

func scanContact(row pgx.Row) (*models.Contact, error) {
	var contact models.Contact

	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.FullName,
		&contact.LinkedInURL,
		&contact.RawRole,
		&contact.CompanyName,
		&contact.Status,
		&contact.DraftMessage,
		&contact.StrategyTag,
		&contact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// BatchCreate inserts a batch of NEW contacts in a single transaction and
// returns the generated IDs in input order.
func (r *ContactRepository) BatchCreate(ctx context.Context, contacts []*models.Contact) ([]string, error) {
	if len(contacts) == 0 {
		return nil, nil
	}

	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // no-op after commit

	query := `
		INSERT INTO contacts (id, user_id, full_name, linkedin_url, raw_role, company_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	ids := make([]string, 0, len(contacts))

	for _, contact := range contacts {
		if contact.ID == "" {
			contact.ID = uuid.New().String()
		}
		if contact.Status == "" {
			contact.Status = types.StatusNew
		}
		contact.CreatedAt = now

		_, err := tx.Exec(ctx, query,
			contact.ID,
			contact.UserID,
			contact.FullName,
			contact.LinkedInURL,
			contact.RawRole,
			contact.CompanyName,
			contact.Status,
			contact.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert contact: %w", err)
		}

		ids = append(ids, contact.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contacts: %w", err)
	}

	return ids, nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE id = $1`, contactColumns)

	contact, err := scanContact(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "CONTACT_NOT_FOUND",
				Message: fmt.Sprintf("contact not found: %s", id),
			}
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// ListByUser retrieves paginated contacts for a user, newest first
func (r *ContactRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, contactColumns)

	return r.listContacts(ctx, query, userID, limit, offset)
}

// ListByUserAndStatus retrieves paginated contacts for a user filtered by status
func (r *ContactRepository) ListByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus, limit, offset int) ([]*models.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM contacts
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, contactColumns)

	return r.listContacts(ctx, query, userID, status, limit, offset)
}

func (r *ContactRepository) listContacts(ctx context.Context, query string, args ...interface{}) ([]*models.Contact, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// CountByUser returns the total number of contacts for a user
func (r *ContactRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM contacts WHERE user_id = $1`

	err := r.db.Pool().QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	return count, nil
}

// CountByUserAndStatus returns the number of a user's contacts in a given status
func (r *ContactRepository) CountByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM contacts WHERE user_id = $1 AND status = $2`

	err := r.db.Pool().QueryRow(ctx, query, userID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contacts by status: %w", err)
	}

	return count, nil
}

// TransitionStatus performs a compare-and-swap status transition. It succeeds
// for exactly one caller when writers race: the update only matches when the
// contact is still in the expected status. Returns false when the row did not
// match (already claimed, archived, or moved on).
func (r *ContactRepository) TransitionStatus(ctx context.Context, id string, from, to types.ContactStatus) (bool, error) {
	query := `
		UPDATE contacts
		SET status = $3
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Pool().Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to transition contact status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CompleteDraft stores the generated draft and moves the contact to
// DRAFT_READY in a single conditional statement. Returns false when the
// contact is no longer RESEARCHING (e.g., archived concurrently); the caller
// discards the draft in that case.
func (r *ContactRepository) CompleteDraft(ctx context.Context, id string, message string, tag types.StrategyTag) (bool, error) {
	query := `
		UPDATE contacts
		SET status = $4, draft_message = $2, strategy_tag = $3
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.Pool().Exec(ctx, query, id, message, tag, types.StatusDraftReady, types.StatusResearching)
	if err != nil {
		return false, fmt.Errorf("failed to complete draft: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
