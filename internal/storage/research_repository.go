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

// ResearchRepository handles research record persistence. Each contact has at
// most one research row; re-running enrichment overwrites the previous result.
type ResearchRepository struct {
	db *PostgresDB
}

// NewResearchRepository creates a new research repository
func NewResearchRepository(db *PostgresDB) *ResearchRepository {
	return &ResearchRepository{db: db}
}

// Upsert inserts or replaces the research record for a contact
func (r *ResearchRepository) Upsert(ctx context.Context, research *models.Research) error {
	if research.ID == "" {
		research.ID = uuid.New().String()
	}
	research.UpdatedAt = time.Now()

	query := `
		INSERT INTO research (id, contact_id, news_summary, pain_points, source_url, raw_response, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contact_id) DO UPDATE
		SET news_summary = EXCLUDED.news_summary,
		    pain_points = EXCLUDED.pain_points,
		    source_url = EXCLUDED.source_url,
		    raw_response = EXCLUDED.raw_response,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		research.ID,
		research.ContactID,
		research.NewsSummary,
		research.PainPoints,
		research.SourceURL,
		research.RawResponse,
		research.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert research: %w", err)
	}

	return nil
}

// GetByContactID retrieves the research record for a contact
func (r *ResearchRepository) GetByContactID(ctx context.Context, contactID string) (*models.Research, error) {
	query := `
		SELECT id, contact_id, news_summary, pain_points, source_url, raw_response, updated_at
		FROM research
		WHERE contact_id = $1
	`

	var research models.Research

	err := r.db.Pool().QueryRow(ctx, query, contactID).Scan(
		&research.ID,
		&research.ContactID,
		&research.NewsSummary,
		&research.PainPoints,
		&research.SourceURL,
		&research.RawResponse,
		&research.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "RESEARCH_NOT_FOUND",
				Message: fmt.Sprintf("research not found for contact: %s", contactID),
			}
		}
		return nil, fmt.Errorf("failed to get research: %w", err)
	}

	return &research, nil
}

// GetByContactIDs retrieves research records for a set of contacts, keyed by
// contact ID. Contacts with no research are simply absent from the map.
func (r *ResearchRepository) GetByContactIDs(ctx context.Context, contactIDs []string) (map[string]*models.Research, error) {
	if len(contactIDs) == 0 {
		return map[string]*models.Research{}, nil
	}

	query := `
		SELECT id, contact_id, news_summary, pain_points, source_url, raw_response, updated_at
		FROM research
		WHERE contact_id = ANY($1)
	`

	rows, err := r.db.Pool().Query(ctx, query, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list research: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*models.Research, len(contactIDs))
	for rows.Next() {
		var research models.Research
		err := rows.Scan(
			&research.ID,
			&research.ContactID,
			&research.NewsSummary,
			&research.PainPoints,
			&research.SourceURL,
			&research.RawResponse,
			&research.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan research: %w", err)
		}
		result[research.ContactID] = &research
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating research: %w", err)
	}

	return result, nil
}
