package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// ProfileRepository handles profile data persistence
type ProfileRepository struct {
	db *PostgresDB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *PostgresDB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile. One profile per user; a duplicate id is a conflict.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	if !types.ValidIntent(profile.IntentType) {
		return &types.ServiceError{
			Code:    "INVALID_INTENT",
			Message: fmt.Sprintf("invalid intent type: %s", profile.IntentType),
			Details: map[string]interface{}{
				"intentType": profile.IntentType,
			},
		}
	}

	profile.CreatedAt = time.Now()

	query := `
		INSERT INTO profiles (id, mission_statement, intent_type, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		profile.ID,
		profile.MissionStatement,
		profile.IntentType,
		profile.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &types.ServiceError{
				Code:    "PROFILE_EXISTS",
				Message: fmt.Sprintf("profile already exists: %s", profile.ID),
			}
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, mission_statement, intent_type, created_at
		FROM profiles
		WHERE id = $1
	`

	var profile models.Profile

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.MissionStatement,
		&profile.IntentType,
		&profile.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "PROFILE_NOT_FOUND",
				Message: fmt.Sprintf("profile not found: %s", id),
			}
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// Exists checks if a profile exists by ID
func (r *ProfileRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`

	err := r.db.Pool().QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}

	return exists, nil
}
