package service

import (
	"context"
	"strings"

	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// ProfileService handles user profile management
type ProfileService struct {
	profileRepo ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// CreateProfileInput represents input for creating a profile
type CreateProfileInput struct {
	ID               string           `json:"id,omitempty"`
	MissionStatement string           `json:"missionStatement"`
	IntentType       types.IntentType `json:"intentType"`
}

// Create creates a new user profile
func (s *ProfileService) Create(ctx context.Context, input *CreateProfileInput) (*models.Profile, error) {
	if strings.TrimSpace(input.MissionStatement) == "" {
		return nil, &types.ServiceError{
			Code:    "VALIDATION_ERROR",
			Message: "mission statement is required",
		}
	}

	profile := &models.Profile{
		ID:               input.ID,
		MissionStatement: strings.TrimSpace(input.MissionStatement),
		IntentType:       input.IntentType,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Get retrieves a profile by ID
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}
