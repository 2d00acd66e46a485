package service

import (
	"context"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// ContactService handles contact listing and lifecycle operations
type ContactService struct {
	contactRepo ContactRepository
	cache       Cache
	logger      *logging.Logger
}

// NewContactService creates a new contact service
func NewContactService(contactRepo ContactRepository, cache Cache, logger *logging.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		cache:       cache,
		logger:      logger,
	}
}

// ContactPage is a paginated slice of contacts
type ContactPage struct {
	Contacts []*models.Contact `json:"contacts"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// List returns a page of the user's contacts, optionally filtered by status
func (s *ContactService) List(ctx context.Context, userID string, status *types.ContactStatus, limit, offset int) (*ContactPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		contacts []*models.Contact
		total    int64
		err      error
	)

	if status != nil {
		contacts, err = s.contactRepo.ListByUserAndStatus(ctx, userID, *status, limit, offset)
		if err != nil {
			return nil, err
		}
		total, err = s.contactRepo.CountByUserAndStatus(ctx, userID, *status)
	} else {
		contacts, err = s.contactRepo.ListByUser(ctx, userID, limit, offset)
		if err != nil {
			return nil, err
		}
		total, err = s.contactRepo.CountByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if contacts == nil {
		contacts = []*models.Contact{}
	}

	return &ContactPage{
		Contacts: contacts,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// Get returns a single contact owned by the user
func (s *ContactService) Get(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.UserID != userID {
		return nil, &types.ServiceError{
			Code:    "CONTACT_NOT_FOUND",
			Message: "contact not found: " + contactID,
		}
	}
	return contact, nil
}

// Archive moves a contact to ARCHIVED from any non-archived status. Archiving
// an already archived contact is a no-op.
func (s *ContactService) Archive(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	contact, err := s.Get(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if contact.Status == types.StatusArchived {
		return contact, nil
	}

	if !types.CanTransition(contact.Status, types.StatusArchived) {
		return nil, apperrors.NewInvalidTransitionError(contact.Status, types.StatusArchived)
	}

	claimed, err := s.contactRepo.TransitionStatus(ctx, contactID, contact.Status, types.StatusArchived)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Status moved under us; re-read and report the fresh state.
		return s.Get(ctx, userID, contactID)
	}

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate cache after archive")
	}

	contact.Status = types.StatusArchived
	return contact, nil
}
