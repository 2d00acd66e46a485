package service

import (
	"context"
	"time"

	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// FeedbackService handles the feedback queue and outcome recording
type FeedbackService struct {
	outreachRepo OutreachRepository
	contactRepo  ContactRepository
	cache        Cache
	logger       *logging.Logger
	now          func() time.Time
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	outreachRepo OutreachRepository,
	contactRepo ContactRepository,
	cache Cache,
	logger *logging.Logger,
) *FeedbackService {
	return &FeedbackService{
		outreachRepo: outreachRepo,
		contactRepo:  contactRepo,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// QueueItem is a due outreach attempt joined with its contact
type QueueItem struct {
	Attempt *models.OutreachAttempt `json:"attempt"`
	Contact *models.Contact         `json:"contact"`
}

// Queue returns the user's outreach attempts whose feedback window has
// elapsed, oldest first. Returning an attempt does not mutate it; the same
// attempt keeps appearing until an outcome is recorded.
func (s *FeedbackService) Queue(ctx context.Context, userID string, limit int) ([]*QueueItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	attempts, err := s.outreachRepo.ListDueByUser(ctx, userID, s.now(), limit)
	if err != nil {
		return nil, err
	}

	items := make([]*QueueItem, 0, len(attempts))
	for _, attempt := range attempts {
		contact, err := s.contactRepo.GetByID(ctx, attempt.ContactID)
		if err != nil {
			return nil, err
		}
		items = append(items, &QueueItem{Attempt: attempt, Contact: contact})
	}

	return items, nil
}

// RecordOutcome records a swipe outcome for a pending attempt. Recording is
// one-shot: a second outcome for the same attempt is rejected as a conflict.
func (s *FeedbackService) RecordOutcome(ctx context.Context, userID, attemptID string, outcome types.OutcomeType) (*models.OutreachAttempt, error) {
	if !types.ValidOutcome(outcome) {
		return nil, &types.ServiceError{
			Code:    "INVALID_OUTCOME",
			Message: "invalid outcome: " + string(outcome),
		}
	}

	attempt, err := s.outreachRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	contact, err := s.contactRepo.GetByID(ctx, attempt.ContactID)
	if err != nil {
		return nil, err
	}
	if contact.UserID != userID {
		return nil, &types.ServiceError{
			Code:    "OUTREACH_NOT_FOUND",
			Message: "outreach attempt not found: " + attemptID,
		}
	}

	if err := s.outreachRepo.RecordOutcome(ctx, attemptID, outcome); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate cache after swipe")
	}

	s.logger.WithFields(map[string]interface{}{
		"attempt_id": attemptID,
		"outcome":    outcome,
	}).Info("feedback recorded")

	attempt.Outcome = &outcome
	attempt.FeedbackStatus = types.FeedbackCompleted
	return attempt, nil
}
