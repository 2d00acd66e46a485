package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// maxSendMessageLen caps user-edited message bodies, matching the draft cap.
const maxSendMessageLen = 300

// OutreachService handles the drafts feed and the send action
type OutreachService struct {
	contactRepo   ContactRepository
	researchRepo  ResearchRepository
	outreachRepo  OutreachRepository
	cache         Cache
	feedbackDelay time.Duration
	logger        *logging.Logger
	now           func() time.Time
}

// NewOutreachService creates a new outreach service
func NewOutreachService(
	contactRepo ContactRepository,
	researchRepo ResearchRepository,
	outreachRepo OutreachRepository,
	cache Cache,
	feedbackDelay time.Duration,
	logger *logging.Logger,
) *OutreachService {
	return &OutreachService{
		contactRepo:   contactRepo,
		researchRepo:  researchRepo,
		outreachRepo:  outreachRepo,
		cache:         cache,
		feedbackDelay: feedbackDelay,
		logger:        logger,
		now:           time.Now,
	}
}

// DraftCard is a draft-ready contact joined with its research context
type DraftCard struct {
	Contact  *models.Contact  `json:"contact"`
	Research *models.Research `json:"research,omitempty"`
}

// DraftsFeed is a page of draft cards ready for review
type DraftsFeed struct {
	Drafts []*DraftCard `json:"drafts"`
	Total  int64        `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// GetDraftsFeed returns the user's DRAFT_READY contacts with research context,
// served from cache when fresh.
func (s *OutreachService) GetDraftsFeed(ctx context.Context, userID string, limit, offset int) (*DraftsFeed, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	cacheKey := s.cache.GenerateDraftsKey(userID, limit, offset)

	var cached DraftsFeed
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		s.logger.WithError(err).Warn("drafts feed cache read failed")
	}

	contacts, err := s.contactRepo.ListByUserAndStatus(ctx, userID, types.StatusDraftReady, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.contactRepo.CountByUserAndStatus(ctx, userID, types.StatusDraftReady)
	if err != nil {
		return nil, err
	}

	contactIDs := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		contactIDs = append(contactIDs, contact.ID)
	}

	researchByContact, err := s.researchRepo.GetByContactIDs(ctx, contactIDs)
	if err != nil {
		return nil, err
	}

	drafts := make([]*DraftCard, 0, len(contacts))
	for _, contact := range contacts {
		drafts = append(drafts, &DraftCard{
			Contact:  contact,
			Research: researchByContact[contact.ID],
		})
	}

	feed := &DraftsFeed{
		Drafts: drafts,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	if err := s.cache.Set(ctx, cacheKey, feed); err != nil {
		s.logger.WithError(err).Warn("drafts feed cache write failed")
	}

	return feed, nil
}

// SendResult reports a successful send
type SendResult struct {
	Contact *models.Contact         `json:"contact"`
	Attempt *models.OutreachAttempt `json:"attempt"`
}

// SendOverride carries user edits applied at send time. Empty fields fall
// back to the stored draft.
type SendOverride struct {
	MessageBody string
	StrategyTag types.StrategyTag
}

// Send marks a DRAFT_READY contact as SENT and records the outreach attempt
// with its feedback due time. Only one concurrent send can win the status
// swap, so at most one attempt row is created per draft.
func (s *OutreachService) Send(ctx context.Context, userID, contactID string, override *SendOverride) (*SendResult, error) {
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

	if contact.Status != types.StatusDraftReady || contact.DraftMessage == nil || contact.StrategyTag == nil {
		return nil, apperrors.NewInvalidTransitionError(contact.Status, types.StatusSent)
	}

	messageBody := *contact.DraftMessage
	strategyTag := *contact.StrategyTag
	if override != nil {
		if edited := strings.TrimSpace(override.MessageBody); edited != "" {
			if len(edited) > maxSendMessageLen {
				return nil, apperrors.NewValidationError("messageBody", fmt.Sprintf("exceeds %d characters", maxSendMessageLen))
			}
			messageBody = edited
		}
		if override.StrategyTag != "" {
			if !types.ValidStrategyTag(override.StrategyTag) {
				return nil, &types.ServiceError{
					Code:    "INVALID_STRATEGY_TAG",
					Message: "unknown strategy tag: " + string(override.StrategyTag),
				}
			}
			strategyTag = override.StrategyTag
		}
	}

	claimed, err := s.contactRepo.TransitionStatus(ctx, contactID, types.StatusDraftReady, types.StatusSent)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.NewConflictError("contact is no longer ready to send: " + contactID)
	}

	sentAt := s.now()
	attempt := &models.OutreachAttempt{
		ContactID:      contactID,
		StrategyTag:    strategyTag,
		MessageBody:    messageBody,
		SentAt:         sentAt,
		FeedbackDueAt:  sentAt.Add(s.feedbackDelay),
		FeedbackStatus: types.FeedbackPending,
	}

	if err := s.outreachRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate cache after send")
	}

	s.logger.WithFields(map[string]interface{}{
		"contact_id":   contactID,
		"attempt_id":   attempt.ID,
		"strategy_tag": attempt.StrategyTag,
	}).Info("outreach sent")

	contact.Status = types.StatusSent
	return &SendResult{Contact: contact, Attempt: attempt}, nil
}
