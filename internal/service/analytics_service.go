package service

import (
	"context"

	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/types"
)

// AnalyticsService computes per-user outreach performance aggregates
type AnalyticsService struct {
	outreachRepo OutreachRepository
	contactRepo  ContactRepository
	cache        Cache
	logger       *logging.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	outreachRepo OutreachRepository,
	contactRepo ContactRepository,
	cache Cache,
	logger *logging.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		outreachRepo: outreachRepo,
		contactRepo:  contactRepo,
		cache:        cache,
		logger:       logger,
	}
}

// StrategyStats aggregates outcomes for one strategy tag
type StrategyStats struct {
	Sent            int      `json:"sent"`
	Replied         int      `json:"replied"`
	Ghosted         int      `json:"ghosted"`
	Bounced         int      `json:"bounced"`
	ReplyRate       float64  `json:"replyRate"`
	RepliedMessages []string `json:"repliedMessages"`
}

// Dashboard is the analytics summary for a user
type Dashboard struct {
	TotalContacts   int64                                `json:"totalContacts"`
	TotalSent       int                                  `json:"totalSent"`
	TotalReplied    int                                  `json:"totalReplied"`
	PendingFeedback int                                  `json:"pendingFeedback"`
	ReplyRate       float64                              `json:"replyRate"`
	ByStrategy      map[types.StrategyTag]*StrategyStats `json:"byStrategy"`
}

// GetDashboard computes the user's outreach dashboard, served from cache when
// fresh. Reply rates only count attempts with a recorded outcome.
func (s *AnalyticsService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	cacheKey := s.cache.GenerateAnalyticsKey(userID)

	var cached Dashboard
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	} else if err != nil {
		s.logger.WithError(err).Warn("analytics cache read failed")
	}

	totalContacts, err := s.contactRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.outreachRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		TotalContacts: totalContacts,
		ByStrategy:    make(map[types.StrategyTag]*StrategyStats),
	}

	var totalConcluded int
	for _, attempt := range attempts {
		dashboard.TotalSent++

		stats, ok := dashboard.ByStrategy[attempt.StrategyTag]
		if !ok {
			stats = &StrategyStats{}
			dashboard.ByStrategy[attempt.StrategyTag] = stats
		}
		stats.Sent++

		if attempt.Outcome == nil {
			dashboard.PendingFeedback++
			continue
		}

		totalConcluded++
		switch *attempt.Outcome {
		case types.OutcomeReplied:
			dashboard.TotalReplied++
			stats.Replied++
			stats.RepliedMessages = append(stats.RepliedMessages, attempt.MessageBody)
		case types.OutcomeGhosted:
			stats.Ghosted++
		case types.OutcomeBounced:
			stats.Bounced++
		}
	}

	if totalConcluded > 0 {
		dashboard.ReplyRate = float64(dashboard.TotalReplied) / float64(totalConcluded)
	}
	for _, stats := range dashboard.ByStrategy {
		concluded := stats.Replied + stats.Ghosted + stats.Bounced
		if concluded > 0 {
			stats.ReplyRate = float64(stats.Replied) / float64(concluded)
		}
	}

	if err := s.cache.Set(ctx, cacheKey, dashboard); err != nil {
		s.logger.WithError(err).Warn("analytics cache write failed")
	}

	return dashboard, nil
}
