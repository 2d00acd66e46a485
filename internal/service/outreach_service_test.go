package service

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftReadyContact(id string) *models.Contact {
	msg := "Hi there, saw the funding news."
	tag := types.StrategyPainPoint
	return &models.Contact{
		ID:           id,
		UserID:       "user-1",
		FullName:     "Jane Doe",
		CompanyName:  "Acme",
		Status:       types.StatusDraftReady,
		DraftMessage: &msg,
		StrategyTag:  &tag,
	}
}

func newOutreachFixture(contacts ...*models.Contact) (*OutreachService, *mockContactRepo, *mockOutreachRepo, *mockCache) {
	contactRepo := newMockContactRepo(contacts...)
	outreachRepo := newMockOutreachRepo()
	cache := newMockCache()

	svc := NewOutreachService(contactRepo, newMockResearchRepo(), outreachRepo, cache, 72*time.Hour, testLogger())
	return svc, contactRepo, outreachRepo, cache
}

func TestSend_CreatesAttemptWithFeedbackWindow(t *testing.T) {
	svc, contactRepo, outreachRepo, cache := newOutreachFixture(draftReadyContact("c1"))

	sentAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return sentAt }

	result, err := svc.Send(context.Background(), "user-1", "c1", nil)
	require.NoError(t, err)

	assert.Equal(t, types.StatusSent, result.Contact.Status)
	assert.Equal(t, "Hi there, saw the funding news.", result.Attempt.MessageBody)
	assert.Equal(t, types.StrategyPainPoint, result.Attempt.StrategyTag)
	assert.Equal(t, sentAt, result.Attempt.SentAt)
	assert.Equal(t, sentAt.Add(72*time.Hour), result.Attempt.FeedbackDueAt)
	assert.Equal(t, types.FeedbackPending, result.Attempt.FeedbackStatus)

	stored, err := contactRepo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSent, stored.Status)

	assert.Len(t, outreachRepo.attempts, 1)
	assert.Equal(t, 1, cache.invalidated)
}

func TestSend_OverrideReplacesDraft(t *testing.T) {
	svc, _, outreachRepo, _ := newOutreachFixture(draftReadyContact("c1"))

	result, err := svc.Send(context.Background(), "user-1", "c1", &SendOverride{
		MessageBody: "Reworded before sending.",
		StrategyTag: types.StrategyValidationAsk,
	})
	require.NoError(t, err)

	assert.Equal(t, "Reworded before sending.", result.Attempt.MessageBody)
	assert.Equal(t, types.StrategyValidationAsk, result.Attempt.StrategyTag)
	assert.Len(t, outreachRepo.attempts, 1)
}

func TestSend_OverrideValidation(t *testing.T) {
	svc, contactRepo, outreachRepo, _ := newOutreachFixture(draftReadyContact("c1"))

	_, err := svc.Send(context.Background(), "user-1", "c1", &SendOverride{
		MessageBody: strings.Repeat("x", 301),
	})
	require.Error(t, err)

	_, err = svc.Send(context.Background(), "user-1", "c1", &SendOverride{
		StrategyTag: types.StrategyTag("SOMETHING_ELSE"),
	})
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "INVALID_STRATEGY_TAG", svcErr.Code)

	// Validation fails before the status swap, so the draft is still sendable.
	stored, err := contactRepo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraftReady, stored.Status)
	assert.Empty(t, outreachRepo.attempts)
}

func TestSend_SecondSendConflicts(t *testing.T) {
	svc, _, outreachRepo, _ := newOutreachFixture(draftReadyContact("c1"))

	_, err := svc.Send(context.Background(), "user-1", "c1", nil)
	require.NoError(t, err)

	_, err = svc.Send(context.Background(), "user-1", "c1", nil)
	require.Error(t, err)

	var catErr *apperrors.CategorizedError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, 409, catErr.StatusCode)

	// Exactly one attempt row exists.
	assert.Len(t, outreachRepo.attempts, 1)
}

func TestSend_NewContactRejected(t *testing.T) {
	contact := &models.Contact{ID: "c1", UserID: "user-1", Status: types.StatusNew}
	svc, _, outreachRepo, _ := newOutreachFixture(contact)

	_, err := svc.Send(context.Background(), "user-1", "c1", nil)
	require.Error(t, err)
	assert.Empty(t, outreachRepo.attempts)
}

func TestSend_WrongUserRejected(t *testing.T) {
	svc, _, _, _ := newOutreachFixture(draftReadyContact("c1"))

	_, err := svc.Send(context.Background(), "user-2", "c1", nil)
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "CONTACT_NOT_FOUND", svcErr.Code)
}

func TestDraftsFeed_IncludesResearch(t *testing.T) {
	contactRepo := newMockContactRepo(draftReadyContact("c1"))
	researchRepo := newMockResearchRepo()
	require.NoError(t, researchRepo.Upsert(context.Background(), &models.Research{
		ContactID:   "c1",
		NewsSummary: "raised a round",
		SourceURL:   "https://example.com",
	}))

	svc := NewOutreachService(contactRepo, researchRepo, newMockOutreachRepo(), newMockCache(), 72*time.Hour, testLogger())

	feed, err := svc.GetDraftsFeed(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)

	require.Len(t, feed.Drafts, 1)
	assert.Equal(t, int64(1), feed.Total)
	require.NotNil(t, feed.Drafts[0].Research)
	assert.Equal(t, "raised a round", feed.Drafts[0].Research.NewsSummary)
}

func TestDraftsFeed_ServedFromCache(t *testing.T) {
	svc, contactRepo, _, cache := newOutreachFixture(draftReadyContact("c1"))

	first, err := svc.GetDraftsFeed(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, first.Drafts, 1)

	// Mutate the store directly; the cached page should still be served.
	contactRepo.contacts["c1"].Status = types.StatusArchived

	second, err := svc.GetDraftsFeed(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, second.Drafts, 1)

	// After invalidation the fresh state is visible.
	require.NoError(t, cache.InvalidateUser(context.Background(), "user-1"))
	third, err := svc.GetDraftsFeed(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, third.Drafts, 0)
}
