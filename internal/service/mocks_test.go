package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/types"
)

// Mock repositories for testing

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelError, logging.FormatJSON)
}

type mockProfileRepo struct {
	profiles map[string]*models.Profile
}

func newMockProfileRepo(profiles ...*models.Profile) *mockProfileRepo {
	m := &mockProfileRepo{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("profile-%d", len(m.profiles)+1)
	}
	if _, exists := m.profiles[profile.ID]; exists {
		return &types.ServiceError{Code: "PROFILE_EXISTS", Message: "profile already exists"}
	}
	profile.CreatedAt = time.Now()
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, &types.ServiceError{Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
	}
	return p, nil
}

func (m *mockProfileRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.profiles[id]
	return ok, nil
}

type mockContactRepo struct {
	mu       sync.Mutex
	contacts map[string]*models.Contact
	seq      int
}

func newMockContactRepo(contacts ...*models.Contact) *mockContactRepo {
	m := &mockContactRepo{contacts: map[string]*models.Contact{}}
	for _, c := range contacts {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *mockContactRepo) BatchCreate(ctx context.Context, contacts []*models.Contact) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, c := range contacts {
		if c.ID == "" {
			m.seq++
			c.ID = fmt.Sprintf("contact-%d", m.seq)
		}
		if c.Status == "" {
			c.Status = types.StatusNew
		}
		m.contacts[c.ID] = c
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (m *mockContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, &types.ServiceError{Code: "CONTACT_NOT_FOUND", Message: "contact not found"}
	}
	copied := *c
	return &copied, nil
}

func (m *mockContactRepo) byUser(userID string, status *types.ContactStatus) []*models.Contact {
	var out []*models.Contact
	for _, c := range m.contacts {
		if c.UserID != userID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockContactRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return paginate(m.byUser(userID, nil), limit, offset), nil
}

func (m *mockContactRepo) ListByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus, limit, offset int) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return paginate(m.byUser(userID, &status), limit, offset), nil
}

func (m *mockContactRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byUser(userID, nil))), nil
}

func (m *mockContactRepo) CountByUserAndStatus(ctx context.Context, userID string, status types.ContactStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byUser(userID, &status))), nil
}

func (m *mockContactRepo) TransitionStatus(ctx context.Context, id string, from, to types.ContactStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *mockContactRepo) CompleteDraft(ctx context.Context, id string, message string, tag types.StrategyTag) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok || c.Status != types.StatusResearching {
		return false, nil
	}
	c.Status = types.StatusDraftReady
	c.DraftMessage = &message
	c.StrategyTag = &tag
	return true, nil
}

func paginate(contacts []*models.Contact, limit, offset int) []*models.Contact {
	if offset >= len(contacts) {
		return []*models.Contact{}
	}
	end := offset + limit
	if end > len(contacts) {
		end = len(contacts)
	}
	return contacts[offset:end]
}

type mockResearchRepo struct {
	records map[string]*models.Research
}

func newMockResearchRepo() *mockResearchRepo {
	return &mockResearchRepo{records: map[string]*models.Research{}}
}

func (m *mockResearchRepo) Upsert(ctx context.Context, research *models.Research) error {
	m.records[research.ContactID] = research
	return nil
}

func (m *mockResearchRepo) GetByContactID(ctx context.Context, contactID string) (*models.Research, error) {
	r, ok := m.records[contactID]
	if !ok {
		return nil, &types.ServiceError{Code: "RESEARCH_NOT_FOUND", Message: "research not found"}
	}
	return r, nil
}

func (m *mockResearchRepo) GetByContactIDs(ctx context.Context, contactIDs []string) (map[string]*models.Research, error) {
	out := map[string]*models.Research{}
	for _, id := range contactIDs {
		if r, ok := m.records[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type mockOutreachRepo struct {
	attempts map[string]*models.OutreachAttempt
	seq      int
}

func newMockOutreachRepo(attempts ...*models.OutreachAttempt) *mockOutreachRepo {
	m := &mockOutreachRepo{attempts: map[string]*models.OutreachAttempt{}}
	for _, a := range attempts {
		m.attempts[a.ID] = a
	}
	return m
}

func (m *mockOutreachRepo) Create(ctx context.Context, attempt *models.OutreachAttempt) error {
	if attempt.ID == "" {
		m.seq++
		attempt.ID = fmt.Sprintf("attempt-%d", m.seq)
	}
	m.attempts[attempt.ID] = attempt
	return nil
}

func (m *mockOutreachRepo) GetByID(ctx context.Context, id string) (*models.OutreachAttempt, error) {
	a, ok := m.attempts[id]
	if !ok {
		return nil, &types.ServiceError{Code: "OUTREACH_NOT_FOUND", Message: "outreach attempt not found"}
	}
	return a, nil
}

func (m *mockOutreachRepo) ListDueByUser(ctx context.Context, userID string, now time.Time, limit int) ([]*models.OutreachAttempt, error) {
	// The mock ignores ownership; service tests pair it with contacts owned
	// by a single user.
	var out []*models.OutreachAttempt
	for _, a := range m.attempts {
		if a.FeedbackStatus == types.FeedbackPending && !a.FeedbackDueAt.After(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeedbackDueAt.Before(out[j].FeedbackDueAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockOutreachRepo) ListByUser(ctx context.Context, userID string) ([]*models.OutreachAttempt, error) {
	var out []*models.OutreachAttempt
	for _, a := range m.attempts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockOutreachRepo) RecordOutcome(ctx context.Context, id string, outcome types.OutcomeType) error {
	a, ok := m.attempts[id]
	if !ok {
		return &types.ServiceError{Code: "OUTREACH_NOT_FOUND", Message: "outreach attempt not found"}
	}
	if a.FeedbackStatus != types.FeedbackPending {
		return &types.ServiceError{Code: "FEEDBACK_ALREADY_RECORDED", Message: "feedback already recorded"}
	}
	a.FeedbackStatus = types.FeedbackCompleted
	a.Outcome = &outcome
	return nil
}

type mockJobRepo struct {
	jobs map[string]*models.EnrichmentJob
	seq  int
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: map[string]*models.EnrichmentJob{}}
}

func (m *mockJobRepo) Create(ctx context.Context, job *models.EnrichmentJob) error {
	if job.ID == "" {
		m.seq++
		job.ID = fmt.Sprintf("job-%d", m.seq)
	}
	m.jobs[job.ID] = job
	return nil
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (*models.EnrichmentJob, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, &types.ServiceError{Code: "JOB_NOT_FOUND", Message: "enrichment job not found"}
	}
	return j, nil
}

func (m *mockJobRepo) IncrementProcessed(ctx context.Context, id string) error {
	if j, ok := m.jobs[id]; ok && j.Status == types.JobRunning {
		j.ProcessedCount++
	}
	return nil
}

func (m *mockJobRepo) IncrementFailed(ctx context.Context, id string) error {
	if j, ok := m.jobs[id]; ok && j.Status == types.JobRunning {
		j.FailedCount++
	}
	return nil
}

func (m *mockJobRepo) Complete(ctx context.Context, id string) (bool, error) {
	j, ok := m.jobs[id]
	if !ok || j.Status != types.JobRunning {
		return false, nil
	}
	j.Status = types.JobCompleted
	return true, nil
}

func (m *mockJobRepo) MarkFailed(ctx context.Context, id string) (bool, error) {
	j, ok := m.jobs[id]
	if !ok || j.Status != types.JobRunning {
		return false, nil
	}
	j.Status = types.JobFailed
	return true, nil
}

// mockCache is an in-memory Cache implementation tracking invalidations
type mockCache struct {
	mu           sync.Mutex
	entries      map[string][]byte
	invalidated  int
	disableCache bool
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disableCache {
		return false, nil
	}
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *mockCache) GenerateDraftsKey(userID string, limit, offset int) string {
	return fmt.Sprintf("drafts:%s:%d:%d", strings.ToLower(userID), limit, offset)
}

func (m *mockCache) GenerateAnalyticsKey(userID string) string {
	return "analytics:" + strings.ToLower(userID)
}

func (m *mockCache) InvalidateUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	for key := range m.entries {
		if strings.Contains(key, strings.ToLower(userID)) {
			delete(m.entries, key)
		}
	}
	return nil
}

// mockStarter records StartJob calls without running enrichment
type mockStarter struct {
	jobRepo    *mockJobRepo
	lastBatch  []string
	lastUserID string
}

func (m *mockStarter) StartJob(ctx context.Context, userID string, contactIDs []string) (*models.EnrichmentJob, error) {
	m.lastUserID = userID
	m.lastBatch = contactIDs

	job := &models.EnrichmentJob{
		UserID:        userID,
		TotalContacts: len(contactIDs),
		Status:        types.JobRunning,
	}
	if err := m.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	if len(contactIDs) == 0 {
		if _, err := m.jobRepo.Complete(ctx, job.ID); err != nil {
			return nil, err
		}
	}
	return job, nil
}
