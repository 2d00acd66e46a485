// Package job runs the background enrichment pipeline that researches
// freshly ingested contacts and generates their outreach drafts.
package job

import (
	"context"
	"time"

	"github.com/outreach-engine/internal/adapter"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/models"
	"github.com/outreach-engine/internal/service"
	"github.com/outreach-engine/internal/types"
	"golang.org/x/sync/errgroup"
)

// RunnerConfig configures the enrichment runner
type RunnerConfig struct {
	// Concurrency bounds the number of contacts enriched in parallel
	Concurrency int
	// RequestTimeout bounds the total provider time spent per contact
	RequestTimeout time.Duration
}

// Runner executes enrichment jobs: for each contact it claims the row,
// gathers research, and writes a draft. Per-contact failures are tolerated
// and counted; only bookkeeping failures abort the whole job.
type Runner struct {
	jobRepo      service.EnrichmentJobRepository
	contactRepo  service.ContactRepository
	profileRepo  service.ProfileRepository
	researchRepo service.ResearchRepository
	research     adapter.ResearchProvider
	drafts       adapter.DraftGenerator
	cfg          RunnerConfig
	logger       *logging.Logger
}

// NewRunner creates a new enrichment runner
func NewRunner(
	jobRepo service.EnrichmentJobRepository,
	contactRepo service.ContactRepository,
	profileRepo service.ProfileRepository,
	researchRepo service.ResearchRepository,
	research adapter.ResearchProvider,
	drafts adapter.DraftGenerator,
	cfg RunnerConfig,
	logger *logging.Logger,
) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}

	return &Runner{
		jobRepo:      jobRepo,
		contactRepo:  contactRepo,
		profileRepo:  profileRepo,
		researchRepo: researchRepo,
		research:     research,
		drafts:       drafts,
		cfg:          cfg,
		logger:       logger,
	}
}

// StartJob creates the job record and launches enrichment in the background.
// An empty contact batch settles the job as COMPLETED immediately.
func (r *Runner) StartJob(ctx context.Context, userID string, contactIDs []string) (*models.EnrichmentJob, error) {
	job := &models.EnrichmentJob{
		UserID:        userID,
		TotalContacts: len(contactIDs),
		Status:        types.JobRunning,
	}

	if err := r.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if len(contactIDs) == 0 {
		if _, err := r.jobRepo.Complete(ctx, job.ID); err != nil {
			return nil, err
		}
		job.Status = types.JobCompleted
		return job, nil
	}

	// Detach from the request context so the job survives the HTTP response.
	go r.Run(context.Background(), job.ID, userID, contactIDs)

	return job, nil
}

// Run processes every contact in the batch and settles the job. Exposed for
// the runner tests and the standalone worker binary.
func (r *Runner) Run(ctx context.Context, jobID, userID string, contactIDs []string) {
	logger := r.logger.WithFields(map[string]interface{}{
		"job_id":  jobID,
		"user_id": userID,
	})

	profile, err := r.profileRepo.GetByID(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("enrichment aborted: profile lookup failed")
		r.failJob(ctx, jobID, logger)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, contactID := range contactIDs {
		contactID := contactID
		g.Go(func() error {
			return r.processContact(gctx, jobID, profile, contactID)
		})
	}

	if err := g.Wait(); err != nil {
		// Only bookkeeping errors propagate here; provider failures are
		// absorbed per contact.
		logger.WithError(err).Error("enrichment aborted: job bookkeeping failed")
		r.failJob(ctx, jobID, logger)
		return
	}

	completed, err := r.jobRepo.Complete(ctx, jobID)
	if err != nil {
		logger.WithError(err).Error("failed to settle enrichment job")
		return
	}
	if completed {
		logger.Info("enrichment job completed")
	}
}

// processContact runs the research-then-draft pipeline for one contact. The
// returned error is non-nil only for bookkeeping failures; provider failures
// are recorded via failed_count and a status rollback.
func (r *Runner) processContact(ctx context.Context, jobID string, profile *models.Profile, contactID string) error {
	logger := r.logger.WithFields(map[string]interface{}{
		"job_id":     jobID,
		"contact_id": contactID,
	})

	claimed, err := r.contactRepo.TransitionStatus(ctx, contactID, types.StatusNew, types.StatusResearching)
	if err != nil {
		return err
	}
	if !claimed {
		// Another worker owns it, or it was archived before we got here.
		logger.Debug("contact not claimable, skipping")
		return r.jobRepo.IncrementFailed(ctx, jobID)
	}

	contact, err := r.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return r.releaseAndCount(ctx, jobID, contactID, logger, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	research, err := r.research.Research(reqCtx, contact.CompanyName, contact.FullName)
	if err != nil {
		logger.WithError(err).Warn("research lookup failed")
		return r.releaseAndCount(ctx, jobID, contactID, logger, nil)
	}

	err = r.researchRepo.Upsert(ctx, &models.Research{
		ContactID:   contactID,
		NewsSummary: research.NewsSummary,
		PainPoints:  research.PainPoints,
		SourceURL:   research.SourceURL,
		RawResponse: research.RawResponse,
	})
	if err != nil {
		return r.releaseAndCount(ctx, jobID, contactID, logger, err)
	}

	draft, err := r.drafts.GenerateDraft(reqCtx, &adapter.DraftRequest{
		MissionStatement: profile.MissionStatement,
		Intent:           profile.IntentType,
		FullName:         contact.FullName,
		RawRole:          contact.RawRole,
		CompanyName:      contact.CompanyName,
		NewsSummary:      research.NewsSummary,
		PainPoints:       research.PainPoints,
	})
	if err != nil {
		logger.WithError(err).Warn("draft generation failed")
		return r.releaseAndCount(ctx, jobID, contactID, logger, nil)
	}

	stored, err := r.contactRepo.CompleteDraft(ctx, contactID, draft.Message, draft.StrategyTag)
	if err != nil {
		return err
	}
	if !stored {
		// Contact left RESEARCHING while we worked (archived). Discard the
		// draft and count the contact as failed.
		logger.Debug("contact no longer researching, draft discarded")
		return r.jobRepo.IncrementFailed(ctx, jobID)
	}

	return r.jobRepo.IncrementProcessed(ctx, jobID)
}

// releaseAndCount rolls a claimed contact back to NEW and bumps the failed
// counter. A non-nil cause is a bookkeeping failure and is returned to abort
// the job after the rollback attempt.
func (r *Runner) releaseAndCount(ctx context.Context, jobID, contactID string, logger *logging.Logger, cause error) error {
	if _, err := r.contactRepo.TransitionStatus(ctx, contactID, types.StatusResearching, types.StatusNew); err != nil {
		logger.WithError(err).Error("failed to release claimed contact")
		if cause == nil {
			cause = err
		}
	}

	if err := r.jobRepo.IncrementFailed(ctx, jobID); err != nil {
		logger.WithError(err).Error("failed to record contact failure")
		if cause == nil {
			cause = err
		}
	}

	return cause
}

func (r *Runner) failJob(ctx context.Context, jobID string, logger *logging.Logger) {
	if _, err := r.jobRepo.MarkFailed(ctx, jobID); err != nil {
		logger.WithError(err).Error("failed to mark enrichment job failed")
	}
}
