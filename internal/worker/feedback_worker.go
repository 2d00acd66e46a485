// Package worker contains background polling loops that run alongside the
// HTTP server.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/outreach-engine/internal/logging"
)

// DueCounter reports how many pending outreach attempts have crossed their
// feedback due time. Implemented by storage.OutreachRepository.
type DueCounter interface {
	CountPendingDue(ctx context.Context, now time.Time) (int64, error)
}

// FeedbackWorker periodically scans for outreach attempts whose feedback
// window has elapsed. Due attempts are never mutated here; they surface in
// the feedback queue until the user records an outcome. The worker exists to
// make due counts observable without a request hitting the API.
type FeedbackWorker struct {
	counter      DueCounter
	pollInterval time.Duration
	logger       *logging.Logger

	running bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFeedbackWorker creates a new feedback worker
func NewFeedbackWorker(counter DueCounter, pollInterval time.Duration, logger *logging.Logger) *FeedbackWorker {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}

	return &FeedbackWorker{
		counter:      counter,
		pollInterval: pollInterval,
		logger:       logger,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start launches the polling loop in a goroutine
func (w *FeedbackWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("feedback worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.WithField("poll_interval", w.pollInterval.String()).Info("feedback worker started")

	go w.pollLoop(ctx)

	return nil
}

// Stop signals the polling loop to exit and waits for it to finish
func (w *FeedbackWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("feedback worker is not running")
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		w.logger.Info("feedback worker stopped")
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

func (w *FeedbackWorker) pollLoop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Scan once at startup so a restart does not wait a full interval.
	w.scan(ctx)

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *FeedbackWorker) scan(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	due, err := w.counter.CountPendingDue(scanCtx, time.Now())
	if err != nil {
		w.logger.WithError(err).Error("feedback due scan failed")
		return
	}

	if due > 0 {
		w.logger.WithField("due_attempts", due).Info("outreach attempts awaiting feedback")
	}
}
