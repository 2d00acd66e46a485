package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/outreach-engine/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDueCounter struct {
	calls int64
	due   int64
}

func (c *countingDueCounter) CountPendingDue(ctx context.Context, now time.Time) (int64, error) {
	atomic.AddInt64(&c.calls, 1)
	return atomic.LoadInt64(&c.due), nil
}

func TestFeedbackWorker_StartAndStop(t *testing.T) {
	counter := &countingDueCounter{due: 2}
	logger := logging.NewLogger(logging.LevelError, logging.FormatJSON)
	w := NewFeedbackWorker(counter, 10*time.Millisecond, logger)

	require.NoError(t, w.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&counter.calls) >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop(context.Background()))

	// No more scans after stop.
	stopped := atomic.LoadInt64(&counter.calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt64(&counter.calls))
}

func TestFeedbackWorker_DoubleStartFails(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, logging.FormatJSON)
	w := NewFeedbackWorker(&countingDueCounter{}, 10*time.Millisecond, logger)

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}

func TestFeedbackWorker_StopWithoutStartFails(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, logging.FormatJSON)
	w := NewFeedbackWorker(&countingDueCounter{}, 10*time.Millisecond, logger)

	assert.Error(t, w.Stop(context.Background()))
}
