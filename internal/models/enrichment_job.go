package models

import (
	"time"

	"github.com/outreach-engine/internal/types"
)

// EnrichmentJob represents a batch research+draft run over a set of contacts.
// Counters are mutated only through single-statement conditional updates in the
// repository, so processed + failed never exceeds total.
type EnrichmentJob struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"userId" db:"user_id"`
	TotalContacts  int             `json:"totalContacts" db:"total_contacts"`
	ProcessedCount int             `json:"processedCount" db:"processed_count"`
	FailedCount    int             `json:"failedCount" db:"failed_count"`
	Status         types.JobStatus `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}

// Settled reports whether every contact in the batch has been attempted.
func (j *EnrichmentJob) Settled() bool {
	return j.ProcessedCount+j.FailedCount == j.TotalContacts
}
