package models

import (
	"time"

	"github.com/outreach-engine/internal/types"
)

// OutreachAttempt represents a single sent message awaiting feedback
type OutreachAttempt struct {
	ID             string               `json:"id" db:"id"`
	ContactID      string               `json:"contactId" db:"contact_id"`
	StrategyTag    types.StrategyTag    `json:"strategyTag" db:"strategy_tag"`
	MessageBody    string               `json:"messageBody" db:"message_body"`
	SentAt         time.Time            `json:"sentAt" db:"sent_at"`
	FeedbackDueAt  time.Time            `json:"feedbackDueAt" db:"feedback_due_at"`
	FeedbackStatus types.FeedbackStatus `json:"feedbackStatus" db:"feedback_status"`
	Outcome        *types.OutcomeType   `json:"outcome,omitempty" db:"outcome"`
}
