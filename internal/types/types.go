// Package types provides common type definitions for the outreach engine.
package types

import "fmt"

// IntentType represents the outreach intent declared on a profile
type IntentType string

const (
	// IntentValidation represents idea-validation outreach
	IntentValidation IntentType = "VALIDATION"
	// IntentSales represents direct sales outreach
	IntentSales IntentType = "SALES"
)

// ContactStatus represents a contact's position in the outreach lifecycle
type ContactStatus string

const (
	// StatusNew represents a freshly ingested contact
	StatusNew ContactStatus = "NEW"
	// StatusResearching represents a contact claimed by an enrichment run
	StatusResearching ContactStatus = "RESEARCHING"
	// StatusDraftReady represents a contact with research and a generated draft
	StatusDraftReady ContactStatus = "DRAFT_READY"
	// StatusSent represents a contact whose draft has been sent
	StatusSent ContactStatus = "SENT"
	// StatusArchived represents a terminally archived contact
	StatusArchived ContactStatus = "ARCHIVED"
)

// StrategyTag represents the categorical strategy of a drafted message
type StrategyTag string

const (
	StrategyPainPoint        StrategyTag = "PAIN_POINT"
	StrategyValidationAsk    StrategyTag = "VALIDATION_ASK"
	StrategyDirectPitch      StrategyTag = "DIRECT_PITCH"
	StrategyMutualConnection StrategyTag = "MUTUAL_CONNECTION"
	StrategyIndustryTrend    StrategyTag = "INDUSTRY_TREND"
)

// FeedbackStatus represents whether an outreach attempt has collected feedback
type FeedbackStatus string

const (
	// FeedbackPending represents an attempt still waiting for an outcome
	FeedbackPending FeedbackStatus = "PENDING"
	// FeedbackCompleted represents an attempt with a recorded outcome
	FeedbackCompleted FeedbackStatus = "COMPLETED"
)

// OutcomeType represents the observed result of a sent outreach attempt
type OutcomeType string

const (
	OutcomeReplied OutcomeType = "REPLIED"
	OutcomeGhosted OutcomeType = "GHOSTED"
	OutcomeBounced OutcomeType = "BOUNCED"
)

// JobStatus represents the status of an enrichment job
type JobStatus string

const (
	// JobRunning represents a job currently processing contacts
	JobRunning JobStatus = "RUNNING"
	// JobCompleted represents a job that attempted every contact
	JobCompleted JobStatus = "COMPLETED"
	// JobFailed represents a job that hit an unrecoverable batch-level failure
	JobFailed JobStatus = "FAILED"
)

// AllStrategyTags returns the closed set of strategy tags
func AllStrategyTags() []StrategyTag {
	return []StrategyTag{
		StrategyPainPoint,
		StrategyValidationAsk,
		StrategyDirectPitch,
		StrategyMutualConnection,
		StrategyIndustryTrend,
	}
}

// ValidStrategyTag reports whether tag is one of the closed strategy values
func ValidStrategyTag(tag StrategyTag) bool {
	switch tag {
	case StrategyPainPoint, StrategyValidationAsk, StrategyDirectPitch,
		StrategyMutualConnection, StrategyIndustryTrend:
		return true
	}
	return false
}

// ValidOutcome reports whether outcome is one of the closed outcome values
func ValidOutcome(outcome OutcomeType) bool {
	switch outcome {
	case OutcomeReplied, OutcomeGhosted, OutcomeBounced:
		return true
	}
	return false
}

// ValidIntent reports whether intent is one of the closed intent values
func ValidIntent(intent IntentType) bool {
	return intent == IntentValidation || intent == IntentSales
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
