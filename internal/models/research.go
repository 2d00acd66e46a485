package models

import "time"

// Research represents the structured web-search summary for a contact.
// One row per contact, overwritten on re-research.
type Research struct {
	ID          string    `json:"id" db:"id"`
	ContactID   string    `json:"contactId" db:"contact_id"`
	NewsSummary string    `json:"newsSummary" db:"news_summary"`
	PainPoints  string    `json:"painPoints" db:"pain_points"`
	SourceURL   string    `json:"sourceUrl" db:"source_url"`
	RawResponse []byte    `json:"-" db:"raw_response"` // verbatim provider payload (JSONB)
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
