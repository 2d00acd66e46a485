package models

import (
	"time"

	"github.com/outreach-engine/internal/types"
)

// Contact represents a prospective outreach target tracked through the lifecycle
type Contact struct {
	ID           string              `json:"id" db:"id"`
	UserID       string              `json:"userId" db:"user_id"`
	FullName     string              `json:"fullName" db:"full_name"`
	LinkedInURL  string              `json:"linkedinUrl" db:"linkedin_url"`
	RawRole      string              `json:"rawRole" db:"raw_role"`
	CompanyName  string              `json:"companyName" db:"company_name"`
	Status       types.ContactStatus `json:"status" db:"status"`
	DraftMessage *string             `json:"draftMessage,omitempty" db:"draft_message"`
	StrategyTag  *types.StrategyTag  `json:"strategyTag,omitempty" db:"strategy_tag"`
	CreatedAt    time.Time           `json:"createdAt" db:"created_at"`
}
