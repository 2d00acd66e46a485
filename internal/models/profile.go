package models

import (
	"time"

	"github.com/outreach-engine/internal/types"
)

// Profile represents a user's onboarding profile (one per user)
type Profile struct {
	ID               string           `json:"id" db:"id"`
	MissionStatement string           `json:"missionStatement" db:"mission_statement"`
	IntentType       types.IntentType `json:"intentType" db:"intent_type"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
}
