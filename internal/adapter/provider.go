// Package adapter contains clients for the external research and drafting
// providers. Services depend on the interfaces here, never on the concrete
// clients, so tests can substitute deterministic fakes.
package adapter

import (
	"context"

	"github.com/outreach-engine/internal/types"
)

// ResearchResult is the normalized output of a research provider lookup.
// RawResponse carries the provider payload verbatim for storage.
type ResearchResult struct {
	NewsSummary string
	PainPoints  string
	SourceURL   string
	RawResponse []byte
}

// ResearchProvider looks up public signals about a contact's company
type ResearchProvider interface {
	Research(ctx context.Context, companyName, fullName string) (*ResearchResult, error)
}

// DraftRequest carries everything the generator needs to compose a message
type DraftRequest struct {
	MissionStatement string
	Intent           types.IntentType
	FullName         string
	RawRole          string
	CompanyName      string
	NewsSummary      string
	PainPoints       string
}

// DraftResult is a generated outreach message with its chosen strategy
type DraftResult struct {
	Message     string
	StrategyTag types.StrategyTag
}

// DraftGenerator composes a personalized outreach draft
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, req *DraftRequest) (*DraftResult, error)
}
