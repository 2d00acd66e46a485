package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/types"
	"google.golang.org/genai"
)

// maxDraftLen caps the generated message body
const maxDraftLen = 300

// GeminiConfig configures the Gemini draft generator
type GeminiConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

// GeminiGenerator implements DraftGenerator using the Gemini API with a
// structured JSON response schema.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger *logging.Logger
}

// NewGeminiGenerator creates a new Gemini-backed draft generator
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger *logging.Logger) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  strings.TrimSpace(cfg.Model),
		logger: logger,
	}, nil
}

type draftSchema struct {
	DraftMessage string `json:"draft_message"`
	StrategyTag  string `json:"strategy_tag"`
}

var draftOutputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"draft_message": {Type: genai.TypeString},
		"strategy_tag":  {Type: genai.TypeString},
	},
	Required: []string{"draft_message", "strategy_tag"},
}

// GenerateDraft composes a personalized outreach message for a contact
func (g *GeminiGenerator) GenerateDraft(ctx context.Context, req *DraftRequest) (*DraftResult, error) {
	prompt := buildDraftPrompt(req)

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   draftOutputSchema,
		},
	)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("gemini", err)
	}

	return parseDraftResponse(resp.Text(), g.logger)
}

// parseDraftResponse parses the model output, enforcing the message cap and
// falling back to DIRECT_PITCH when the returned tag is not one of the known
// strategy tags.
func parseDraftResponse(text string, logger *logging.Logger) (*DraftResult, error) {
	var parsed draftSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, apperrors.NewExternalServiceError("gemini", fmt.Errorf("parse structured json: %w", err))
	}

	message := strings.TrimSpace(parsed.DraftMessage)
	if message == "" {
		return nil, apperrors.NewExternalServiceError("gemini", fmt.Errorf("empty draft message"))
	}
	message = truncate(message, maxDraftLen)

	tag := types.StrategyTag(strings.ToUpper(strings.TrimSpace(parsed.StrategyTag)))
	if !types.ValidStrategyTag(tag) {
		if logger != nil {
			logger.WithField("strategy_tag", parsed.StrategyTag).Warn("unknown strategy tag, falling back to DIRECT_PITCH")
		}
		tag = types.StrategyDirectPitch
	}

	return &DraftResult{Message: message, StrategyTag: tag}, nil
}

func buildDraftPrompt(req *DraftRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an outreach assistant writing a short, personalized LinkedIn message.\n\n")
	sb.WriteString(fmt.Sprintf("Sender mission: %s\n", req.MissionStatement))
	sb.WriteString(fmt.Sprintf("Sender intent: %s\n\n", req.Intent))
	sb.WriteString(fmt.Sprintf("Recipient: %s, %s at %s\n", req.FullName, req.RawRole, req.CompanyName))

	if req.NewsSummary != "" {
		sb.WriteString(fmt.Sprintf("Recent company news: %s\n", req.NewsSummary))
	}
	if req.PainPoints != "" {
		sb.WriteString(fmt.Sprintf("Likely pain points: %s\n", req.PainPoints))
	}

	sb.WriteString(`
Write a message under 300 characters. Pick exactly one strategy tag from:
PAIN_POINT, VALIDATION_ASK, DIRECT_PITCH, MUTUAL_CONNECTION, INDUSTRY_TREND.

Return ONLY a single JSON object with keys:
- draft_message (string, under 300 characters)
- strategy_tag (string, one of the tags above)
`)

	return strings.TrimSpace(sb.String())
}
