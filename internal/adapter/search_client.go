package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/outreach-engine/internal/errors"
	"github.com/outreach-engine/internal/logging"
	"github.com/outreach-engine/internal/retry"
	"golang.org/x/time/rate"
)

const (
	// maxNewsSummaryLen caps the stored news summary
	maxNewsSummaryLen = 2000
	// maxPainPointsLen caps the stored pain points text
	maxPainPointsLen = 1000
	// maxHits is how many search hits contribute to the summary
	maxHits = 3
)

// SearchClientConfig configures the search provider client
type SearchClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RequestsPerSecond throttles outbound search calls across the whole
	// enrichment pool. Zero disables throttling.
	RequestsPerSecond float64
}

// SearchClient implements ResearchProvider against the You.com search API
type SearchClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCfg   *retry.Config
	logger     *logging.Logger
}

// NewSearchClient creates a new search provider client
func NewSearchClient(cfg SearchClientConfig, logger *logging.Logger) *SearchClient {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SearchClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

type searchHit struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Snippets    []string `json:"snippets"`
}

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

// Research queries the search API for recent company signals and distills the
// top hits into a summary and pain points.
func (c *SearchClient) Research(ctx context.Context, companyName, fullName string) (*ResearchResult, error) {
	query := fmt.Sprintf("%s company news challenges", companyName)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	var body []byte
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context, attempt int) error {
		var reqErr error
		body, reqErr = c.doSearch(ctx, query)
		return reqErr
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("search", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewExternalServiceError("search", fmt.Errorf("decode response: %w", err))
	}

	result := distillHits(parsed.Hits)
	result.RawResponse = body

	c.logger.WithFields(map[string]interface{}{
		"company": companyName,
		"hits":    len(parsed.Hits),
	}).Debug("research lookup completed")

	return result, nil
}

func (c *SearchClient) doSearch(ctx context.Context, query string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?query=%s&count=%d", c.baseURL, url.QueryEscape(query), maxHits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	return body, nil
}

// distillHits reduces raw search hits to the stored research fields. The
// summary joins snippets from the top hits; pain points come from the first
// hit's description.
func distillHits(hits []searchHit) *ResearchResult {
	result := &ResearchResult{}
	if len(hits) == 0 {
		return result
	}

	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	var snippets []string
	for _, hit := range hits {
		if len(hit.Snippets) > 0 {
			snippets = append(snippets, hit.Snippets...)
		} else if hit.Description != "" {
			snippets = append(snippets, hit.Description)
		}
	}

	result.NewsSummary = truncate(strings.Join(snippets, " "), maxNewsSummaryLen)
	result.PainPoints = truncate(hits[0].Description, maxPainPointsLen)
	result.SourceURL = hits[0].URL

	return result
}

// truncate caps s at max bytes, backing up so a multibyte rune is never cut
// in half. Postgres rejects TEXT values that are not valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
