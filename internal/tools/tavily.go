package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Tavily API defaults.
const (
	tavilyDefaultBaseURL = "https://api.tavily.com"
	tavilyDefaultTimeout = 30 * time.Second

	// tavilyMaxBody caps how much of a response we read, so a
	// misbehaving upstream cannot exhaust memory.
	tavilyMaxBody = 1 << 20 // 1 MB
)

// TavilyConfig configures the Tavily search client.
type TavilyConfig struct {
	APIKey     string
	BaseURL    string       // default: https://api.tavily.com
	MaxResults int          // default: 4
	HTTPClient *http.Client // default: 30s timeout client
	Logger     *slog.Logger
}

// Tavily is a Searcher backed by the Tavily search API.
type Tavily struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *slog.Logger
}

// NewTavily creates a Tavily client.
func NewTavily(cfg TavilyConfig) (*Tavily, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tavily: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = tavilyDefaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 4
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: tavilyDefaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Tavily{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		client:     client,
		logger:     logger,
	}, nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []SearchResult `json:"results"`
}

// Search runs one query against the Tavily /search endpoint and returns
// the ranked results.
func (t *Tavily) Search(ctx context.Context, query string) ([]SearchResult, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:     t.apiKey,
		Query:      query,
		MaxResults: t.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, tavilyMaxBody))
	if err != nil {
		return nil, fmt.Errorf("tavily: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.logger.Warn("tavily search failed", "status", resp.StatusCode, "query", query)
		return nil, fmt.Errorf("tavily: unexpected status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tavily: decoding response: %w", err)
	}

	return parsed.Results, nil
}
