package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// SearchToolName is the single tool name the model is allowed to call.
const SearchToolName = "web_search"

// ErrMissingQuery indicates a search call without a usable query argument.
var ErrMissingQuery = errors.New("missing query argument")

// SearchResult is one ranked web search hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher is the external search capability, specified only at this
// boundary. The production implementation is Tavily.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchHandler adapts a Searcher to the registry's Handler contract.
type SearchHandler struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewSearchHandler creates the web_search handler.
func NewSearchHandler(searcher Searcher, logger *slog.Logger) (*SearchHandler, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{searcher: searcher, logger: logger}, nil
}

// Invoke runs one search. Args must carry a non-empty "query" string.
// The returned value is []SearchResult in rank order.
func (h *SearchHandler) Invoke(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%s: %w", SearchToolName, ErrMissingQuery)
	}

	h.logger.Debug("web search", "query", query)

	results, err := h.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SearchToolName, err)
	}

	h.logger.Debug("web search done", "query", query, "results", len(results))
	return results, nil
}

// ResultURLs extracts the URLs of a search output in rank order.
// Non-search outputs yield nil.
func ResultURLs(output any) []string {
	results, ok := output.([]SearchResult)
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}
