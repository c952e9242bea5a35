package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// SearchInput is the JSON schema the model sees for web_search calls.
type SearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query"`
}

// DefineSearchTool registers the web_search tool with Genkit so its
// schema reaches the model's tool catalog.
//
// The agent loop generates with tool requests returned rather than
// auto-executed, so this function body only runs if Genkit is ever
// asked to resolve the tool itself; it delegates to the same Searcher
// the registry handler uses.
func DefineSearchTool(g *genkit.Genkit, searcher Searcher) ai.Tool {
	return genkit.DefineTool(g, SearchToolName,
		"Search the web for current information. Returns ranked results with titles, URLs and content snippets.",
		func(ctx *ai.ToolContext, input SearchInput) ([]SearchResult, error) {
			results, err := searcher.Search(ctx, input.Query)
			if err != nil {
				return nil, fmt.Errorf("searching: %w", err)
			}
			return results, nil
		})
}
