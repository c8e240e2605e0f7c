package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultSearchResults = 5

// SearchTool answers search_web calls through the Serper.dev API.
type SearchTool struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

func NewSearchTool(apiKey string) *SearchTool {
	return &SearchTool{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://google.serper.dev/search",
	}
}

func (t *SearchTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "search_web",
		Description: "Search the web for current and real-time information: dates, news, weather, latest information on any topic.",
		Category:    "research",
		Schema: ObjectSchema(map[string]Property{
			"query": {
				Type:        TypeString,
				Description: "The search query to run.",
			},
			"num_results": {
				Type:        TypeInteger,
				Description: "How many results to return. Defaults to 5.",
			},
		}, "query"),
	}
}

type serperResult struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("query required")
	}

	limit := defaultSearchResults
	if n, ok := args["num_results"].(int); ok && n > 0 {
		limit = n
	}

	if t.apiKey == "" {
		return "", fmt.Errorf("no Serper API key found in config; run 'twincli config' to set one")
	}

	payload, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("search failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result serperResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search results: %w", err)
	}

	var parts []string
	for i, r := range result.Organic {
		if i >= limit {
			break
		}
		parts = append(parts, fmt.Sprintf("**%s**\n%s\n%s", r.Title, r.Snippet, r.Link))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No results found for '%s'.", query), nil
	}

	return fmt.Sprintf("Top search results for '%s':\n\n%s", query, strings.Join(parts, "\n\n")), nil
}
