package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

const (
	fetchBodyLimit = 1024 * 1024 // bytes read from the response
	fetchTextLimit = 20000       // characters handed back to the model
)

// FetchTool retrieves a webpage and converts it to markdown so the model
// gets readable text instead of raw HTML.
type FetchTool struct {
	client *http.Client
}

func NewFetchTool() *FetchTool {
	return &FetchTool{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *FetchTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "fetch_webpage",
		Description: "Fetches content from a URL and returns it as markdown.",
		Category:    "research",
		Schema: ObjectSchema(map[string]Property{
			"url": {
				Type:        TypeString,
				Description: "The URL to fetch.",
			},
		}, "url"),
	}
}

func (t *FetchTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	urlStr, _ := args["url"].(string)
	if urlStr == "" {
		return "", fmt.Errorf("url required")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "TwinCLI/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, fetchBodyLimit))
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("html parsing failed: %w", err)
	}

	if len(text) > fetchTextLimit {
		text = text[:fetchTextLimit] + "\n...[truncated]..."
	}

	return fmt.Sprintf("Content of %s:\n\n%s", urlStr, text), nil
}
