package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) *http.Response
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req), nil
}

func TestSearchToolFormatsResults(t *testing.T) {
	tool := NewSearchTool("test-key")

	jsonResp := `{
		"organic": [
			{"title": "Go Language", "link": "https://go.dev", "snippet": "The Go programming language."},
			{"title": "Go Blog", "link": "https://go.dev/blog", "snippet": "News from the Go team."}
		]
	}`

	var gotKey string
	var gotBody []byte
	tool.client.Transport = &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) *http.Response {
			gotKey = req.Header.Get("X-API-KEY")
			gotBody, _ = io.ReadAll(req.Body)
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewBufferString(jsonResp)),
				Header:     make(http.Header),
			}
		},
	}

	output, err := tool.Execute(context.Background(), map[string]interface{}{"query": "golang"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("expected X-API-KEY header, got %q", gotKey)
	}
	var payload map[string]string
	if err := json.Unmarshal(gotBody, &payload); err != nil || payload["q"] != "golang" {
		t.Errorf("expected request body {\"q\": \"golang\"}, got %s", gotBody)
	}

	if !strings.Contains(output, "**Go Language**") {
		t.Errorf("expected bolded title in output, got: %s", output)
	}
	if !strings.Contains(output, "https://go.dev/blog") {
		t.Errorf("expected result link in output, got: %s", output)
	}
}

func TestSearchToolHonorsNumResults(t *testing.T) {
	tool := NewSearchTool("test-key")

	jsonResp := `{"organic": [
		{"title": "One", "link": "https://a", "snippet": "a"},
		{"title": "Two", "link": "https://b", "snippet": "b"},
		{"title": "Three", "link": "https://c", "snippet": "c"}
	]}`
	tool.client.Transport = &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewBufferString(jsonResp)),
				Header:     make(http.Header),
			}
		},
	}

	output, err := tool.Execute(context.Background(), map[string]interface{}{"query": "n", "num_results": 2})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if strings.Contains(output, "Three") {
		t.Errorf("expected output capped at 2 results, got: %s", output)
	}
}

func TestSearchToolAPIFailure(t *testing.T) {
	tool := NewSearchTool("test-key")
	tool.client.Transport = &MockRoundTripper{
		RoundTripFunc: func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: 429,
				Body:       io.NopCloser(bytes.NewBufferString(`{"message": "quota exceeded"}`)),
				Header:     make(http.Header),
			}
		},
	}

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "golang"})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
}

func TestSearchToolMissingKey(t *testing.T) {
	tool := NewSearchTool("")
	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "golang"})
	if err == nil {
		t.Fatal("expected error when no Serper key is configured")
	}
	if !strings.Contains(err.Error(), "Serper") {
		t.Errorf("error should point at the missing key, got: %v", err)
	}
}
