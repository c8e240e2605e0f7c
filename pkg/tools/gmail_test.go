package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestGmailStubReturnsWarning(t *testing.T) {
	tool := &GmailTool{}

	out, err := tool.Execute(context.Background(), map[string]interface{}{"max_results": 5})
	if err != nil {
		t.Fatalf("stub must not fail: %v", err)
	}

	var resp gmailStubResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("stub output is not JSON: %v", err)
	}
	if resp.Status != "warning" {
		t.Errorf("expected warning status, got %q", resp.Status)
	}
	if !strings.Contains(resp.Message, "OAuth") {
		t.Errorf("message should mention OAuth setup, got %q", resp.Message)
	}
	if resp.Details.MaxResults != 5 {
		t.Errorf("expected max_results echoed as 5, got %d", resp.Details.MaxResults)
	}
	if resp.Details.Query != "None" {
		t.Errorf("expected query default 'None', got %q", resp.Details.Query)
	}
}

func TestGmailStubDefaults(t *testing.T) {
	tool := &GmailTool{}

	out, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatalf("stub must not fail: %v", err)
	}

	var resp gmailStubResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Details.MaxResults != 10 {
		t.Errorf("expected default max_results 10, got %d", resp.Details.MaxResults)
	}
}

func TestGmailStubThroughExecutor(t *testing.T) {
	// The warning payload must come back as a warning-status result, which
	// the conversation loop treats as a successful turn.
	e := newExecutorWith(t, &GmailTool{})

	res := e.Execute(context.Background(), Call{
		Name: "read_gmail_inbox",
		Args: map[string]interface{}{"max_results": 5.0},
	})
	if res.Status != StatusWarning {
		t.Errorf("expected warning status, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "OAuth") {
		t.Errorf("content should mention OAuth setup, got %q", res.Content)
	}
}
