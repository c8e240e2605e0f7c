package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to run a tool.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ToolResult carries a tool's output back into the conversation. ToolName is
// needed because Gemini matches function responses by name, not call ID.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Content    string `json:"content"`
}

// Usage reports token counts for one model call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	Usage      *Usage      `json:"-"`
}

// Client is the model boundary: history plus tool declarations in, either
// plain text or tool calls out. Tool declarations are passed as opaque
// values and serialized by each client into its provider's wire format.
type Client interface {
	Generate(ctx context.Context, messages []Message, tools []interface{}) (*Message, error)
	GenerateStream(ctx context.Context, messages []Message, tools []interface{}, outputChan chan<- string) (*Message, error)
}

// APIError is a non-200 answer from the model API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether an error is worth retrying with backoff:
// rate limits, server-side failures, and transport errors.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") || strings.Contains(msg, "temporary")
}

// MockClient is a canned client for offline runs and tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, messages []Message, tools []interface{}) (*Message, error) {
	return &Message{
		Role:    RoleAssistant,
		Content: "I am a mock assistant.",
	}, nil
}

func (m *MockClient) GenerateStream(ctx context.Context, messages []Message, tools []interface{}, outputChan chan<- string) (*Message, error) {
	response := "I am a mock assistant."
	if outputChan != nil {
		for _, c := range response {
			outputChan <- string(c)
		}
	}
	return &Message{
		Role:    RoleAssistant,
		Content: response,
	}, nil
}
