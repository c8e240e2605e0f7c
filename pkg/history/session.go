package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheEnigmaticT/twincli/pkg/llm"
)

// SessionEvent is one line in the session JSONL file.
type SessionEvent struct {
	Type       string      `json:"type"`
	UUID       string      `json:"uuid"`
	ParentUUID string      `json:"parentUuid,omitempty"`
	SessionID  string      `json:"sessionId"`
	Timestamp  string      `json:"timestamp"`
	CWD        string      `json:"cwd"`
	Message    interface{} `json:"message,omitempty"`
}

// SessionManager appends conversation turns to a per-session transcript
// under ~/.twincli/projects/<sanitized-cwd>/<session-id>.jsonl.
type SessionManager struct {
	SessionID   string
	CurrentUUID string
	FilePath    string
	CWD         string
	StartedAt   time.Time
}

func NewSessionManager(cwd string) (*SessionManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	sessionID := uuid.New().String()

	sanitized := strings.ReplaceAll(cwd, string(os.PathSeparator), "-")
	if !strings.HasPrefix(sanitized, "-") {
		sanitized = "-" + sanitized
	}

	projectDir := filepath.Join(homeDir, ".twincli", "projects", sanitized)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project dir: %w", err)
	}

	return &SessionManager{
		SessionID: sessionID,
		FilePath:  filepath.Join(projectDir, fmt.Sprintf("%s.jsonl", sessionID)),
		CWD:       cwd,
		StartedAt: time.Now(),
	}, nil
}

// Append records one conversation turn. Each event links to the previous one
// through parentUuid so a transcript reader can reconstruct ordering.
func (sm *SessionManager) Append(msg llm.Message) error {
	eventUUID := uuid.New().String()

	event := SessionEvent{
		Type:       eventType(msg.Role),
		UUID:       eventUUID,
		ParentUUID: sm.CurrentUUID,
		SessionID:  sm.SessionID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		CWD:        sm.CWD,
		Message:    eventMessage(msg),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	f, err := os.OpenFile(sm.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write session event: %w", err)
	}

	sm.CurrentUUID = eventUUID
	return nil
}

// Info returns a short human-readable session summary.
func (sm *SessionManager) Info() string {
	return fmt.Sprintf("Session %s\nStarted: %s\nTranscript: %s",
		sm.SessionID,
		sm.StartedAt.Format(time.RFC1123),
		sm.FilePath,
	)
}

func eventType(role llm.Role) string {
	if role == llm.RoleAssistant {
		return "assistant"
	}
	return "user"
}

// eventMessage flattens an llm.Message into the stored JSON shape. Tool
// results keep the tool name so transcripts stay readable on their own.
func eventMessage(msg llm.Message) interface{} {
	if msg.Role == llm.RoleTool && msg.ToolResult != nil {
		return map[string]interface{}{
			"role": "tool",
			"content": []map[string]interface{}{
				{
					"type":         "tool_result",
					"tool_call_id": msg.ToolResult.ToolCallID,
					"tool_name":    msg.ToolResult.ToolName,
					"content":      msg.ToolResult.Content,
				},
			},
		}
	}

	out := map[string]interface{}{
		"role":    string(msg.Role),
		"content": msg.Content,
	}
	if len(msg.ToolCalls) > 0 {
		calls := make([]map[string]interface{}, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			calls[i] = map[string]interface{}{
				"id":   tc.ID,
				"name": tc.Name,
				"args": tc.Args,
			}
		}
		out["tool_calls"] = calls
	}
	return out
}
