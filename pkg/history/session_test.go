package history

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/TheEnigmaticT/twincli/pkg/llm"
)

func TestAppendLinksEvents(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	sm, err := NewSessionManager("/tmp/demo")
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	turns := []llm.Message{
		{Role: llm.RoleUser, Content: "what is the weather in Oslo"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
			{ID: "call_0", Name: "search_web", Args: map[string]interface{}{"query": "Oslo weather"}},
		}},
		{Role: llm.RoleTool, ToolResult: &llm.ToolResult{
			ToolCallID: "call_0", ToolName: "search_web", Content: "Cloudy, 12C",
		}},
		{Role: llm.RoleAssistant, Content: "It is cloudy and 12C in Oslo."},
	}
	for _, msg := range turns {
		if err := sm.Append(msg); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	f, err := os.Open(sm.FilePath)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	defer f.Close()

	var events []SessionEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev SessionEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("transcript line is not valid JSON: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != len(turns) {
		t.Fatalf("transcript has %d events, want %d", len(events), len(turns))
	}

	if events[0].ParentUUID != "" {
		t.Errorf("first event should have no parent, got %q", events[0].ParentUUID)
	}
	for i := 1; i < len(events); i++ {
		if events[i].ParentUUID != events[i-1].UUID {
			t.Errorf("event %d parentUuid = %q, want %q", i, events[i].ParentUUID, events[i-1].UUID)
		}
		if events[i].SessionID != sm.SessionID {
			t.Errorf("event %d sessionId = %q", i, events[i].SessionID)
		}
	}

	if events[0].Type != "user" || events[1].Type != "assistant" {
		t.Errorf("event types = %q, %q", events[0].Type, events[1].Type)
	}

	// The tool-result turn keeps the tool name so the transcript reads on
	// its own.
	raw, _ := json.Marshal(events[2].Message)
	if !strings.Contains(string(raw), "search_web") || !strings.Contains(string(raw), "Cloudy, 12C") {
		t.Errorf("tool result event lost context: %s", raw)
	}
}

func TestSessionPathSanitizesCWD(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	sm, err := NewSessionManager("/home/user/projects/demo")
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	if strings.Contains(sm.FilePath, "/home/user/projects/demo") {
		t.Errorf("cwd not sanitized in path: %s", sm.FilePath)
	}
	if !strings.Contains(sm.FilePath, "-home-user-projects-demo") {
		t.Errorf("unexpected project dir: %s", sm.FilePath)
	}
	if !strings.HasSuffix(sm.FilePath, sm.SessionID+".jsonl") {
		t.Errorf("transcript file not keyed by session id: %s", sm.FilePath)
	}
}

func TestInfoMentionsTranscript(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	sm, err := NewSessionManager("/tmp/demo")
	if err != nil {
		t.Fatal(err)
	}
	info := sm.Info()
	if !strings.Contains(info, sm.SessionID) || !strings.Contains(info, sm.FilePath) {
		t.Errorf("Info missing session details: %q", info)
	}
}
