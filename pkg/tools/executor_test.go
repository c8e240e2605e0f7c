package tools

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newExecutorWith(t *testing.T, toolsToAdd ...Tool) *Executor {
	t.Helper()
	r := NewRegistry()
	for _, tool := range toolsToAdd {
		if err := r.Register(tool); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return NewExecutor(r)
}

func TestExecuteToolNotFound(t *testing.T) {
	e := newExecutorWith(t)
	res := e.Execute(context.Background(), Call{Name: "ghost"})
	if res.Status != StatusError {
		t.Errorf("expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "tool not found: ghost") {
		t.Errorf("unexpected content: %q", res.Content)
	}
}

func TestExecuteValidationFailureSkipsHandler(t *testing.T) {
	var calls int32
	tool := &fakeTool{
		name:   "strict",
		schema: ObjectSchema(map[string]Property{"query": {Type: TypeString}}, "query"),
		fn: func(ctx context.Context, args map[string]interface{}) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "ran", nil
		},
	}
	e := newExecutorWith(t, tool)

	res := e.Execute(context.Background(), Call{Name: "strict", Args: map[string]interface{}{}})
	if res.Status != StatusError {
		t.Errorf("expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "query") {
		t.Errorf("error should name the missing parameter, got %q", res.Content)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("handler must never run on malformed input")
	}
}

func TestExecuteHandlerError(t *testing.T) {
	tool := &fakeTool{
		name: "flaky",
		fn: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", fmt.Errorf("backend unavailable")
		},
	}
	e := newExecutorWith(t, tool)

	res := e.Execute(context.Background(), Call{Name: "flaky"})
	if res.Status != StatusError {
		t.Errorf("expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "backend unavailable") {
		t.Errorf("result should carry the handler error, got %q", res.Content)
	}
}

func TestExecuteHandlerPanicIsRecovered(t *testing.T) {
	tool := &fakeTool{
		name: "bomb",
		fn: func(ctx context.Context, args map[string]interface{}) (string, error) {
			panic("boom")
		},
	}
	e := newExecutorWith(t, tool)

	res := e.Execute(context.Background(), Call{Name: "bomb"})
	if res.Status != StatusError {
		t.Errorf("expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "boom") {
		t.Errorf("result should mention the panic, got %q", res.Content)
	}
}

func TestExecuteLiftsStatusFromJSONPayload(t *testing.T) {
	tool := &fakeTool{
		name: "stub",
		fn: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return `{"status": "warning", "message": "not configured"}`, nil
		},
	}
	e := newExecutorWith(t, tool)

	res := e.Execute(context.Background(), Call{Name: "stub"})
	if res.Status != StatusWarning {
		t.Errorf("expected warning status lifted from payload, got %s", res.Status)
	}
	if !strings.Contains(res.Content, "not configured") {
		t.Errorf("payload must pass through unchanged, got %q", res.Content)
	}
}

func TestExecutePlainTextIsOK(t *testing.T) {
	tool := &fakeTool{name: "plain"}
	e := newExecutorWith(t, tool)

	res := e.Execute(context.Background(), Call{Name: "plain"})
	if res.Status != StatusOK {
		t.Errorf("expected ok status for plain text, got %s", res.Status)
	}
}

func TestExecuteAllPreservesRequestOrder(t *testing.T) {
	// Handlers finish in reverse order; results must still line up with the
	// request order.
	tool := &fakeTool{
		name:   "echo",
		schema: ObjectSchema(map[string]Property{"id": {Type: TypeString}}, "id"),
		fn: func(ctx context.Context, args map[string]interface{}) (string, error) {
			id := args["id"].(string)
			switch id {
			case "first":
				time.Sleep(30 * time.Millisecond)
			case "second":
				time.Sleep(15 * time.Millisecond)
			}
			return id, nil
		},
	}
	e := newExecutorWith(t, tool)

	calls := []Call{
		{ID: "1", Name: "echo", Args: map[string]interface{}{"id": "first"}},
		{ID: "2", Name: "echo", Args: map[string]interface{}{"id": "second"}},
		{ID: "3", Name: "echo", Args: map[string]interface{}{"id": "third"}},
	}
	results := e.ExecuteAll(context.Background(), calls)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].Content != want {
			t.Errorf("result %d = %q, want %q", i, results[i].Content, want)
		}
	}
}
