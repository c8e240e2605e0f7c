package tools

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateTool is returned by Register when a tool with the same name
// already exists in the registry.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ToolDefinition describes a tool's interface to the LLM. The handler itself
// lives behind the Tool interface and is never serialized.
type ToolDefinition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"-"` // informational grouping, not sent to the model
	Schema      *Schema `json:"parameters"`
}

// Tool represents a callable tool
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry holds the available tools. It is populated once at startup and
// read-only afterwards, so it can be shared without locking.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. It fails on a duplicate name or a schema whose
// required list references an undeclared property, leaving the registry
// unchanged in both cases.
func (r *Registry) Register(t Tool) error {
	def := t.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}
	if def.Schema != nil {
		if err := def.Schema.Check(); err != nil {
			return fmt.Errorf("tool %s: %w", def.Name, err)
		}
	}
	r.tools[def.Name] = t
	r.order = append(r.order, def.Name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tool declarations in registration order. Calling it twice
// without an intervening Register yields identical output.
func (r *Registry) List() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

func (r *Registry) Len() int {
	return len(r.order)
}
