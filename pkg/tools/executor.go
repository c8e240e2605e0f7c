package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Status classifies the outcome of a tool invocation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Call is a model-issued request to invoke a tool. Arguments arrive as
// loosely-typed JSON and are not guaranteed to match the tool's schema.
type Call struct {
	ID   string
	Name string
	Args map[string]interface{}
}

// Result is what a tool invocation produced. Content is always ready to be
// appended to the conversation as a tool-result turn: errors are carried
// here as text so the model can see them and recover, never as faults.
type Result struct {
	Status  Status
	Content string
}

// Executor resolves tool calls against a registry, validates arguments, and
// runs handlers inside a failure boundary. A failing or panicking handler
// yields an error-status result, not a crashed session.
type Executor struct {
	registry *Registry
}

func NewExecutor(r *Registry) *Executor {
	return &Executor{registry: r}
}

// Execute turns one Call into a Result.
func (e *Executor) Execute(ctx context.Context, call Call) Result {
	start := time.Now()

	tool, found := e.registry.Get(call.Name)
	if !found {
		log.Warn().Str("tool", call.Name).Msg("tool not found")
		return Result{Status: StatusError, Content: fmt.Sprintf("tool not found: %s", call.Name)}
	}

	def := tool.Definition()
	args, err := def.Schema.Validate(call.Args)
	if err != nil {
		log.Warn().Str("tool", call.Name).Err(err).Msg("argument validation failed")
		return Result{Status: StatusError, Content: fmt.Sprintf("invalid arguments for %s: %v", call.Name, err)}
	}

	output, err := e.invoke(ctx, tool, args)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn().Str("tool", call.Name).Dur("elapsed", elapsed).Err(err).Msg("tool execution failed")
		return Result{Status: StatusError, Content: fmt.Sprintf("Error executing %s: %v", call.Name, err)}
	}

	log.Debug().Str("tool", call.Name).Dur("elapsed", elapsed).Int("output_bytes", len(output)).Msg("tool executed")
	return Result{Status: liftStatus(output), Content: output}
}

// invoke runs the handler with panic recovery.
func (e *Executor) invoke(ctx context.Context, tool Tool, args map[string]interface{}) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Execute(ctx, args)
}

// ExecuteAll dispatches the tool calls of a single model response
// concurrently. The calls are independent of each other (the model has not
// seen any of their results yet), but results are returned in request order
// so positional matching with the response stays consistent.
func (e *Executor) ExecuteAll(ctx context.Context, calls []Call) []Result {
	if len(calls) == 1 {
		return []Result{e.Execute(ctx, calls[0])}
	}
	results := make([]Result, len(calls))
	g, ctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = e.Execute(ctx, call)
			return nil
		})
	}
	g.Wait() // workers never return errors; failures live in the results
	return results
}

// liftStatus recognizes handlers that report their own status as a JSON
// payload, like the Gmail stub's {"status": "warning", ...}. Plain text
// output counts as ok.
func liftStatus(output string) Status {
	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(output), &probe); err != nil {
		return StatusOK
	}
	switch probe.Status {
	case "warning":
		return StatusWarning
	case "error":
		return StatusError
	default:
		return StatusOK
	}
}
