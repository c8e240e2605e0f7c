package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TheEnigmaticT/twincli/pkg/commands"
	"github.com/TheEnigmaticT/twincli/pkg/config"
	"github.com/TheEnigmaticT/twincli/pkg/history"
	"github.com/TheEnigmaticT/twincli/pkg/llm"
	"github.com/TheEnigmaticT/twincli/pkg/tools"
	"github.com/TheEnigmaticT/twincli/pkg/ui"
)

const (
	// DefaultMaxToolRounds caps consecutive tool-call rounds within one user
	// turn so a tool-happy model cannot loop forever.
	DefaultMaxToolRounds = 8

	// DefaultMaxRetries bounds model API retries per call.
	DefaultMaxRetries = 3
)

// Display is what the agent needs from the terminal layer. *ui.UI satisfies
// it; tests substitute a silent implementation.
type Display interface {
	Print(msg string)
	Dim(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	ToolAction(name, argsPreview string)
	ToolResult(status tools.Status, preview string)
	Prompt(prompt string) string
	DisplayStream(outputChan <-chan string)
	PickCommand(cmds []ui.CommandInfo) string
	PickModel(models []ui.ModelChoice) string
}

type Agent struct {
	cfg      *config.Config
	ui       Display
	registry *tools.Registry
	executor *tools.Executor
	client   llm.Client
	model    llm.ModelInfo
	history  []llm.Message
	session  *history.SessionManager
	usage    *TokenTracker
	commands *commands.Registry

	maxToolRounds int
	maxRetries    int
	lastReply     string
}

// New assembles the agent: tool registry, executor, Gemini client, slash
// commands. The registry is populated here once and never mutated again.
func New(cfg *config.Config, display Display) (*Agent, error) {
	registry := tools.NewRegistry()
	for _, t := range []tools.Tool{
		tools.NewSearchTool(cfg.SerperAPIKey),
		&tools.GmailTool{},
		tools.NewFetchTool(),
	} {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}
	}

	model := llm.DefaultModel()

	a := &Agent{
		cfg:      cfg,
		ui:       display,
		registry: registry,
		executor: tools.NewExecutor(registry),
		client:   llm.NewGeminiClient(cfg.APIKey, model.APIModel),
		model:    model,
		usage:    NewTokenTracker(),
		history: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt},
		},
		maxToolRounds: DefaultMaxToolRounds,
		maxRetries:    DefaultMaxRetries,
	}
	a.commands = a.builtinCommands()
	return a, nil
}

// Model returns the active model.
func (a *Agent) Model() llm.ModelInfo {
	return a.model
}

// ToolCount returns how many tools are registered.
func (a *Agent) ToolCount() int {
	return a.registry.Len()
}

func (a *Agent) builtinCommands() *commands.Registry {
	reg := commands.NewRegistry()
	reg.Register(commands.NewHelpCommand(reg))
	reg.Register(commands.NewFuncCommand("tokens", "Show session token usage and cost", func() (string, error) {
		return a.usage.Summary().String(), nil
	}))
	reg.Register(commands.NewFuncCommand("session", "Show current session info", func() (string, error) {
		if a.session == nil {
			return "No session transcript active.", nil
		}
		return a.session.Info(), nil
	}))
	reg.Register(commands.NewFuncCommand("model", "Switch Gemini model", func() (string, error) {
		return a.pickModel(), nil
	}))
	reg.Register(commands.NewCopyCommand(func() string {
		return a.lastReply
	}))
	// Executed nowhere: Run intercepts /quit before dispatch so it can stop
	// the REPL. Registered here so it shows up in /help and the picker.
	reg.Register(commands.NewFuncCommand("quit", "End the session", func() (string, error) {
		return "", nil
	}))
	return reg
}

func (a *Agent) pickModel() string {
	choices := make([]ui.ModelChoice, len(llm.SupportedModels))
	for i, m := range llm.SupportedModels {
		choices[i] = ui.ModelChoice{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			IsCurrent:   m.ID == a.model.ID,
		}
	}
	selected := a.ui.PickModel(choices)
	if selected == "" || selected == a.model.ID {
		return "Model unchanged: " + a.model.Name
	}
	info := llm.GetModelByID(selected)
	if info == nil {
		return "Unknown model: " + selected
	}
	a.model = *info
	if gc, ok := a.client.(*llm.GeminiClient); ok {
		gc.SetModel(info.APIModel)
	}
	return "Switched to " + info.Name
}

// Run drives the REPL until the user exits.
func (a *Agent) Run() error {
	cwd, err := os.Getwd()
	if err == nil {
		sm, err := history.NewSessionManager(cwd)
		if err != nil {
			a.ui.Warn(fmt.Sprintf("Failed to initialize session transcript: %v", err))
		} else {
			a.session = sm
			log.Info().Str("session_id", sm.SessionID).Msg("session started")
		}
	}

	for {
		input := a.ui.Prompt("> ")
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit", ":q":
			a.ui.Dim(a.usage.Summary().String())
			return nil
		}

		if input == "/" {
			name := a.pickCommand()
			if name == "" {
				continue
			}
			input = "/" + name
		}
		if input == "/quit" {
			a.ui.Dim(a.usage.Summary().String())
			return nil
		}
		if strings.HasPrefix(input, "/") {
			a.runCommand(strings.TrimPrefix(input, "/"))
			continue
		}

		a.appendHistory(llm.Message{Role: llm.RoleUser, Content: input})

		// Ctrl-C aborts the in-flight turn, not the session.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := a.processTurn(ctx)
		stop()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				a.ui.Warn("Turn interrupted.")
				continue
			}
			a.ui.Error(fmt.Sprintf("Error: %v", err))
			a.ui.Warn("Please wait a moment before trying again.")
		}
	}
}

func (a *Agent) pickCommand() string {
	cmds := a.commands.List()
	infos := make([]ui.CommandInfo, len(cmds))
	for i, c := range cmds {
		infos[i] = ui.CommandInfo{Name: c.Name(), Description: c.Description()}
	}
	return a.ui.PickCommand(infos)
}

func (a *Agent) runCommand(name string) {
	cmd, ok := a.commands.Get(name)
	if !ok {
		a.ui.Error(fmt.Sprintf("Unknown command: /%s", name))
		return
	}
	out, err := cmd.Execute()
	if err != nil {
		a.ui.Error(fmt.Sprintf("Command failed: %v", err))
		return
	}
	if out != "" {
		a.ui.Print(out)
	}
}

// processTurn runs one user turn to completion: model call, then as many
// tool-call rounds as the model needs, bounded by maxToolRounds.
func (a *Agent) processTurn(ctx context.Context) error {
	for round := 0; round < a.maxToolRounds; round++ {
		resp, err := a.generateWithRetry(ctx)
		if err != nil {
			return err
		}

		if cost, ok := a.usage.Track(resp.Usage, a.model.APIModel); ok {
			a.ui.Dim(fmt.Sprintf("Tokens: %d ($%.6f)", resp.Usage.InputTokens+resp.Usage.OutputTokens, cost))
		}

		if len(resp.ToolCalls) == 0 {
			a.appendHistory(*resp)
			if resp.Content != "" {
				a.lastReply = resp.Content
			}
			return nil
		}

		calls := make([]tools.Call, len(resp.ToolCalls))
		for i, tc := range resp.ToolCalls {
			calls[i] = tools.Call{ID: tc.ID, Name: tc.Name, Args: tc.Args}
			a.ui.ToolAction(tc.Name, previewArgs(tc.Args))
		}

		results := a.executor.ExecuteAll(ctx, calls)
		if ctx.Err() != nil {
			// Interrupted mid-dispatch: nothing from this round has been
			// appended yet, so history never carries a function call without
			// its response.
			return ctx.Err()
		}

		// The assistant turn and its tool results land together. Gemini
		// rejects a model functionCall turn with no matching
		// functionResponse, so they must be atomic with respect to
		// interrupts.
		a.appendHistory(*resp)
		for i, res := range results {
			a.ui.ToolResult(res.Status, preview(res.Content, 120))
			a.appendHistory(llm.Message{
				Role: llm.RoleTool,
				ToolResult: &llm.ToolResult{
					ToolCallID: calls[i].ID,
					ToolName:   calls[i].Name,
					Content:    res.Content,
				},
			})
		}
	}

	log.Warn().Int("max_rounds", a.maxToolRounds).Msg("tool round limit reached")
	a.ui.Warn(fmt.Sprintf("Turn aborted: reached the limit of %d consecutive tool rounds.", a.maxToolRounds))
	return nil
}

// generateWithRetry calls the model, retrying rate limits and server errors
// with exponential backoff. Non-retryable errors surface immediately.
func (a *Agent) generateWithRetry(ctx context.Context) (*llm.Message, error) {
	decls := toolDeclarations(a.registry)

	var lastErr error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt)
			log.Warn().Err(lastErr).Dur("delay", delay).Int("attempt", attempt+1).Msg("retrying model call")
			a.ui.Warn(fmt.Sprintf("Model call failed, retrying in %.1fs (attempt %d/%d)...", delay.Seconds(), attempt+1, a.maxRetries))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		ch := make(chan string)
		done := make(chan struct{})
		var resp *llm.Message
		var genErr error
		go func() {
			defer close(done)
			defer close(ch)
			resp, genErr = a.client.GenerateStream(ctx, a.history, decls, ch)
		}()
		a.ui.DisplayStream(ch)
		// The display can tear down (ctrl-C inside the TUI) while the client
		// is still streaming tokens. Keep draining so the sender unblocks and
		// releases its response body, then wait for the handoff.
		go func() {
			for range ch {
			}
		}()
		<-done

		if genErr == nil {
			if resp == nil {
				return nil, fmt.Errorf("model produced no response")
			}
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = genErr
		if !llm.IsRetryable(genErr) {
			return nil, genErr
		}
	}
	return nil, fmt.Errorf("model call failed after %d attempts: %w", a.maxRetries, lastErr)
}

func (a *Agent) appendHistory(msg llm.Message) {
	a.history = append(a.history, msg)
	if a.session != nil {
		if err := a.session.Append(msg); err != nil {
			a.ui.Warn(fmt.Sprintf("Failed to log turn: %v", err))
		}
	}
}

// toolDeclarations converts registry definitions to the opaque form the
// llm.Client interface carries. Handlers never cross this boundary.
func toolDeclarations(r *tools.Registry) []interface{} {
	defs := r.List()
	out := make([]interface{}, len(defs))
	for i, d := range defs {
		out[i] = d
	}
	return out
}

func backoff(attempt int) time.Duration {
	base := time.Second * time.Duration(1<<uint(attempt-1))
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	delay := base + jitter
	if delay > 60*time.Second {
		delay = 60 * time.Second
	}
	return delay
}

func previewArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return preview(string(data), 80)
}

func preview(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
