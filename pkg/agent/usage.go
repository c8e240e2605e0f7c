package agent

import (
	"fmt"
	"time"

	"github.com/TheEnigmaticT/twincli/pkg/llm"
)

// modelPricing is USD per million tokens.
type modelPricing struct {
	Input  float64
	Output float64
}

var pricing = map[string]modelPricing{
	"gemini-2.5-flash":      {Input: 0.15, Output: 0.60},
	"gemini-2.5-pro":        {Input: 1.25, Output: 10.00},
	"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
}

var defaultPricing = pricing["gemini-2.5-flash"]

// TokenTracker accumulates token usage and cost across a session.
type TokenTracker struct {
	inputTokens  int
	outputTokens int
	cost         float64
	calls        int
	start        time.Time
}

func NewTokenTracker() *TokenTracker {
	return &TokenTracker{start: time.Now()}
}

// Track records usage from one model call and returns its cost. Calls with
// no usage metadata are ignored.
func (t *TokenTracker) Track(u *llm.Usage, apiModel string) (float64, bool) {
	if u == nil {
		return 0, false
	}

	p, ok := pricing[apiModel]
	if !ok {
		p = defaultPricing
	}

	callCost := float64(u.InputTokens)/1_000_000*p.Input + float64(u.OutputTokens)/1_000_000*p.Output

	t.inputTokens += u.InputTokens
	t.outputTokens += u.OutputTokens
	t.cost += callCost
	t.calls++
	return callCost, true
}

// UsageSummary is a snapshot of session totals.
type UsageSummary struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Cost         float64
	Calls        int
	Elapsed      time.Duration
}

func (t *TokenTracker) Summary() UsageSummary {
	return UsageSummary{
		InputTokens:  t.inputTokens,
		OutputTokens: t.outputTokens,
		TotalTokens:  t.inputTokens + t.outputTokens,
		Cost:         t.cost,
		Calls:        t.calls,
		Elapsed:      time.Since(t.start),
	}
}

func (s UsageSummary) String() string {
	return fmt.Sprintf(
		"Session usage: %d tokens (%d in / %d out) over %d calls, $%.6f, %.1f minutes",
		s.TotalTokens, s.InputTokens, s.OutputTokens, s.Calls, s.Cost, s.Elapsed.Minutes(),
	)
}
