// Package usage tracks token consumption and cost across a debate.
package usage

import (
	"sync"
	"time"

	"synthetica/internal/core"
)

// EstimateTokens approximates the token count of text at roughly four
// characters per token, rounded up. Used whenever the API omits an
// authoritative usage record; accuracy is approximate by design.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// PriceLookup resolves a model id to its per-1000-token pricing. The second
// return is false when pricing is unknown.
type PriceLookup func(model string) (prompt, completion float64, ok bool)

// Tracker accumulates per-participant usage totals. A single writer (the
// scheduler) records turns; readers take snapshots.
type Tracker struct {
	mu     sync.Mutex
	lookup PriceLookup
	totals core.UsageTotals
}

// NewTracker creates a tracker with the given pricing source. A nil lookup
// prices every model as unknown.
func NewTracker(lookup PriceLookup) *Tracker {
	return &Tracker{lookup: lookup}
}

// EstimateCost converts token counts into USD for the given model. Unknown
// models cost zero; this never fails.
func (t *Tracker) EstimateCost(model string, promptTokens, completionTokens int) float64 {
	if t.lookup == nil {
		return 0
	}
	prompt, completion, ok := t.lookup(model)
	if !ok {
		return 0
	}
	return float64(promptTokens)*prompt/1000 + float64(completionTokens)*completion/1000
}

// RecordTurn folds one completed turn into the running totals. Latency is
// the wall-clock duration of the full turn including retries. The grand
// total is recomputed from both participants to avoid accumulation drift.
func (t *Tracker) RecordTurn(speaker core.Speaker, promptTokens, completionTokens int, cost float64, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tokens := promptTokens + completionTokens
	switch speaker {
	case core.SpeakerOne:
		t.totals.Tokens.P1 += tokens
		t.totals.Cost.P1 += cost
	case core.SpeakerTwo:
		t.totals.Tokens.P2 += tokens
		t.totals.Cost.P2 += cost
	}
	t.totals.Cost.Total = t.totals.Cost.P1 + t.totals.Cost.P2

	ms := latency.Milliseconds()
	t.totals.LastLatencyMs = &ms
}

// Totals returns a snapshot of the running totals.
func (t *Tracker) Totals() core.UsageTotals {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.totals
	if t.totals.LastLatencyMs != nil {
		ms := *t.totals.LastLatencyMs
		out.LastLatencyMs = &ms
	}
	return out
}

// Reset clears all totals.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = core.UsageTotals{}
}
