// Package engine orchestrates streaming debates between two AI personas.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"synthetica/internal/core"
	"synthetica/internal/keypool"
	"synthetica/internal/openrouter"
	"synthetica/internal/usage"
)

// Status is the lifecycle state of the debate engine.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
	StatusFailed    Status = "failed"
)

// ErrMissingModel is returned by Start when a participant has no model id.
var ErrMissingModel = errors.New("both participants need a model before starting")

// ErrRunning is returned when an operation requires an idle engine.
var ErrRunning = errors.New("a debate is already running")

const (
	beginMessage  = "Let us begin the debate!"
	failureMarker = "\n\n[Generation stopped or failed]"

	// Appended to every persona prompt so a participant argues its own side
	// instead of continuing the opponent's lines.
	stayInCharacter = "Stay in character at all times. Speak only as yourself and never write lines for the other participant."
)

// DeltaFunc observes streamed content deltas as they are appended to the
// transcript.
type DeltaFunc func(speaker core.Speaker, delta string)

// TurnFunc observes each finalized turn message.
type TurnFunc func(turn int, msg core.Message)

// Snapshot is a point-in-time view of the debate, safe for concurrent
// readers: the message slice is a copy and messages are value types.
type Snapshot struct {
	ID       string           `json:"id"`
	Status   Status           `json:"status"`
	Turn     int              `json:"turn"`
	Messages []core.Message   `json:"messages"`
	Usage    core.UsageTotals `json:"usage"`
}

// Engine is the debate turn scheduler. Turns run strictly sequentially on a
// single goroutine; the engine is the only writer of the transcript.
type Engine struct {
	runner  *Runner
	tracker *usage.Tracker
	pool    *keypool.Pool

	onDelta DeltaFunc
	onTurn  TurnFunc

	mu         sync.RWMutex
	id         string
	status     Status
	turn       int
	transcript []core.Message

	cancel  context.CancelFunc
	stopped atomic.Bool
	done    chan struct{}
}

// New creates an idle engine.
func New(client *openrouter.Client, pool *keypool.Pool, tracker *usage.Tracker) *Engine {
	return &Engine{
		runner:  NewRunner(client, pool),
		tracker: tracker,
		pool:    pool,
		status:  StatusIdle,
	}
}

// OnDelta registers a delta observer. Must be set before Start.
func (e *Engine) OnDelta(fn DeltaFunc) { e.onDelta = fn }

// OnTurn registers a turn observer. Must be set before Start.
func (e *Engine) OnTurn(fn TurnFunc) { e.onTurn = fn }

// Start validates the configuration and launches the debate loop. It fails
// before any observable effect when either participant lacks a model or the
// credential pool is empty.
func (e *Engine) Start(cfg1, cfg2 core.AIConfig, maxTurns int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusRunning {
		return ErrRunning
	}
	if cfg1.Model == "" || cfg2.Model == "" {
		return ErrMissingModel
	}
	if e.pool.Len() == 0 {
		return keypool.ErrEmpty
	}
	if maxTurns <= 0 {
		maxTurns = core.DefaultMaxTurns
	}

	e.id = uuid.NewString()
	e.status = StatusRunning
	e.turn = 0
	e.transcript = []core.Message{{
		Speaker:   core.SpeakerSystem,
		Text:      beginMessage,
		Timestamp: time.Now(),
	}}
	e.stopped.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})

	slog.Info("Starting debate", "id", e.id, "model1", cfg1.Model, "model2", cfg2.Model, "max_turns", maxTurns)
	go e.run(ctx, cfg1, cfg2, maxTurns)
	return nil
}

// Stop sets the cancellation flag and aborts any in-flight request. The
// engine transitions to Stopped at the next checkpoint; an in-flight byte
// read may need to unwind first.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning {
		return
	}
	e.stopped.Store(true)
	if e.cancel != nil {
		e.cancel()
	}
}

// Wait blocks until the current debate loop exits. Returns immediately if
// no debate was started.
func (e *Engine) Wait() {
	e.mu.RLock()
	done := e.done
	e.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// ImportTranscript replaces the transcript with externally supplied
// messages. Rejected while a debate is running.
func (e *Engine) ImportTranscript(messages []core.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusRunning {
		return ErrRunning
	}
	e.transcript = make([]core.Message, len(messages))
	copy(e.transcript, messages)
	e.status = StatusIdle
	e.turn = 0
	return nil
}

// Status returns the current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Snapshot returns a consistent copy of the transcript and usage totals.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	messages := make([]core.Message, len(e.transcript))
	copy(messages, e.transcript)
	return Snapshot{
		ID:       e.id,
		Status:   e.status,
		Turn:     e.turn,
		Messages: messages,
		Usage:    e.tracker.Totals(),
	}
}

// run executes up to maxTurns alternating turns, participant 1 first.
func (e *Engine) run(ctx context.Context, cfg1, cfg2 core.AIConfig, maxTurns int) {
	defer close(e.done)

	for turn := 0; turn < maxTurns; turn++ {
		if e.stopped.Load() || ctx.Err() != nil {
			e.setStatus(StatusStopped)
			return
		}

		speaker := core.SpeakerOne
		cfg := cfg1
		if turn%2 == 1 {
			speaker = core.SpeakerTwo
			cfg = cfg2
		}

		messages := e.buildContext(cfg)
		e.appendMessage(core.Message{Speaker: speaker, Timestamp: time.Now()})

		started := time.Now()
		rec, err := e.runner.Run(ctx, cfg, messages, func(delta string) {
			e.appendDelta(delta)
			if e.onDelta != nil {
				e.onDelta(speaker, delta)
			}
		})
		latency := time.Since(started)

		if err != nil {
			e.appendDelta(failureMarker)
			if e.stopped.Load() || errors.Is(err, context.Canceled) {
				e.setStatus(StatusStopped)
			} else {
				slog.Error("Turn failed", "turn", turn, "speaker", speaker, "error", err)
				e.setStatus(StatusFailed)
			}
			return
		}

		promptTokens, completionTokens := e.turnTokens(rec, messages)
		cost := e.tracker.EstimateCost(cfg.Model, promptTokens, completionTokens)
		e.tracker.RecordTurn(speaker, promptTokens, completionTokens, cost, latency)

		e.mu.Lock()
		e.turn = turn + 1
		final := e.transcript[len(e.transcript)-1]
		e.mu.Unlock()

		slog.Debug("Turn completed", "turn", turn, "speaker", speaker,
			"prompt_tokens", promptTokens, "completion_tokens", completionTokens, "latency_ms", latency.Milliseconds())
		if e.onTurn != nil {
			e.onTurn(turn, final)
		}
	}

	e.setStatus(StatusCompleted)
}

// buildContext assembles the prompt for the active participant: the persona
// prompt plus the fixed instruction as the system message, then the prior
// transcript (system messages excluded) as a single user message.
func (e *Engine) buildContext(cfg core.AIConfig) []openrouter.ChatMessage {
	system := stayInCharacter
	if cfg.SystemPrompt != "" {
		system = cfg.SystemPrompt + "\n\n" + stayInCharacter
	}

	e.mu.RLock()
	var blocks []string
	for _, msg := range e.transcript {
		if msg.Speaker == core.SpeakerSystem {
			continue
		}
		blocks = append(blocks, msg.Speaker.Label()+": "+msg.Text)
	}
	e.mu.RUnlock()

	content := "Begin the debate."
	if len(blocks) > 0 {
		content = strings.Join(blocks, "\n\n")
	}

	return []openrouter.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: content},
	}
}

// turnTokens picks the authoritative usage record when present, otherwise
// falls back to the character-count heuristic over the prompt and the
// streamed reply.
func (e *Engine) turnTokens(rec *openrouter.Usage, messages []openrouter.ChatMessage) (prompt, completion int) {
	if rec != nil {
		return rec.PromptTokens, rec.CompletionTokens
	}
	var promptText strings.Builder
	for _, m := range messages {
		promptText.WriteString(m.Content)
	}
	e.mu.RLock()
	reply := e.transcript[len(e.transcript)-1].Text
	e.mu.RUnlock()
	return usage.EstimateTokens(promptText.String()), usage.EstimateTokens(reply)
}

// appendMessage appends a new transcript entry. Called once per turn before
// streaming begins; only this trailing entry mutates afterwards.
func (e *Engine) appendMessage(msg core.Message) {
	e.mu.Lock()
	e.transcript = append(e.transcript, msg)
	e.mu.Unlock()
}

// appendDelta grows the trailing message. The text is replaced with the
// full concatenation under the lock so readers always see a consistent
// prefix of the stream.
func (e *Engine) appendDelta(delta string) {
	e.mu.Lock()
	last := len(e.transcript) - 1
	e.transcript[last].Text = e.transcript[last].Text + delta
	e.mu.Unlock()
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
	slog.Info("Debate state changed", "status", s)
}
