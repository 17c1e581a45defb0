package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"synthetica/internal/core"
	"synthetica/internal/keypool"
	"synthetica/internal/openrouter"
)

const (
	// maxAttempts caps the retry budget regardless of pool size.
	maxAttempts = 6

	defaultBaseDelay = 300 * time.Millisecond
	defaultMaxDelay  = 2 * time.Second
)

// Runner drives one participant turn to completion despite recoverable
// failures, rotating credentials from the pool between attempts.
type Runner struct {
	client *openrouter.Client
	pool   *keypool.Pool

	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewRunner creates a runner with the default backoff schedule.
func NewRunner(client *openrouter.Client, pool *keypool.Pool) *Runner {
	return &Runner{
		client:    client,
		pool:      pool,
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
	}
}

// retryBudget is min(6, max(1, 2*poolSize)) attempts.
func retryBudget(poolSize int) int {
	budget := 2 * poolSize
	if budget < 1 {
		budget = 1
	}
	if budget > maxAttempts {
		budget = maxAttempts
	}
	return budget
}

// Run streams one completion for cfg, re-emitting every content delta to
// onDelta the moment it arrives. Recoverable HTTP failures (401, 403, 429,
// 5xx) rotate the pool cursor and retry with exponential backoff until the
// budget runs out; everything else, including cancellation and any
// mid-stream failure, is terminal. Returns the last usage record the API
// sent, or nil.
func (r *Runner) Run(ctx context.Context, cfg core.AIConfig, messages []openrouter.ChatMessage, onDelta func(string)) (*openrouter.Usage, error) {
	budget := retryBudget(r.pool.Len())

	for attempt := 0; attempt < budget; attempt++ {
		key, err := r.pool.Current()
		if err != nil {
			return nil, err
		}

		stream, err := r.client.StreamCompletion(ctx, openrouter.StreamRequest{
			APIKey:           key,
			Model:            cfg.Model,
			Messages:         messages,
			Temperature:      cfg.Temperature,
			TopP:             cfg.TopP,
			FrequencyPenalty: cfg.FrequencyPenalty,
			MaxTokens:        cfg.MaxTokens,
		})
		if err != nil {
			var statusErr *openrouter.StatusError
			if !errors.As(err, &statusErr) || !statusErr.Recoverable() || attempt == budget-1 {
				return nil, err
			}
			// Rotation only helps when there is another credential to
			// rotate to; the backoff applies either way.
			if r.pool.Len() > 1 {
				r.pool.Advance()
			}
			slog.Debug("Retrying completion after recoverable failure",
				"status", statusErr.Status, "attempt", attempt+1, "budget", budget)
			if err := r.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		// A failure before the first delta would have surfaced above as a
		// status error. Once streaming starts the attempt is committed:
		// emitted content is retained and mid-stream errors are terminal.
		return consume(stream, onDelta)
	}

	// Unreachable: the final attempt either succeeds or returns its error.
	return nil, errors.New("retry budget exhausted")
}

// consume drains the stream, forwarding deltas. Exhaustion via [DONE] or
// natural closure ends the retry loop successfully.
func consume(stream *openrouter.Stream, onDelta func(string)) (*openrouter.Usage, error) {
	defer stream.Close()
	for {
		delta, err := stream.Next()
		if err == io.EOF {
			return stream.Usage(), nil
		}
		if err != nil {
			return nil, err
		}
		if onDelta != nil {
			onDelta(delta)
		}
	}
}

// wait sleeps min(maxDelay, baseDelay*2^attempt), honoring cancellation.
func (r *Runner) wait(ctx context.Context, attempt int) error {
	delay := r.baseDelay << attempt
	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
