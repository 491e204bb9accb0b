// Package retry runs provider calls under a bounded exponential
// backoff policy. The policy is driven by failure kind alone: auth
// errors surface immediately, everything else retries until the
// attempt budget is spent, and exhaustion returns the last failure
// unchanged so callers keep the root cause.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

// Options bound the retry loop.
type Options struct {
	// MaxAttempts is the total number of tries, the first call included
	MaxAttempts int

	// BaseDelay is slept before the second attempt and doubles after
	// each further failure
	BaseDelay time.Duration

	// MaxDelay caps the doubling; zero means no cap
	MaxDelay time.Duration
}

// DefaultOptions returns the standard retry budget.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Func is a single attempt of a retryable operation. The attempt
// number starts at 1.
type Func func(ctx context.Context, attempt int) (*providers.Completion, error)

// Result carries a successful completion plus how the loop got there.
type Result struct {
	*providers.Completion

	// Attempts actually made, the successful one included
	Attempts int

	// Delays slept between attempts, in order
	Delays []time.Duration
}

// Orchestrator owns one adapter and retries calls against it.
type Orchestrator struct {
	adapter providers.Adapter
	opts    Options
	logger  *zap.Logger
	sleep   func(time.Duration)
}

// New creates an orchestrator for adapter. A nil logger disables
// logging.
func New(adapter providers.Adapter, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		adapter: adapter,
		opts:    opts,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Complete runs the adapter's Complete under the retry policy.
func (o *Orchestrator) Complete(ctx context.Context, prompt string, settings providers.Settings) (*Result, error) {
	return o.Do(ctx, func(ctx context.Context, attempt int) (*providers.Completion, error) {
		return o.adapter.Complete(ctx, prompt, settings)
	})
}

// Do runs fn under the retry policy. Callers that decode answers wrap
// the adapter call and their parsing into one fn, so a parse failure
// consumes an attempt like any transport fault.
func (o *Orchestrator) Do(ctx context.Context, fn Func) (*Result, error) {
	var lastErr error
	delays := make([]time.Duration, 0, o.opts.MaxAttempts-1)
	delay := o.opts.BaseDelay
	attempts := 0

	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		attempts = attempt

		completion, err := fn(ctx, attempt)
		if err == nil {
			return &Result{Completion: completion, Attempts: attempt, Delays: delays}, nil
		}
		lastErr = err

		if !providers.IsRetryable(err) {
			o.logger.Warn("attempt failed, not retryable",
				zap.Int("attempt", attempt),
				zap.String("kind", string(providers.KindOf(err))),
				zap.Error(err))
			return nil, err
		}

		if attempt == o.opts.MaxAttempts {
			break
		}

		// A dead context means nobody is waiting for more attempts.
		if ctx.Err() != nil {
			break
		}

		o.logger.Warn("attempt failed, backing off",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.opts.MaxAttempts),
			zap.String("kind", string(providers.KindOf(err))),
			zap.Duration("delay", delay),
			zap.Error(err))

		o.sleep(delay)
		delays = append(delays, delay)

		delay *= 2
		if o.opts.MaxDelay > 0 && delay > o.opts.MaxDelay {
			delay = o.opts.MaxDelay
		}
	}

	o.logger.Error("attempts exhausted",
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	// The last observed failure, unchanged. No synthetic wrapper: the
	// caller needs the root cause.
	return nil, lastErr
}
