// Package retry provides a generic retry executor with exponential backoff.
// It absorbs transient failures up to a configured bound and consults the
// failure classifier so non-retryable errors surface immediately.
package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"quantum-digest/internal/resilience/failure"
)

// Policy holds the configuration for retry logic.
// It is immutable after construction and safe to share across calls.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt,
	// so an operation runs at most MaxRetries+1 times.
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// BackoffBase is the multiplier for exponential backoff.
	BackoffBase float64

	// MinDelay is an optional fixed floor added to every computed backoff.
	// Callers use it to keep retries above a provider's rate-limit interval.
	MinDelay time.Duration
}

// DefaultPolicy returns the default retry policy:
// three retries, one second initial delay, doubling each time.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		BackoffBase:  2.0,
	}
}

// MarketDataPolicy returns a policy tuned for market-data providers.
// Free-tier quotas are strict, so the floor keeps retries spaced out.
func MarketDataPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		BackoffBase:  2.0,
		MinDelay:     1 * time.Second,
	}
}

// MailerPolicy returns a policy tuned for transactional email delivery.
func MailerPolicy() Policy {
	return Policy{
		MaxRetries:   2,
		InitialDelay: 2 * time.Second,
		BackoffBase:  2.0,
	}
}

// Delay returns the backoff delay before retry attempt i (0-based):
// InitialDelay × BackoffBase^i, plus the MinDelay floor.
// Delays are strictly increasing in i for BackoffBase > 1.
func (p Policy) Delay(i int) time.Duration {
	backoff := time.Duration(float64(p.InitialDelay) * math.Pow(p.BackoffBase, float64(i)))
	return p.MinDelay + backoff
}

// Operation is one attempt against an external provider.
type Operation[T any] func(ctx context.Context) (T, error)

// Outcome is the terminal result of a retried operation.
// Exactly one of three states holds: a value (Failure nil, Exists false),
// a benign already-exists result (Exists true), or a classified failure.
type Outcome[T any] struct {
	Value T

	// Retries is the number of retries consumed before the terminal state.
	Retries int

	// Exists marks the distinguished already-exists outcome. The operation
	// did not produce a value but did not fail either.
	Exists bool

	// Failure is the classification of the final error, nil on success.
	Failure *failure.Classified
}

// Ok reports whether the outcome carries a usable value.
func (o Outcome[T]) Ok() bool {
	return o.Failure == nil && !o.Exists
}

// Do executes op with retry logic and exponential backoff.
// The name appears in log output so operators can tell call sites apart.
//
// After each failed attempt the error is classified; retryable kinds sleep
// and go again, everything else surfaces immediately. An already-exists
// outcome short-circuits as a success-like terminal state without backoff.
func Do[T any](ctx context.Context, policy Policy, name string, op Operation[T]) Outcome[T] {
	var zero T

	for attempt := 0; ; attempt++ {
		value, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				slog.Info("operation succeeded after retry",
					slog.String("operation", name),
					slog.Int("attempt", attempt+1))
			}
			return Outcome[T]{Value: value, Retries: attempt}
		}

		classified := failure.Classify(err)

		if classified.Kind.Benign() {
			return Outcome[T]{Exists: true, Retries: attempt}
		}

		if !classified.Kind.Retryable() {
			slog.Warn("non-retryable error, aborting",
				slog.String("operation", name),
				slog.Int("attempt", attempt+1),
				slog.String("kind", string(classified.Kind)),
				slog.Any("error", err))
			return Outcome[T]{Value: zero, Retries: attempt, Failure: &classified}
		}

		if attempt == policy.MaxRetries {
			slog.Warn("retries exhausted",
				slog.String("operation", name),
				slog.Int("attempts", attempt+1),
				slog.String("kind", string(classified.Kind)),
				slog.Any("error", err))
			return Outcome[T]{Value: zero, Retries: attempt, Failure: &classified}
		}

		delay := policy.Delay(attempt)
		slog.Warn("operation failed, retrying",
			slog.String("operation", name),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", policy.MaxRetries+1),
			slog.Duration("delay", delay),
			slog.String("kind", string(classified.Kind)),
			slog.Any("error", err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			aborted := failure.Classify(ctx.Err())
			return Outcome[T]{Value: zero, Retries: attempt, Failure: &aborted}
		}
	}
}
