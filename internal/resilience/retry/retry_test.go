package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/failure"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		BackoffBase:  2.0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	outcome := Do(context.Background(), fastPolicy(3), "test", func(ctx context.Context) (string, error) {
		attempts++
		return "quote", nil
	})

	if !outcome.Ok() {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.Value != "quote" {
		t.Errorf("expected value %q, got %q", "quote", outcome.Value)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if outcome.Retries != 0 {
		t.Errorf("expected 0 retries, got %d", outcome.Retries)
	}
}

func TestDo_SuccessAfterTransientFailures(t *testing.T) {
	// Scenario: fails twice with 503, succeeds on the third attempt.
	attempts := 0
	outcome := Do(context.Background(), fastPolicy(3), "test", func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &failure.ProviderError{
				Provider: "alphavantage", Op: "quote", StatusCode: 503,
				Err: errors.New("service unavailable"),
			}
		}
		return "quote", nil
	})

	if !outcome.Ok() {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if outcome.Retries != 2 {
		t.Errorf("expected 2 retries, got %d", outcome.Retries)
	}
}

func TestDo_RetriesExhausted(t *testing.T) {
	attempts := 0
	outcome := Do(context.Background(), fastPolicy(3), "test", func(ctx context.Context) (string, error) {
		attempts++
		return "", &failure.ProviderError{
			Provider: "finnhub", Op: "quote", StatusCode: 500,
			Err: errors.New("boom"),
		}
	})

	if outcome.Ok() {
		t.Fatal("expected failure")
	}
	// One initial try plus MaxRetries retries.
	if attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts)
	}
	if outcome.Retries != 3 {
		t.Errorf("expected 3 retries consumed, got %d", outcome.Retries)
	}
	if outcome.Failure.Kind != failure.KindServerError {
		t.Errorf("expected server-error kind, got %v", outcome.Failure.Kind)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	// Scenario: a 400 on the first attempt propagates with zero sleeping.
	attempts := 0
	start := time.Now()
	outcome := Do(context.Background(), fastPolicy(3), "test", func(ctx context.Context) (string, error) {
		attempts++
		return "", &failure.ProviderError{
			Provider: "finnhub", Op: "quote", StatusCode: 400,
			Err: errors.New("bad request"),
		}
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
	if outcome.Failure == nil || outcome.Failure.Kind != failure.KindClientError {
		t.Errorf("expected client-error failure, got %+v", outcome.Failure)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("non-retryable error should not sleep, took %v", elapsed)
	}
}

func TestDo_NotFoundNotRetried(t *testing.T) {
	attempts := 0
	outcome := Do(context.Background(), fastPolicy(3), "test", func(ctx context.Context) (string, error) {
		attempts++
		return "", entity.ErrNotFound
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if outcome.Failure == nil || outcome.Failure.Kind != failure.KindNotFound {
		t.Errorf("expected not-found failure, got %+v", outcome.Failure)
	}
}

func TestDo_AlreadyExistsShortCircuits(t *testing.T) {
	// Scenario: duplicate-create returns the distinguished exists outcome,
	// with no retry and no failure recorded.
	attempts := 0
	start := time.Now()
	outcome := Do(context.Background(), fastPolicy(3), "subscribe", func(ctx context.Context) (string, error) {
		attempts++
		return "", entity.ErrAlreadyExists
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !outcome.Exists {
		t.Error("expected Exists outcome")
	}
	if outcome.Failure != nil {
		t.Errorf("exists outcome must not carry a failure, got %+v", outcome.Failure)
	}
	if outcome.Ok() {
		t.Error("exists outcome is not a value-carrying success")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("exists outcome should not back off, took %v", elapsed)
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{MaxRetries: 5, InitialDelay: 100 * time.Millisecond, BackoffBase: 2.0}
	attempts := 0
	outcome := Do(ctx, policy, "test", func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return "", &failure.ProviderError{
			Provider: "finnhub", Op: "quote", StatusCode: 500,
			Err: errors.New("boom"),
		}
	})

	if outcome.Ok() {
		t.Fatal("expected failure after cancellation")
	}
	if !errors.Is(outcome.Failure, context.Canceled) {
		t.Errorf("expected context.Canceled in failure chain, got %v", outcome.Failure)
	}
	if attempts < 2 {
		t.Errorf("expected at least 2 attempts before cancel, got %d", attempts)
	}
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{InitialDelay: 1 * time.Second, BackoffBase: 2.0}

	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := p.Delay(i); got != w {
			t.Errorf("Delay(%d) = %v, want %v", i, got, w)
		}
	}

	// Delays are strictly increasing for BackoffBase > 1.
	for i := 1; i < len(want); i++ {
		if p.Delay(i) <= p.Delay(i-1) {
			t.Errorf("Delay(%d)=%v not greater than Delay(%d)=%v", i, p.Delay(i), i-1, p.Delay(i-1))
		}
	}
}

func TestPolicyDelay_WithFloor(t *testing.T) {
	p := Policy{InitialDelay: 1 * time.Second, BackoffBase: 2.0, MinDelay: 12 * time.Second}

	if got, want := p.Delay(0), 13*time.Second; got != want {
		t.Errorf("Delay(0) = %v, want %v", got, want)
	}
	if got, want := p.Delay(2), 16*time.Second; got != want {
		t.Errorf("Delay(2) = %v, want %v", got, want)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", p.MaxRetries)
	}
	if p.BackoffBase != 2.0 {
		t.Errorf("expected BackoffBase=2.0, got %f", p.BackoffBase)
	}
	if p.InitialDelay != 1*time.Second {
		t.Errorf("expected InitialDelay=1s, got %v", p.InitialDelay)
	}
}

func TestMarketDataPolicy(t *testing.T) {
	p := MarketDataPolicy()

	if p.MinDelay != 1*time.Second {
		t.Errorf("expected MinDelay=1s, got %v", p.MinDelay)
	}
	if p.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", p.MaxRetries)
	}
}
