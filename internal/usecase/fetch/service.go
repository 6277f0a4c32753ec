// Package fetch orchestrates resilient quote fetches across market-data
// providers. One Service owns the retry policy, the per-provider rate
// limiter and the statistics tracker; providers themselves stay free of
// retry and rate-limit logic.
package fetch

import (
	"context"
	"log/slog"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/observability/metrics"
	"quantum-digest/internal/provider"
	"quantum-digest/internal/resilience/ratelimit"
	"quantum-digest/internal/resilience/retry"
)

const failureAllSourcesExhausted = "all sources exhausted"

// Service fetches quotes through a primary provider with bounded retries
// and a single-shot fallback. Entities in a batch are processed strictly
// sequentially and in input order, so rate-limit updates, statistics
// increments and log lines happen in that same order.
type Service struct {
	policy  retry.Policy
	limiter *ratelimit.ProviderLimiter
	tracker *Tracker
}

// NewService creates a fetch Service with its own rate limiter and
// statistics tracker.
func NewService(policy retry.Policy) *Service {
	return &Service{
		policy:  policy,
		limiter: ratelimit.NewProviderLimiter(),
		tracker: NewTracker(),
	}
}

// FetchWithRetry fetches one symbol. The primary provider runs through
// the retry executor; if it is exhausted and a fallback is configured,
// the fallback gets exactly one attempt. minInterval is enforced per
// provider key before each provider is called, never between retries of
// the same provider, which are spaced by backoff instead.
//
// A nil return means every source was exhausted. Exhaustion is recorded
// in the failure map and the counters, not raised, so one symbol can
// never abort a batch.
func (s *Service) FetchWithRetry(ctx context.Context, symbol string, primary, fallback provider.Adapter, minInterval time.Duration) *entity.Quote {
	s.tracker.recordAttempt()

	if quote := s.fetchPrimary(ctx, symbol, primary, minInterval); quote != nil {
		return quote
	}

	if fallback != nil {
		if quote := s.fetchFallback(ctx, symbol, fallback, minInterval); quote != nil {
			return quote
		}
	}

	s.tracker.recordFailure(symbol, failureAllSourcesExhausted)
	metrics.RecordFetchOutcome("", 0)
	slog.Error("all sources exhausted",
		slog.String("symbol", symbol),
		slog.String("primary", primary.Name()))
	return nil
}

// fetchPrimary runs the primary provider through the retry executor and
// records the outcome. Returns nil when the provider was exhausted or
// failed with a non-retryable error.
func (s *Service) fetchPrimary(ctx context.Context, symbol string, primary provider.Adapter, minInterval time.Duration) *entity.Quote {
	if err := s.limiter.Wait(ctx, primary.Name(), minInterval); err != nil {
		slog.Warn("rate limit wait aborted",
			slog.String("provider", primary.Name()),
			slog.String("symbol", symbol),
			slog.Any("error", err))
		return nil
	}

	start := time.Now()
	outcome := retry.Do(ctx, s.policy, primary.Name()+" quote "+symbol, func(ctx context.Context) (*entity.Quote, error) {
		return primary.FetchQuote(ctx, symbol)
	})
	metrics.RecordProviderCall(primary.Name(), time.Since(start))

	if !outcome.Ok() {
		return nil
	}

	s.tracker.recordPrimarySuccess(outcome.Retries)
	metrics.RecordFetchOutcome("primary", outcome.Retries)
	return outcome.Value
}

// fetchFallback gives the fallback provider its single attempt. Retries
// burned on the primary are not tallied when the fallback resolves the
// symbol; RetriesUsed only reflects work that led to a primary success.
func (s *Service) fetchFallback(ctx context.Context, symbol string, fallback provider.Adapter, minInterval time.Duration) *entity.Quote {
	if err := s.limiter.Wait(ctx, fallback.Name(), minInterval); err != nil {
		slog.Warn("rate limit wait aborted",
			slog.String("provider", fallback.Name()),
			slog.String("symbol", symbol),
			slog.Any("error", err))
		return nil
	}

	slog.Info("primary exhausted, trying fallback",
		slog.String("symbol", symbol),
		slog.String("fallback", fallback.Name()))

	start := time.Now()
	quote, err := fallback.FetchQuote(ctx, symbol)
	metrics.RecordProviderCall(fallback.Name(), time.Since(start))
	if err != nil {
		slog.Warn("fallback failed",
			slog.String("symbol", symbol),
			slog.String("fallback", fallback.Name()),
			slog.Any("error", err))
		return nil
	}

	s.tracker.recordFallbackSuccess()
	metrics.RecordFetchOutcome("fallback", 0)
	return quote
}

// FetchBatch fetches symbols strictly in input order. The per-provider
// minInterval spaces out consecutive entities hitting the same provider.
// With continueOnFailure false the batch stops at the first symbol that
// exhausts every source, leaving later symbols unprocessed.
//
// The returned map contains only symbols that resolved to a quote.
// Failed symbols are absent and discoverable through Failures.
func (s *Service) FetchBatch(ctx context.Context, symbols []string, primary, fallback provider.Adapter, minInterval time.Duration, continueOnFailure bool) map[string]*entity.Quote {
	results := make(map[string]*entity.Quote, len(symbols))

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			slog.Warn("batch aborted",
				slog.Int("processed", len(results)),
				slog.Int("total", len(symbols)),
				slog.Any("error", ctx.Err()))
			break
		}

		quote := s.FetchWithRetry(ctx, symbol, primary, fallback, minInterval)
		if quote == nil {
			if !continueOnFailure {
				slog.Warn("stopping batch on first failure",
					slog.String("symbol", symbol))
				break
			}
			continue
		}
		results[symbol] = quote
	}

	stats := s.tracker.Stats()
	slog.Info("batch complete",
		slog.Int("requested", len(symbols)),
		slog.Int("fetched", len(results)),
		slog.Int("primary_successes", stats.PrimarySuccesses),
		slog.Int("fallback_successes", stats.FallbackSuccesses),
		slog.Int("failures", stats.TotalFailures),
		slog.Int("retries_used", stats.RetriesUsed))
	return results
}

// Stats returns a snapshot of the tracker counters.
func (s *Service) Stats() Stats { return s.tracker.Stats() }

// Failures returns a copy of the entity-to-reason failure map.
func (s *Service) Failures() map[string]string { return s.tracker.Failures() }

// HasFailures reports whether any entity failed since the last reset.
func (s *Service) HasFailures() bool { return s.tracker.HasFailures() }

// FailureCount returns the number of distinct failed entities.
func (s *Service) FailureCount() int { return s.tracker.FailureCount() }

// SuccessRate returns the success percentage, 100.0 when nothing ran.
func (s *Service) SuccessRate() float64 { return s.tracker.SuccessRate() }

// Reset clears all counters and the failure map for the next batch.
func (s *Service) Reset() { s.tracker.Reset() }
