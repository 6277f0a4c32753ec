// Package resilience groups the reliability primitives shared by every
// outbound call in this system: market-data providers, the blog feed
// and the transactional mailer.
//
// Subpackages:
//   - failure: classifies raw errors into a closed taxonomy of failure
//     kinds and decides which of them are worth retrying.
//   - retry: a generic executor running one operation under an
//     exponential-backoff policy, returning a terminal Outcome.
//   - ratelimit: a per-provider minimum-interval limiter pacing
//     consecutive calls against the same free-tier quota.
//   - circuitbreaker: gobreaker configuration for the mailer boundary.
//
// Usage:
//
//	outcome := retry.Do(ctx, policy, "alphavantage quote AAPL", func(ctx context.Context) (*entity.Quote, error) {
//	    return adapter.FetchQuote(ctx, symbol)
//	})
//	if outcome.Ok() {
//	    use(outcome.Value)
//	}
package resilience
