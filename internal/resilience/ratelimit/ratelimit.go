// Package ratelimit spaces out calls to external providers.
// Each provider key gets its own limiter enforcing a minimum interval
// between consecutive calls, matching the per-minute quotas the
// market-data APIs impose.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ProviderLimiter tracks one token-bucket limiter per provider key.
// Limiters are created lazily on first use and live for the process
// lifetime. A burst of one token makes the bucket equivalent to
// "at least minInterval since the last call": the slot is consumed
// whether or not the call that follows succeeds.
type ProviderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewProviderLimiter creates an empty ProviderLimiter.
func NewProviderLimiter() *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until at least minInterval has elapsed since the last call
// recorded for key, then consumes the slot. A non-positive interval waits
// for nothing. The only error is a cancelled or expired context.
func (p *ProviderLimiter) Wait(ctx context.Context, key string, minInterval time.Duration) error {
	if minInterval <= 0 {
		return nil
	}
	return p.limiterFor(key, minInterval).Wait(ctx)
}

// limiterFor returns the limiter for key, creating it on first use.
// If the caller changed the interval since last time, the limiter is
// adjusted rather than replaced so the last-call state is kept.
func (p *ProviderLimiter) limiterFor(key string, minInterval time.Duration) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	limit := rate.Every(minInterval)
	limiter, ok := p.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(limit, 1)
		p.limiters[key] = limiter
		return limiter
	}
	if limiter.Limit() != limit {
		limiter.SetLimit(limit)
	}
	return limiter
}
