package fetch

import "sync"

// Stats holds the aggregate counters for one tracker lifetime.
// All counters are non-negative and grow monotonically until Reset.
type Stats struct {
	// TotalAttempts counts entity-level fetches, one per FetchWithRetry call.
	TotalAttempts int

	// PrimarySuccesses counts entities resolved by the primary provider.
	PrimarySuccesses int

	// FallbackSuccesses counts entities resolved by the single-shot fallback.
	FallbackSuccesses int

	// TotalFailures counts entities for which every source was exhausted.
	TotalFailures int

	// RetriesUsed counts retries consumed before an eventual primary
	// success. Retries burned on the way to a fallback success or a
	// terminal failure are not tallied; dashboards read this counter as
	// "extra work spent on entities that still resolved on primary".
	RetriesUsed int
}

// Tracker accumulates fetch outcomes and the per-entity failure map.
// A mutex guards the state so callers that parallelize batches later
// do not have to change this type.
type Tracker struct {
	mu       sync.Mutex
	stats    Stats
	failures map[string]string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		failures: make(map[string]string),
	}
}

func (t *Tracker) recordAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.TotalAttempts++
}

func (t *Tracker) recordPrimarySuccess(retries int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.PrimarySuccesses++
	t.stats.RetriesUsed += retries
}

func (t *Tracker) recordFallbackSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.FallbackSuccesses++
}

// recordFailure notes a terminal failure for key. A repeated failure for
// the same key overwrites the previous reason.
func (t *Tracker) recordFailure(key, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.TotalFailures++
	t.failures[key] = reason
}

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Failures returns a copy of the entity-to-reason failure map.
func (t *Tracker) Failures() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]string, len(t.failures))
	for k, v := range t.failures {
		out[k] = v
	}
	return out
}

// HasFailures reports whether any entity has failed since the last reset.
func (t *Tracker) HasFailures() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.failures) > 0
}

// FailureCount returns the number of distinct failed entities.
func (t *Tracker) FailureCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.failures)
}

// SuccessRate returns the percentage of attempts that resolved to a
// quote. With nothing attempted the rate is 100.0, so an empty batch
// reads as fully successful rather than dividing by zero.
func (t *Tracker) SuccessRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stats.TotalAttempts == 0 {
		return 100.0
	}
	succeeded := t.stats.PrimarySuccesses + t.stats.FallbackSuccesses
	return float64(succeeded) / float64(t.stats.TotalAttempts) * 100.0
}

// Reset zeroes all counters and clears the failure map so the tracker
// can be reused across independent batches.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = Stats{}
	t.failures = make(map[string]string)
}
