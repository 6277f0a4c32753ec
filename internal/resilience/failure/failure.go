// Package failure classifies errors from external providers into a closed
// set of kinds. The retry layer consults the classification instead of
// inspecting raw errors, so retry decisions live in exactly one place.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"quantum-digest/internal/domain/entity"
)

// Kind is the classification of a failed provider call.
type Kind string

const (
	// KindTransientNetwork covers connection refused, resets, timeouts and
	// DNS failures. Retryable.
	KindTransientNetwork Kind = "transient-network"

	// KindRateLimited is HTTP 429. Retryable after backoff.
	KindRateLimited Kind = "rate-limited"

	// KindServerError is any 5xx response. Retryable.
	KindServerError Kind = "server-error"

	// KindClientError is a 4xx other than 404/409/429. Never retried.
	KindClientError Kind = "client-error"

	// KindNotFound means the target resource does not exist. Never retried.
	KindNotFound Kind = "not-found"

	// KindConflict means the resource already exists. This is a benign
	// outcome, not a failure: it must never enter the retry loop.
	KindConflict Kind = "conflict"

	// KindUnknown is everything else (programming errors, malformed input,
	// cancelled contexts). Never retried.
	KindUnknown Kind = "unknown"
)

// Retryable reports whether an attempt that failed with this kind is worth
// repeating after a delay.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransientNetwork, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// Benign reports whether the kind is a success-like terminal state rather
// than an error (duplicate-create semantics).
func (k Kind) Benign() bool {
	return k == KindConflict
}

// Classified pairs a kind with the original error detail.
// Produced fresh per failed call attempt.
type Classified struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (c Classified) Error() string {
	return fmt.Sprintf("%s: %v", c.Kind, c.Err)
}

// Unwrap exposes the original error for errors.Is/As chains.
func (c Classified) Unwrap() error {
	return c.Err
}

// ProviderError is the error a provider adapter raises at its boundary.
// It carries the HTTP status when one was available, so classification
// never has to re-parse a provider response.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int // 0 when no HTTP status applies
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: HTTP %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Classify maps an error to its Classified form. Rules, in priority order:
//
//  1. duplicate-create ("already exists") → KindConflict, benign
//  2. missing resource → KindNotFound
//  3. HTTP 5xx or 429 → retryable
//  4. network-level errors (refused, reset, timeout, DNS) → retryable
//  5. everything else → KindClientError / KindUnknown, never retried
//
// Classification is pure: no logging, no side effects.
func Classify(err error) Classified {
	if err == nil {
		return Classified{Kind: KindUnknown, Err: err}
	}

	if errors.Is(err, entity.ErrAlreadyExists) {
		return Classified{Kind: KindConflict, Err: err}
	}
	if errors.Is(err, entity.ErrNotFound) {
		return Classified{Kind: KindNotFound, Err: err}
	}

	// Cancelled work is never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Classified{Kind: KindUnknown, Err: err}
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.StatusCode != 0 {
		return Classified{Kind: classifyStatus(provErr.StatusCode), Err: err}
	}

	if isNetworkError(err) {
		return Classified{Kind: KindTransientNetwork, Err: err}
	}

	return Classified{Kind: KindUnknown, Err: err}
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500 && status < 600:
		return KindServerError
	case status >= 400 && status < 500:
		return KindClientError
	default:
		return KindUnknown
	}
}

// isNetworkError reports whether the error chain contains a
// transport-level failure.
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH)
}
