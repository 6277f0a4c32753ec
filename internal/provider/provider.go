// Package provider contains the adapters for external market-data sources.
// Each adapter normalizes one provider's wire format into entity.Quote and
// maps every abnormal response (empty body, missing field, non-2xx status,
// parse failure) into a *failure.ProviderError carrying the HTTP status when
// one was available. Adapters never retry and never rate-limit themselves;
// both belong to the resilient fetch layer.
package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"quantum-digest/internal/domain/entity"
)

// Adapter fetches a normalized quote for one entity key (a ticker or
// crypto symbol). Implementations are safe for reuse across calls.
type Adapter interface {
	// Name identifies the provider. It doubles as the rate-limiter key.
	Name() string

	// FetchQuote returns the current quote for symbol, or an error that
	// the failure classifier can act on.
	FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error)
}

// ErrNoData marks a well-formed provider response that carried no usable
// quote. It wraps entity.ErrNotFound so classification treats it as a
// missing resource rather than something worth retrying.
var ErrNoData = fmt.Errorf("no quote data returned: %w", entity.ErrNotFound)

func noData(symbol string) error {
	return fmt.Errorf("%s: %w", symbol, ErrNoData)
}

// newHTTPClient builds the HTTP client shared by adapter constructors.
// The timeout is the per-request deadline; on expiry the transport error
// classifies as transient.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
