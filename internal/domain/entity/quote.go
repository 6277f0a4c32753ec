// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Quote and Subscriber, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// AssetType distinguishes stock symbols from crypto symbols.
// Some providers (Marketstack) only serve stocks.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// Quote represents a normalized price quote for one symbol from one provider.
// Adapters map their provider-specific response shapes into this form.
type Quote struct {
	Symbol     string
	Price      float64
	Currency   string
	TradingDay string // YYYY-MM-DD, empty when the provider omits it
	Provider   string
	FetchedAt  time.Time
}

// Validate checks that the quote carries usable data.
// A zero or negative price is treated as "no data" by every provider
// in this system, so it is rejected here rather than in each adapter.
func (q *Quote) Validate() error {
	if q.Symbol == "" {
		return &ValidationError{Field: "symbol", Message: "symbol is required"}
	}
	if q.Price <= 0 {
		return &ValidationError{Field: "price", Message: "price must be positive"}
	}
	if q.Provider == "" {
		return &ValidationError{Field: "provider", Message: "provider is required"}
	}
	return nil
}
