package config

import (
	"errors"
	"time"
)

// Per-provider minimum call intervals. Alpha Vantage and Finnhub free tiers
// allow 5 requests per minute; Marketstack is looser but metered monthly.
const (
	defaultAlphaVantageInterval = 12 * time.Second
	defaultFinnhubInterval      = 12 * time.Second
	defaultMarketstackInterval  = 2 * time.Second
)

// ErrNoProviderKeys is returned when no market-data API key is configured.
var ErrNoProviderKeys = errors.New(
	"at least one API key required: set ALPHAVANTAGE_API_KEY, FINNHUB_API_KEY, or MARKETSTACK_API_KEY")

// ProviderConfig holds API keys and rate-limit intervals for the
// market-data providers. An empty key disables that provider.
type ProviderConfig struct {
	AlphaVantageKey string
	FinnhubKey      string
	MarketstackKey  string

	AlphaVantageInterval time.Duration
	FinnhubInterval      time.Duration
	MarketstackInterval  time.Duration
}

// LoadProviderConfig loads provider settings from the environment.
//
// Environment variables:
//   - ALPHAVANTAGE_API_KEY, FINNHUB_API_KEY, MARKETSTACK_API_KEY
//   - ALPHAVANTAGE_MIN_INTERVAL (default: 12s)
//   - FINNHUB_MIN_INTERVAL (default: 12s)
//   - MARKETSTACK_MIN_INTERVAL (default: 2s)
func LoadProviderConfig() ProviderConfig {
	positive := func(v time.Duration) bool { return v > 0 }
	return ProviderConfig{
		AlphaVantageKey: loadEnvString("ALPHAVANTAGE_API_KEY", ""),
		FinnhubKey:      loadEnvString("FINNHUB_API_KEY", ""),
		MarketstackKey:  loadEnvString("MARKETSTACK_API_KEY", ""),

		AlphaVantageInterval: loadEnvDuration("ALPHAVANTAGE_MIN_INTERVAL", defaultAlphaVantageInterval, positive),
		FinnhubInterval:      loadEnvDuration("FINNHUB_MIN_INTERVAL", defaultFinnhubInterval, positive),
		MarketstackInterval:  loadEnvDuration("MARKETSTACK_MIN_INTERVAL", defaultMarketstackInterval, positive),
	}
}

// Validate checks that at least one provider is usable.
func (c ProviderConfig) Validate() error {
	if c.AlphaVantageKey == "" && c.FinnhubKey == "" && c.MarketstackKey == "" {
		return ErrNoProviderKeys
	}
	return nil
}
