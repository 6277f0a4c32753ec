package provider

import (
	"time"

	"quantum-digest/internal/config"
)

// Registry holds the configured provider adapters and encodes the
// source priority: Alpha Vantage first, Finnhub second, Marketstack
// last and for stocks only.
type Registry struct {
	alphaVantage *AlphaVantage
	finnhub      *Finnhub
	marketstack  *Marketstack
}

// NewRegistry builds adapters for every provider with a configured key.
func NewRegistry(cfg config.ProviderConfig, timeout time.Duration) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := &Registry{}
	if cfg.AlphaVantageKey != "" {
		reg.alphaVantage = NewAlphaVantage(cfg.AlphaVantageKey, timeout)
	}
	if cfg.FinnhubKey != "" {
		reg.finnhub = NewFinnhub(cfg.FinnhubKey, timeout)
	}
	if cfg.MarketstackKey != "" {
		reg.marketstack = NewMarketstack(cfg.MarketstackKey, timeout)
	}
	return reg, nil
}

// StockChain returns the primary and fallback adapters for stock
// symbols. The fallback is nil when only one provider is configured.
func (r *Registry) StockChain() (primary, fallback Adapter) {
	chain := r.Stocks()
	if len(chain) > 0 {
		primary = chain[0]
	}
	if len(chain) > 1 {
		fallback = chain[1]
	}
	return primary, fallback
}

// CryptoChain returns the primary and fallback adapters for crypto
// symbols. Marketstack has no crypto endpoint and never appears here.
func (r *Registry) CryptoChain() (primary, fallback Adapter) {
	var chain []Adapter
	if r.alphaVantage != nil {
		chain = append(chain, r.alphaVantage.Crypto())
	}
	if r.finnhub != nil {
		chain = append(chain, r.finnhub.Crypto())
	}
	if len(chain) > 0 {
		primary = chain[0]
	}
	if len(chain) > 1 {
		fallback = chain[1]
	}
	return primary, fallback
}

// Stocks returns every configured stock adapter in priority order.
func (r *Registry) Stocks() []Adapter {
	var chain []Adapter
	if r.alphaVantage != nil {
		chain = append(chain, r.alphaVantage)
	}
	if r.finnhub != nil {
		chain = append(chain, r.finnhub)
	}
	if r.marketstack != nil {
		chain = append(chain, r.marketstack)
	}
	return chain
}
