package newsletter

import (
	"context"
	"time"

	"quantum-digest/internal/config"
	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/provider"
	"quantum-digest/internal/usecase/fetch"
)

// QuoteRow is one line of the digest's market snapshot table.
type QuoteRow struct {
	Symbol     string
	Price      float64
	Currency   string
	TradingDay string
	Provider   string
}

// QuoteSource supplies the market snapshot for the digest.
type QuoteSource interface {
	Snapshot(ctx context.Context) ([]QuoteRow, error)
}

// MarketSnapshot fetches watchlist quotes through the resilient fetch
// service. Symbols that exhaust every provider are simply absent from
// the snapshot; the digest goes out regardless.
type MarketSnapshot struct {
	fetcher *fetch.Service

	stockPrimary   provider.Adapter
	stockFallback  provider.Adapter
	cryptoPrimary  provider.Adapter
	cryptoFallback provider.Adapter

	watchlist   config.Watchlist
	minInterval time.Duration
}

// NewMarketSnapshot creates a MarketSnapshot. Fallback adapters may be
// nil when only one provider is configured.
func NewMarketSnapshot(
	fetcher *fetch.Service,
	stockPrimary, stockFallback provider.Adapter,
	cryptoPrimary, cryptoFallback provider.Adapter,
	watchlist config.Watchlist,
	minInterval time.Duration,
) *MarketSnapshot {
	return &MarketSnapshot{
		fetcher:        fetcher,
		stockPrimary:   stockPrimary,
		stockFallback:  stockFallback,
		cryptoPrimary:  cryptoPrimary,
		cryptoFallback: cryptoFallback,
		watchlist:      watchlist,
		minInterval:    minInterval,
	}
}

// Snapshot returns quote rows in watchlist order, stocks first.
func (m *MarketSnapshot) Snapshot(ctx context.Context) ([]QuoteRow, error) {
	rows := make([]QuoteRow, 0, len(m.watchlist.Stocks)+len(m.watchlist.Crypto))

	stocks := m.fetcher.FetchBatch(ctx, m.watchlist.Stocks, m.stockPrimary, m.stockFallback, m.minInterval, true)
	for _, symbol := range m.watchlist.Stocks {
		if quote, ok := stocks[symbol]; ok {
			rows = append(rows, rowFromQuote(quote))
		}
	}

	if m.cryptoPrimary != nil {
		crypto := m.fetcher.FetchBatch(ctx, m.watchlist.Crypto, m.cryptoPrimary, m.cryptoFallback, m.minInterval, true)
		for _, symbol := range m.watchlist.Crypto {
			if quote, ok := crypto[symbol]; ok {
				rows = append(rows, rowFromQuote(quote))
			}
		}
	}

	return rows, ctx.Err()
}

func rowFromQuote(quote *entity.Quote) QuoteRow {
	return QuoteRow{
		Symbol:     quote.Symbol,
		Price:      quote.Price,
		Currency:   quote.Currency,
		TradingDay: quote.TradingDay,
		Provider:   quote.Provider,
	}
}
