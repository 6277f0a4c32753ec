package newsletter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quantum-digest/internal/config"
	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/usecase/fetch"
)

type stubAdapter struct {
	name string
	fail map[string]bool
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) FetchQuote(_ context.Context, symbol string) (*entity.Quote, error) {
	if a.fail[symbol] {
		return nil, fmt.Errorf("%s: %w", symbol, entity.ErrNotFound)
	}
	return &entity.Quote{
		Symbol:     symbol,
		Price:      100,
		Currency:   "USD",
		TradingDay: "2025-06-13",
		Provider:   a.name,
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func TestMarketSnapshot(t *testing.T) {
	fetcher := fetch.NewService(quickPolicy())
	stocks := &stubAdapter{name: "stocks", fail: map[string]bool{"MSFT": true}}
	crypto := &stubAdapter{name: "crypto"}

	snapshot := NewMarketSnapshot(
		fetcher,
		stocks, nil,
		crypto, nil,
		config.Watchlist{Stocks: []string{"AAPL", "MSFT"}, Crypto: []string{"BTC"}},
		0,
	)

	rows, err := snapshot.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot err=%v", err)
	}

	// MSFT exhausted every source, so the snapshot skips it and the
	// digest still carries the rest.
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Symbol != "AAPL" || rows[1].Symbol != "BTC" {
		t.Errorf("unexpected row order: %s, %s", rows[0].Symbol, rows[1].Symbol)
	}
	if !fetcher.HasFailures() {
		t.Error("expected MSFT recorded in the failure map")
	}
}
