package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/failure"
)

const (
	finnhubName    = "finnhub"
	finnhubBaseURL = "https://finnhub.io"
)

// Finnhub fetches quotes from the Finnhub /api/v1/quote endpoint.
// Use Crypto() for the variant that maps bare crypto symbols onto
// Finnhub's exchange-prefixed form.
type Finnhub struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewFinnhub creates a Finnhub adapter.
func NewFinnhub(apiKey string, timeout time.Duration) *Finnhub {
	return &Finnhub{
		client:  newHTTPClient(timeout),
		baseURL: finnhubBaseURL,
		apiKey:  apiKey,
	}
}

// Name implements Adapter.
func (f *Finnhub) Name() string { return finnhubName }

type finnhubQuoteResponse struct {
	Current   float64 `json:"c"`
	Timestamp int64   `json:"t"`
}

// FetchQuote implements Adapter.
func (f *Finnhub) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	return f.fetch(ctx, symbol, symbol)
}

// Crypto returns an Adapter view for crypto symbols.
func (f *Finnhub) Crypto() Adapter {
	return &finnhubCrypto{fh: f}
}

type finnhubCrypto struct {
	fh *Finnhub
}

func (c *finnhubCrypto) Name() string { return finnhubName }

// FetchQuote maps generic crypto symbols to Finnhub's exchange form
// (BTC trades as BINANCE:BTCUSDT) before fetching.
func (c *finnhubCrypto) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	wireSymbol := symbol
	if strings.EqualFold(symbol, "BTC") {
		wireSymbol = "BINANCE:BTCUSDT"
	}
	return c.fh.fetch(ctx, symbol, wireSymbol)
}

// fetch performs the quote request. symbol is the caller's entity key,
// wireSymbol what Finnhub expects on the wire.
func (f *Finnhub) fetch(ctx context.Context, symbol, wireSymbol string) (*entity.Quote, error) {
	params := url.Values{}
	params.Set("symbol", wireSymbol)
	params.Set("token", f.apiKey)

	reqURL := f.baseURL + "/api/v1/quote?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, f.wrapErr(0, fmt.Errorf("build request: %w", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.wrapErr(0, fmt.Errorf("do request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, f.wrapErr(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, f.wrapErr(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var parsed finnhubQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, f.wrapErr(0, fmt.Errorf("decode response: %w", err))
	}

	// Finnhub reports unknown symbols as an all-zero quote, not an error.
	if parsed.Current == 0 {
		return nil, f.wrapErr(0, noData(symbol))
	}

	tradingDay := ""
	if parsed.Timestamp > 0 {
		tradingDay = time.Unix(parsed.Timestamp, 0).UTC().Format("2006-01-02")
	}

	quote := &entity.Quote{
		Symbol:     symbol,
		Price:      parsed.Current,
		Currency:   "USD",
		TradingDay: tradingDay,
		Provider:   finnhubName,
		FetchedAt:  time.Now().UTC(),
	}
	if err := quote.Validate(); err != nil {
		return nil, f.wrapErr(0, noData(symbol))
	}
	return quote, nil
}

func (f *Finnhub) wrapErr(status int, err error) error {
	return &failure.ProviderError{
		Provider:   finnhubName,
		Op:         "quote",
		StatusCode: status,
		Err:        err,
	}
}
