package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/failure"
)

const (
	alphaVantageName    = "alphavantage"
	alphaVantageBaseURL = "https://www.alphavantage.co"

	// Alpha Vantage answers rate-limited requests with 200 plus a "Note"
	// field, so the body has to be inspected before trusting the status.
	maxResponseBytes = 1 << 20
)

// AlphaVantage fetches stock quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint. Use Crypto() for the currency-exchange-rate variant.
type AlphaVantage struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAlphaVantage creates an Alpha Vantage adapter.
func NewAlphaVantage(apiKey string, timeout time.Duration) *AlphaVantage {
	return &AlphaVantage{
		client:  newHTTPClient(timeout),
		baseURL: alphaVantageBaseURL,
		apiKey:  apiKey,
	}
}

// Name implements Adapter.
func (a *AlphaVantage) Name() string { return alphaVantageName }

type alphaVantageQuoteResponse struct {
	GlobalQuote struct {
		Price            string `json:"05. price"`
		LatestTradingDay string `json:"07. latest trading day"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// FetchQuote implements Adapter for stock symbols.
func (a *AlphaVantage) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", a.apiKey)

	body, err := a.get(ctx, "quote", params)
	if err != nil {
		return nil, err
	}

	var parsed alphaVantageQuoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, a.wrapErr("quote", 0, fmt.Errorf("decode response: %w", err))
	}

	// A "Note" or "Information" body means the per-minute quota is spent.
	if parsed.Note != "" || parsed.Information != "" {
		return nil, a.wrapErr("quote", http.StatusTooManyRequests,
			fmt.Errorf("rate limit exceeded"))
	}
	if parsed.GlobalQuote.Price == "" {
		return nil, a.wrapErr("quote", 0, noData(symbol))
	}

	price, err := strconv.ParseFloat(parsed.GlobalQuote.Price, 64)
	if err != nil {
		return nil, a.wrapErr("quote", 0, fmt.Errorf("parse price %q: %w", parsed.GlobalQuote.Price, err))
	}

	quote := &entity.Quote{
		Symbol:     symbol,
		Price:      price,
		Currency:   "USD",
		TradingDay: truncateDay(parsed.GlobalQuote.LatestTradingDay),
		Provider:   alphaVantageName,
		FetchedAt:  time.Now().UTC(),
	}
	if err := quote.Validate(); err != nil {
		return nil, a.wrapErr("quote", 0, noData(symbol))
	}
	return quote, nil
}

// Crypto returns an Adapter view fetching crypto exchange rates against USD.
func (a *AlphaVantage) Crypto() Adapter {
	return &alphaVantageCrypto{av: a}
}

type alphaVantageCrypto struct {
	av *AlphaVantage
}

func (c *alphaVantageCrypto) Name() string { return alphaVantageName }

type alphaVantageRateResponse struct {
	Rate struct {
		ExchangeRate  string `json:"5. Exchange Rate"`
		LastRefreshed string `json:"6. Last Refreshed"`
	} `json:"Realtime Currency Exchange Rate"`
	Note string `json:"Note"`
}

// FetchQuote fetches the USD exchange rate for a crypto symbol.
func (c *alphaVantageCrypto) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", symbol)
	params.Set("to_currency", "USD")
	params.Set("apikey", c.av.apiKey)

	body, err := c.av.get(ctx, "exchange-rate", params)
	if err != nil {
		return nil, err
	}

	var parsed alphaVantageRateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, c.av.wrapErr("exchange-rate", 0, fmt.Errorf("decode response: %w", err))
	}
	if parsed.Note != "" {
		return nil, c.av.wrapErr("exchange-rate", http.StatusTooManyRequests,
			fmt.Errorf("rate limit exceeded"))
	}
	if parsed.Rate.ExchangeRate == "" {
		return nil, c.av.wrapErr("exchange-rate", 0, noData(symbol))
	}

	price, err := strconv.ParseFloat(parsed.Rate.ExchangeRate, 64)
	if err != nil {
		return nil, c.av.wrapErr("exchange-rate", 0,
			fmt.Errorf("parse rate %q: %w", parsed.Rate.ExchangeRate, err))
	}

	quote := &entity.Quote{
		Symbol:     symbol,
		Price:      price,
		Currency:   "USD",
		TradingDay: truncateDay(parsed.Rate.LastRefreshed),
		Provider:   alphaVantageName,
		FetchedAt:  time.Now().UTC(),
	}
	if err := quote.Validate(); err != nil {
		return nil, c.av.wrapErr("exchange-rate", 0, noData(symbol))
	}
	return quote, nil
}

// get performs one HTTP GET against the Alpha Vantage query endpoint.
func (a *AlphaVantage) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	reqURL := a.baseURL + "/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, a.wrapErr(op, 0, fmt.Errorf("build request: %w", err))
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, a.wrapErr(op, 0, fmt.Errorf("do request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, a.wrapErr(op, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, a.wrapErr(op, resp.StatusCode,
			fmt.Errorf("unexpected status %s", resp.Status))
	}
	if len(body) == 0 {
		return nil, a.wrapErr(op, resp.StatusCode, fmt.Errorf("empty response body"))
	}
	return body, nil
}

func (a *AlphaVantage) wrapErr(op string, status int, err error) error {
	return &failure.ProviderError{
		Provider:   alphaVantageName,
		Op:         op,
		StatusCode: status,
		Err:        err,
	}
}

// truncateDay keeps the YYYY-MM-DD prefix of a provider date string.
func truncateDay(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
