package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/failure"
)

const (
	marketstackName    = "marketstack"
	marketstackBaseURL = "https://api.marketstack.com"
)

// Marketstack fetches end-of-day stock prices from the /v1/eod/latest
// endpoint. Marketstack serves stocks only; it is the tertiary source
// and never receives crypto symbols.
type Marketstack struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewMarketstack creates a Marketstack adapter.
func NewMarketstack(apiKey string, timeout time.Duration) *Marketstack {
	return &Marketstack{
		client:  newHTTPClient(timeout),
		baseURL: marketstackBaseURL,
		apiKey:  apiKey,
	}
}

// Name implements Adapter.
func (m *Marketstack) Name() string { return marketstackName }

type marketstackResponse struct {
	Data []struct {
		Close float64 `json:"close"`
		Date  string  `json:"date"`
	} `json:"data"`
}

// FetchQuote implements Adapter.
func (m *Marketstack) FetchQuote(ctx context.Context, symbol string) (*entity.Quote, error) {
	params := url.Values{}
	params.Set("access_key", m.apiKey)
	params.Set("symbols", symbol)

	reqURL := m.baseURL + "/v1/eod/latest?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, m.wrapErr(0, fmt.Errorf("build request: %w", err))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, m.wrapErr(0, fmt.Errorf("do request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, m.wrapErr(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, m.wrapErr(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var parsed marketstackResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, m.wrapErr(0, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Data) == 0 {
		return nil, m.wrapErr(0, noData(symbol))
	}

	eod := parsed.Data[0]
	quote := &entity.Quote{
		Symbol:     symbol,
		Price:      eod.Close,
		Currency:   "USD",
		TradingDay: truncateDay(eod.Date),
		Provider:   marketstackName,
		FetchedAt:  time.Now().UTC(),
	}
	if err := quote.Validate(); err != nil {
		return nil, m.wrapErr(0, noData(symbol))
	}
	return quote, nil
}

func (m *Marketstack) wrapErr(status int, err error) error {
	return &failure.ProviderError{
		Provider:   marketstackName,
		Op:         "eod-latest",
		StatusCode: status,
		Err:        err,
	}
}
