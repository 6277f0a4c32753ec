package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/resilience/failure"
)

func newTestMarketstack(t *testing.T, handler http.HandlerFunc) *Marketstack {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ms := NewMarketstack("test-key", 2*time.Second)
	ms.baseURL = server.URL
	return ms
}

func TestMarketstackFetchQuote(t *testing.T) {
	ms := newTestMarketstack(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("access_key") != "test-key" {
			t.Errorf("expected access_key test-key, got %q", q.Get("access_key"))
		}
		if q.Get("symbols") != "TSLA" {
			t.Errorf("expected symbols TSLA, got %q", q.Get("symbols"))
		}
		_, _ = w.Write([]byte(`{
			"data": [
				{"close": 244.4, "date": "2025-06-13T00:00:00+0000"}
			]
		}`))
	})

	quote, err := ms.FetchQuote(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price != 244.4 {
		t.Errorf("expected price 244.4, got %f", quote.Price)
	}
	if quote.TradingDay != "2025-06-13" {
		t.Errorf("expected trading day 2025-06-13, got %q", quote.TradingDay)
	}
	if quote.Provider != "marketstack" {
		t.Errorf("expected provider marketstack, got %q", quote.Provider)
	}
}

func TestMarketstackFetchQuote_EmptyData(t *testing.T) {
	ms := newTestMarketstack(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	})

	_, err := ms.FetchQuote(context.Background(), "NOPE")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected not-found chain, got %v", err)
	}
}

func TestMarketstackFetchQuote_Forbidden(t *testing.T) {
	// A revoked key must classify as client-error and never retry.
	ms := newTestMarketstack(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid access key", http.StatusForbidden)
	})

	_, err := ms.FetchQuote(context.Background(), "TSLA")
	if got := failure.Classify(err); got.Kind != failure.KindClientError {
		t.Errorf("expected client-error classification, got %v", got.Kind)
	}
}

func TestMarketstackFetchQuote_ZeroClose(t *testing.T) {
	ms := newTestMarketstack(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"close": 0, "date": ""}]}`))
	})

	_, err := ms.FetchQuote(context.Background(), "TSLA")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("expected not-found chain for zero close, got %v", err)
	}
}
