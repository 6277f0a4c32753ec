package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/usecase/subscription"
)

type fakeSubscriptionService struct {
	subscribeStatus subscription.Status
	subscribeErr    error
	unsubEmail      string
	unsubErr        error
}

func (f *fakeSubscriptionService) Subscribe(_ context.Context, email string) (subscription.Status, error) {
	return f.subscribeStatus, f.subscribeErr
}

func (f *fakeSubscriptionService) Unsubscribe(_ context.Context, token string) (string, error) {
	return f.unsubEmail, f.unsubErr
}

func TestSubscribeHandler_Created(t *testing.T) {
	svc := &fakeSubscriptionService{subscribeStatus: subscription.StatusCreated}
	handler := SubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{"email":"reader@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp subscribeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "created" {
		t.Errorf("expected status created, got %q", resp.Status)
	}
}

func TestSubscribeHandler_Exists(t *testing.T) {
	svc := &fakeSubscriptionService{subscribeStatus: subscription.StatusExists}
	handler := SubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{"email":"reader@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already subscribed") {
		t.Errorf("expected duplicate message, got %s", rec.Body.String())
	}
}

func TestSubscribeHandler_InvalidEmail(t *testing.T) {
	svc := &fakeSubscriptionService{
		subscribeErr: &entity.ValidationError{Field: "email", Message: "invalid email format"},
	}
	handler := SubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{"email":"junk"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubscribeHandler_MalformedBody(t *testing.T) {
	handler := SubscribeHandler(&fakeSubscriptionService{})

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubscribeHandler_StorageFailureMasked(t *testing.T) {
	svc := &fakeSubscriptionService{
		subscribeErr: fmt.Errorf("pq: connection to 10.0.0.5:5432 refused"),
	}
	handler := SubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(`{"email":"reader@example.com"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Error("internal error detail must not leak to clients")
	}
}

func TestUnsubscribeHandler(t *testing.T) {
	svc := &fakeSubscriptionService{unsubEmail: "reader@example.com"}
	handler := UnsubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token=sometoken", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp unsubscribeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "unsubscribed" || resp.Email != "reader@example.com" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestUnsubscribeHandler_MissingToken(t *testing.T) {
	handler := UnsubscribeHandler(&fakeSubscriptionService{})

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnsubscribeHandler_InvalidToken(t *testing.T) {
	svc := &fakeSubscriptionService{unsubErr: subscription.ErrInvalidToken}
	handler := UnsubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token=bad", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUnsubscribeHandler_UnknownSubscriber(t *testing.T) {
	svc := &fakeSubscriptionService{
		unsubErr: fmt.Errorf("subscriber ghost@example.com: %w", entity.ErrNotFound),
	}
	handler := UnsubscribeHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token=sometoken", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
