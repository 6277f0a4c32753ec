package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestNew_StartsClosed(t *testing.T) {
	cb := New(DefaultConfig("test"))

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state, got %v", cb.State())
	}
	if cb.IsOpen() {
		t.Error("new breaker should not be open")
	}
	if cb.Name() != "test" {
		t.Errorf("expected name 'test', got %q", cb.Name())
	}
}

func TestExecute_PassesThroughSuccess(t *testing.T) {
	cb := New(DefaultConfig("test"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected 'ok', got %v", result)
	}
}

func TestExecute_TripsAfterFailures(t *testing.T) {
	cfg := Config{
		Name:             "trip-test",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
	cb := New(cfg)

	boom := errors.New("mail API down")
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, boom
		})
	}

	if !cb.IsOpen() {
		t.Errorf("expected open circuit after repeated failures, state=%v", cb.State())
	}

	// Calls through an open circuit fail fast without running fn.
	ran := false
	_, err := cb.Execute(func() (interface{}, error) {
		ran = true
		return nil, nil
	})
	if err == nil {
		t.Error("expected error from open circuit")
	}
	if ran {
		t.Error("fn must not run while the circuit is open")
	}
}

func TestMailerConfig(t *testing.T) {
	cfg := MailerConfig()

	if cfg.Name != "brevo-mailer" {
		t.Errorf("unexpected name %q", cfg.Name)
	}
	if cfg.FailureThreshold != 0.5 {
		t.Errorf("expected threshold 0.5, got %f", cfg.FailureThreshold)
	}
}
