// Package mailer delivers transactional email through the Brevo API.
// Every send goes through a circuit breaker and a pacing limiter so a
// newsletter fan-out cannot hammer Brevo when their API is degraded.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"quantum-digest/internal/config"
	"quantum-digest/internal/observability/metrics"
	"quantum-digest/internal/resilience/circuitbreaker"
	"quantum-digest/internal/resilience/failure"
)

const (
	brevoName    = "brevo"
	brevoBaseURL = "https://api.brevo.com"

	maxResponseBytes = 1 << 20
)

// Brevo sends HTML email through the /v3/smtp/email endpoint.
type Brevo struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	fromEmail string
	fromName  string
	breaker   *circuitbreaker.CircuitBreaker
	limiter   *rate.Limiter
}

// NewBrevo creates a Brevo mailer from configuration.
func NewBrevo(cfg config.MailerConfig) *Brevo {
	return &Brevo{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   brevoBaseURL,
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		breaker:   circuitbreaker.New(circuitbreaker.MailerConfig()),
		limiter:   rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoSendRequest struct {
	Sender      brevoAddress      `json:"sender"`
	To          []brevoAddress    `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoSendResponse struct {
	MessageID string `json:"messageId"`
}

// Send delivers one HTML email. The returned error wraps a
// failure.ProviderError so callers can classify it; an open circuit
// surfaces as a plain error and fails fast without a network call.
func (b *Brevo) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail pacing aborted: %w", err)
	}

	start := time.Now()
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.send(ctx, to, subject, htmlBody)
	})
	metrics.RecordMailDelivery(err == nil, time.Since(start))
	if err != nil {
		return err
	}

	slog.Info("email sent",
		slog.String("to", to),
		slog.String("message_id", result.(string)))
	return nil
}

// send performs the HTTP call and returns the Brevo message ID.
func (b *Brevo) send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	payload := brevoSendRequest{
		Sender:      brevoAddress{Email: b.fromEmail, Name: b.fromName},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
		Headers: map[string]string{
			// Correlates our logs with Brevo's delivery dashboard.
			"X-Mailin-custom": uuid.NewString(),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", b.wrapErr(0, fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return "", b.wrapErr(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", b.wrapErr(0, fmt.Errorf("do request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", b.wrapErr(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", b.wrapErr(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var parsed brevoSendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", b.wrapErr(0, fmt.Errorf("decode response: %w", err))
	}
	return parsed.MessageID, nil
}

func (b *Brevo) wrapErr(status int, err error) error {
	return &failure.ProviderError{
		Provider:   brevoName,
		Op:         "send-email",
		StatusCode: status,
		Err:        err,
	}
}
