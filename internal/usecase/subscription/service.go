// Package subscription implements subscribe and unsubscribe flows for
// the newsletter mailing list. Storage calls run through the same retry
// executor as the market-data fetches, so a transient database error
// never surfaces to the reader pressing the subscribe button.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"quantum-digest/internal/domain/entity"
	"quantum-digest/internal/observability/metrics"
	"quantum-digest/internal/repository"
	"quantum-digest/internal/resilience/retry"
)

// Status is the caller-visible outcome of a subscribe call.
type Status string

const (
	// StatusCreated means a new subscriber row was inserted.
	StatusCreated Status = "created"

	// StatusExists means the address was already subscribed. This is the
	// benign duplicate outcome, reported as such and never retried.
	StatusExists Status = "exists"
)

// Service handles mailing-list membership.
type Service struct {
	repo   repository.SubscriberRepository
	tokens *TokenManager
	policy retry.Policy
}

// NewService creates a subscription Service.
func NewService(repo repository.SubscriberRepository, tokens *TokenManager, policy retry.Policy) *Service {
	return &Service{repo: repo, tokens: tokens, policy: policy}
}

// Subscribe adds email to the mailing list. Invalid addresses fail
// immediately with a validation error; a duplicate reports StatusExists.
func (s *Service) Subscribe(ctx context.Context, email string) (Status, error) {
	subscriber, err := entity.NewSubscriber(email)
	if err != nil {
		return "", err
	}

	outcome := retry.Do(ctx, s.policy, "subscriber create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Create(ctx, subscriber)
	})
	if outcome.Exists {
		slog.Info("already subscribed", slog.String("email", subscriber.Email))
		return StatusExists, nil
	}
	if outcome.Failure != nil {
		return "", fmt.Errorf("subscribe %s: %w", subscriber.Email, outcome.Failure)
	}

	s.updateSubscriberGauge(ctx)
	slog.Info("subscriber created",
		slog.String("email", subscriber.Email),
		slog.Int64("id", subscriber.ID))
	return StatusCreated, nil
}

// Unsubscribe deactivates the subscriber named by a signed token.
// An unknown or already-inactive address surfaces entity.ErrNotFound.
func (s *Service) Unsubscribe(ctx context.Context, token string) (string, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	outcome := retry.Do(ctx, s.policy, "subscriber deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Deactivate(ctx, email)
	})
	if outcome.Failure != nil {
		return "", fmt.Errorf("unsubscribe %s: %w", email, outcome.Failure)
	}

	s.updateSubscriberGauge(ctx)
	slog.Info("subscriber deactivated", slog.String("email", email))
	return email, nil
}

// UnsubscribeToken returns a signed token for embedding in mail footers.
func (s *Service) UnsubscribeToken(email string) (string, error) {
	return s.tokens.Generate(email)
}

func (s *Service) updateSubscriberGauge(ctx context.Context) {
	count, err := s.repo.CountActive(ctx)
	if err != nil {
		slog.Warn("subscriber count unavailable", slog.Any("error", err))
		return
	}
	metrics.SubscribersActive.Set(float64(count))
}
