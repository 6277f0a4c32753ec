package repository

import (
	"context"

	"quantum-digest/internal/domain/entity"
)

// SubscriberRepository persists newsletter subscribers.
type SubscriberRepository interface {
	// Create inserts a new subscriber. A duplicate email returns an error
	// wrapping entity.ErrAlreadyExists; callers treat that as a benign
	// "already subscribed" outcome, never as a failure to retry.
	Create(ctx context.Context, subscriber *entity.Subscriber) error
	// GetByEmail returns the subscriber for a normalized email address.
	// Returns an error wrapping entity.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
	// ListActive returns all active subscribers ordered by subscription time.
	ListActive(ctx context.Context) ([]*entity.Subscriber, error)
	// Deactivate flips a subscriber to inactive, keeping the row.
	// Returns an error wrapping entity.ErrNotFound when no active
	// subscriber has that email.
	Deactivate(ctx context.Context, email string) error
	// CountActive returns the number of active subscribers.
	CountActive(ctx context.Context) (int64, error)
}
