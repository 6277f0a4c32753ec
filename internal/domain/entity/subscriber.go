package entity

import (
	"strings"
	"time"
)

// Subscriber represents a newsletter subscriber.
// Unsubscribes are soft: the row stays, Active flips to false.
type Subscriber struct {
	ID           int64
	Email        string
	SubscribedAt time.Time
	Active       bool
}

// NewSubscriber builds a subscriber for the given address.
// The email is normalized to lowercase so it can serve as the unique key.
func NewSubscriber(email string) (*Subscriber, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &Subscriber{
		Email:        normalized,
		SubscribedAt: time.Now().UTC(),
		Active:       true,
	}, nil
}

// NormalizeEmail validates an email address and returns its canonical
// (trimmed, lowercased) form.
func NormalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if err := ValidateEmail(trimmed); err != nil {
		return "", err
	}
	return strings.ToLower(trimmed), nil
}
