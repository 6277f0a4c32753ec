package config

import (
	"errors"
	"time"
)

const (
	defaultFromName = "Quantum Investor Digest"

	// Brevo's transactional API tolerates bursts, but a small gap between
	// sends keeps a large fan-out from tripping their abuse detection.
	defaultMailInterval = 100 * time.Millisecond
)

// ErrNoMailerKey is returned when the transactional email API key is missing.
var ErrNoMailerKey = errors.New("BREVO_API_KEY not configured")

// ErrNoFromEmail is returned when no sender address is configured.
var ErrNoFromEmail = errors.New("BREVO_FROM_EMAIL not configured")

// MailerConfig holds settings for the transactional email provider.
type MailerConfig struct {
	APIKey      string
	FromEmail   string
	FromName    string
	MinInterval time.Duration
}

// LoadMailerConfig loads mailer settings from the environment.
//
// Environment variables:
//   - BREVO_API_KEY
//   - BREVO_FROM_EMAIL
//   - BREVO_FROM_NAME (default: "Quantum Investor Digest")
//   - BREVO_MIN_INTERVAL (default: 100ms)
func LoadMailerConfig() MailerConfig {
	positive := func(v time.Duration) bool { return v > 0 }
	return MailerConfig{
		APIKey:      loadEnvString("BREVO_API_KEY", ""),
		FromEmail:   loadEnvString("BREVO_FROM_EMAIL", ""),
		FromName:    loadEnvString("BREVO_FROM_NAME", defaultFromName),
		MinInterval: loadEnvDuration("BREVO_MIN_INTERVAL", defaultMailInterval, positive),
	}
}

// Validate checks that the mailer is usable.
func (c MailerConfig) Validate() error {
	if c.APIKey == "" {
		return ErrNoMailerKey
	}
	if c.FromEmail == "" {
		return ErrNoFromEmail
	}
	return nil
}
