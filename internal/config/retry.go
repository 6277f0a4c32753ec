package config

import (
	"time"

	"quantum-digest/internal/resilience/retry"
)

// Retry defaults. These match the quotas of the free-tier providers this
// system talks to; override per deployment via environment variables.
const (
	defaultMaxRetries     = 3
	defaultBackoffBase    = 2.0
	defaultInitialDelay   = 1 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// RetryConfig holds the retry executor settings and the per-request timeout
// handed to provider HTTP clients.
type RetryConfig struct {
	MaxRetries     int
	BackoffBase    float64
	InitialDelay   time.Duration
	RequestTimeout time.Duration
}

// LoadRetryConfig loads retry settings from the environment.
//
// Environment variables:
//   - MAX_RETRIES: retries after the initial attempt (default: 3)
//   - BACKOFF_BASE: exponential backoff multiplier (default: 2.0)
//   - INITIAL_DELAY: delay before the first retry (default: 1s)
//   - REQUEST_TIMEOUT: per-request HTTP timeout (default: 10s)
func LoadRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: loadEnvInt("MAX_RETRIES", defaultMaxRetries,
			func(v int) bool { return v >= 0 }),
		BackoffBase: loadEnvFloat("BACKOFF_BASE", defaultBackoffBase,
			func(v float64) bool { return v > 1 }),
		InitialDelay: loadEnvDuration("INITIAL_DELAY", defaultInitialDelay,
			func(v time.Duration) bool { return v >= 0 }),
		RequestTimeout: loadEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout,
			func(v time.Duration) bool { return v > 0 }),
	}
}

// Policy converts the config into a retry.Policy value.
func (c RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxRetries:   c.MaxRetries,
		InitialDelay: c.InitialDelay,
		BackoffBase:  c.BackoffBase,
	}
}
