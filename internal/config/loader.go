// Package config loads application configuration from the environment with
// validated fallbacks. Invalid values never abort startup: they fall back to
// the documented default with a warning, so a typo in one variable cannot
// take the weekly job down.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// loadEnvString returns the environment value for key, or def when unset.
func loadEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvInt parses an integer environment variable.
// Values that fail to parse or fail validation fall back to def with a warning.
func loadEnvInt(key string, def int, validate func(int) bool) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || (validate != nil && !validate(parsed)) {
		slog.Warn("invalid config value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", def))
		return def
	}
	return parsed
}

// loadEnvFloat parses a float environment variable with the same fallback rules.
func loadEnvFloat(key string, def float64, validate func(float64) bool) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || (validate != nil && !validate(parsed)) {
		slog.Warn("invalid config value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Float64("default", def))
		return def
	}
	return parsed
}

// loadEnvDuration parses a duration environment variable ("12s", "2m")
// with the same fallback rules.
func loadEnvDuration(key string, def time.Duration, validate func(time.Duration) bool) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || (validate != nil && !validate(parsed)) {
		slog.Warn("invalid config value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", def))
		return def
	}
	return parsed
}
