// Package worker holds the operational plumbing of the newsletter
// worker process: configuration, health endpoints and job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config controls the newsletter worker's schedule and limits.
// Loading is fail-open: an invalid value logs a warning and falls back
// to the default, so a typo in one variable cannot keep the digest from
// going out.
type Config struct {
	// CronSchedule is the standard five-field cron expression for the
	// weekly send. Default is Friday at 12:00.
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	Timezone string

	// SendTimeout bounds one full newsletter run, market fetches and
	// mail fan-out included.
	SendTimeout time.Duration

	// HealthPort serves liveness and readiness probes.
	HealthPort int

	// MetricsPort serves the Prometheus scrape endpoint.
	MetricsPort int
}

// DefaultConfig returns the production defaults: Friday noon UTC,
// matching the original weekly schedule.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "0 12 * * 5",
		Timezone:     "UTC",
		SendTimeout:  10 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// LoadConfigFromEnv reads worker settings from the environment.
//
// Environment variables:
//   - NEWSLETTER_CRON (default: "0 12 * * 5")
//   - NEWSLETTER_TIMEZONE (default: "UTC")
//   - NEWSLETTER_SEND_TIMEOUT (default: 10m)
//   - WORKER_HEALTH_PORT (default: 9091)
//   - WORKER_METRICS_PORT (default: 9090)
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()

	if schedule := os.Getenv("NEWSLETTER_CRON"); schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			logger.Warn("invalid NEWSLETTER_CRON, using default",
				slog.String("value", schedule),
				slog.String("default", cfg.CronSchedule),
				slog.Any("error", err))
		} else {
			cfg.CronSchedule = schedule
		}
	}

	if tz := os.Getenv("NEWSLETTER_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			logger.Warn("invalid NEWSLETTER_TIMEZONE, using default",
				slog.String("value", tz),
				slog.String("default", cfg.Timezone))
		} else {
			cfg.Timezone = tz
		}
	}

	if timeout := os.Getenv("NEWSLETTER_SEND_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err != nil || parsed <= 0 {
			logger.Warn("invalid NEWSLETTER_SEND_TIMEOUT, using default",
				slog.String("value", timeout),
				slog.Duration("default", cfg.SendTimeout))
		} else {
			cfg.SendTimeout = parsed
		}
	}

	cfg.HealthPort = loadPort(logger, "WORKER_HEALTH_PORT", cfg.HealthPort)
	cfg.MetricsPort = loadPort(logger, "WORKER_METRICS_PORT", cfg.MetricsPort)
	return cfg
}

// Validate checks the assembled configuration.
func (c Config) Validate() error {
	if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", c.CronSchedule, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("send timeout must be positive, got %v", c.SendTimeout)
	}
	if c.HealthPort == c.MetricsPort {
		return fmt.Errorf("health and metrics ports collide on %d", c.HealthPort)
	}
	return nil
}

func loadPort(logger *slog.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1024 || port > 65535 {
		logger.Warn("invalid port, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", fallback))
		return fallback
	}
	return port
}
