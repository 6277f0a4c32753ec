package logging

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_DefaultLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger := NewLogger()

	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := NewLogger()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewTextLogger(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	logger := NewTextLogger()

	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestWithFields(t *testing.T) {
	logger := NewLogger()
	enriched := WithFields(logger, map[string]interface{}{
		"provider": "finnhub",
		"symbol":   "AAPL",
	})

	assert.NotNil(t, enriched)
	assert.NotSame(t, logger, enriched)
}

func TestLoggerContext(t *testing.T) {
	logger := NewLogger()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Same(t, slog.Default(), got)
}
