package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	err := NewUserError("no schedule found", ErrNoSchedule)
	assert.Equal(t, "no schedule found: no schedule satisfies the profile", err.Error())
	assert.ErrorIs(t, err, ErrNoSchedule)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "no schedule found", userErr.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelWarn, "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "quarter", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"quarter":3`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	boom := errors.New("boom")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return boom
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return boom
		}, opts)
		require.ErrorIs(t, err, ErrMaxRetries)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: boom}
		}, opts)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogError(errors.New("disk full"), "Failed to write metrics", Fields{"path": "/tmp/m.prom", "attempt": 2})
	LogInfo("Imported catalog", Fields{"courses": 3})
	LogDebug("Loaded course file", Fields{"path": "hidden.csv"})

	out := buf.String()
	assert.Contains(t, out, `level=ERROR msg="Failed to write metrics" error="disk full" attempt=2 path=/tmp/m.prom`)
	assert.Contains(t, out, `level=INFO msg="Imported catalog" courses=3`)
	assert.NotContains(t, out, "hidden.csv")
}
