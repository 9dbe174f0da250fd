package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("empty output discards", func(t *testing.T) {
		t.Parallel()
		logger, closer, err := newLogger(logConfig{})
		require.NoError(t, err)
		defer closer()
		assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
		assert.NotPanics(t, func() { logger.Info("dropped") })
	})

	t.Run("json to file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "sawchat.log")
		logger, closer, err := newLogger(logConfig{Level: "warn", Format: "json", Output: path})
		require.NoError(t, err)

		logger.Info("skipped")
		logger.Warn("turn failed", "session", "s1")
		require.NoError(t, closer())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var entry map[string]any
		require.NoError(t, json.Unmarshal(data, &entry))
		assert.Equal(t, "turn failed", entry["msg"])
		assert.Equal(t, "s1", entry["session"])
	})

	t.Run("unwritable output", func(t *testing.T) {
		t.Parallel()
		_, _, err := newLogger(logConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
