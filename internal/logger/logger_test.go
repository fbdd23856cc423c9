package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "bot.log")

	logger, closer, err := New(Options{Level: "debug", Format: "json", Output: logPath})
	require.NoError(t, err)

	logger.Info().Str("component", "test").Str("event_id", "ev_1").Msg("Webhook received")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "ev_1", entry["event_id"])
	assert.Equal(t, "Webhook received", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_LevelFilters(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bot.log")

	logger, closer, err := New(Options{Level: "warn", Output: logPath})
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "invalid level", opts: Options{Level: "loud"}},
		{name: "invalid format", opts: Options{Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestNew_StdoutDefault(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
