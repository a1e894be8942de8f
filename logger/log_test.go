package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestJSONLoggerCarriesName(t *testing.T) {
	Configure("info", "json")
	t.Cleanup(func() { Configure("info", "text") })

	var buf bytes.Buffer
	NewWithWriter("game", &buf).Info("player joined", slog.Int("player_id", 3))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "game", line["logger"])
	assert.Equal(t, "player joined", line["msg"])
	assert.EqualValues(t, 3, line["player_id"])
}

func TestLevelFiltersDebug(t *testing.T) {
	Configure("warn", "text")
	t.Cleanup(func() { Configure("info", "text") })

	var buf bytes.Buffer
	NewWithWriter("game", &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
