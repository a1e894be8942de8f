package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, 20, cfg.PinMaxAttempts)
	assert.Equal(t, 256, cfg.EventQueueSize)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, RealtimeRedis, cfg.RealtimeBackend)
	assert.True(t, cfg.AutoMigrate)
	assert.Contains(t, cfg.DSN(), "dbname=quizzit")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PIN_MAX_ATTEMPTS", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.PinMaxAttempts)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)
}

func TestLoadDotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_NAME=fromfile\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.DBName)
}

func TestLoadRejectsUnknownRealtimeBackend(t *testing.T) {
	t.Setenv("REALTIME_BACKEND", "carrier-pigeon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "REALTIME_BACKEND")
}
