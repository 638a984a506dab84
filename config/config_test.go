package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "bluff.db", cfg.SQLitePath)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 100, cfg.StartingChips)
	assert.Equal(t, 5, cfg.Ante)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Dev)
	assert.Equal(t, ":7777", cfg.Addr())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BLUFF_PORT", "8080")
	t.Setenv("BLUFF_STORE", " SQLite ")
	t.Setenv("BLUFF_SQLITE_PATH", "/tmp/games.db")
	t.Setenv("BLUFF_ANTE", "10")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/games.db", cfg.SQLitePath)
	assert.Equal(t, 10, cfg.Ante)
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLUFF_STARTING_CHIPS=250\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BLUFF_STARTING_CHIPS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.StartingChips)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"not a number", "BLUFF_PORT", "not-an-int"},
		{"bad port", "BLUFF_PORT", "70000"},
		{"unknown store", "BLUFF_STORE", "redis"},
		{"postgres without dsn", "BLUFF_STORE", "postgres"},
		{"zero ante", "BLUFF_ANTE", "0"},
		{"negative chips", "BLUFF_STARTING_CHIPS", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Config{LogLevel: "debug", Dev: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(Config{LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(Config{LogLevel: "loud"})
	assert.Error(t, err)
}
