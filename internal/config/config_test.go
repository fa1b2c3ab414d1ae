package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "db/roster.sqlite", cfg.DBPath)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, defaultOrigins, cfg.Origins)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", "/tmp/env.sqlite")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load("", []string{"--db", "/tmp/flag.sqlite", "--log-level", "debug", "--session-ttl", "1h"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/tmp/flag.sqlite", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Contains(t, cfg.Origins, "https://b.example")
	assert.Len(t, cfg.Origins, len(defaultOrigins)+2)
}

func TestEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=7000\n"), 0o600))
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("PORT")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "7000", cfg.Port)
}

func TestMissingEnvFileIsFine(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"), nil)
	assert.NoError(t, err)
}

func TestMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load("", nil)
	assert.Error(t, err)
}

func TestBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Setenv("SESSION_TTL", "soon")
	_, err := Load("", nil)
	assert.Error(t, err)

	t.Setenv("SESSION_TTL", "1h")
	_, err = Load("", []string{"--log-level", "loud"})
	assert.Error(t, err)
}
