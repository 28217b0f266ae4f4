package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	clearEnv(t, envKeys...)
	setArgs(t)

	t.Setenv("API_BASE_URL", "https://env.example.com")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("SESSION_LENGTH_MINUTES", "1")
	t.Setenv("SESSION_WARNING_SECONDS", "10")
	t.Setenv("CLIENT_DB_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_BACKEND", "zap")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, Config{
		APIBaseURL:       "https://env.example.com",
		RequestTimeout:   3 * time.Second,
		SessionLength:    time.Minute,
		WarningThreshold: 10 * time.Second,
		DBPath:           ":memory:",
		LogLevel:         "error",
		LogBackend:       "zap",
	}, *cfg)
}

func Test_parseEnv_EmptyIsUnset(t *testing.T) {
	clearEnv(t, envKeys...)
	setArgs(t)
	t.Setenv("API_BASE_URL", "")

	cfg := &Config{APIBaseURL: "http://keep"}
	parseEnv(cfg)
	assert.Equal(t, "http://keep", cfg.APIBaseURL)
}

func Test_parseEnv_DotenvFile(t *testing.T) {
	clearEnv(t, envKeys...)

	path := filepath.Join(t.TempDir(), "client.env")
	content := "API_BASE_URL=https://dotenv.example.com\nSESSION_LENGTH_MINUTES=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// The process environment wins over the file.
	t.Setenv("SESSION_LENGTH_MINUTES", "7")
	setArgs(t, "-env", path)

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "https://dotenv.example.com", cfg.APIBaseURL)
	assert.Equal(t, 7*time.Minute, cfg.SessionLength)
}

func Test_parseEnv_Panics(t *testing.T) {
	t.Run("bad number", func(t *testing.T) {
		clearEnv(t, envKeys...)
		setArgs(t)
		t.Setenv("REQUEST_TIMEOUT_SECONDS", "ten")
		require.Panics(t, func() { parseEnv(&Config{}) })
	})

	t.Run("explicit dotenv file missing", func(t *testing.T) {
		clearEnv(t, envKeys...)
		setArgs(t, "-e", filepath.Join(t.TempDir(), "missing.env"))
		require.Panics(t, func() { parseEnv(&Config{}) })
	})
}
