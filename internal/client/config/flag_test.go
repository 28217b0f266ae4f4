package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://127.0.0.1:9090", "-t", "7", "-s", "20", "-w", "45", "-d", "x.db", "-l", "debug"},
			expected: &Config{
				APIBaseURL:       "http://127.0.0.1:9090",
				RequestTimeout:   7 * time.Second,
				SessionLength:    20 * time.Minute,
				WarningThreshold: 45 * time.Second,
				DBPath:           "x.db",
				LogLevel:         "debug",
				LogBackend:       "slog",
			},
		},
		{
			name: "unset durations are not rounded",
			args: []string{"-c", "ignored.json", "-l", "warn"},
			expected: &Config{
				APIBaseURL:       "http://localhost:8080/api",
				RequestTimeout:   1500 * time.Millisecond,
				SessionLength:    90 * time.Second,
				WarningThreshold: 30 * time.Second,
				DBPath:           "teamhub.db",
				LogLevel:         "warn",
				LogBackend:       "slog",
			},
		},
		{name: "incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			cfg := &Config{}
			cfg.LoadDefaults()
			cfg.RequestTimeout = 1500 * time.Millisecond
			cfg.SessionLength = 90 * time.Second

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
