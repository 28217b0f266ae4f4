package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Backends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		level   string
		wantErr bool
	}{
		{name: "default backend", backend: "", level: "info"},
		{name: "slog", backend: "slog", level: "debug"},
		{name: "zap", backend: "zap", level: "warn"},
		{name: "unknown backend", backend: "logrus", level: "info", wantErr: true},
		{name: "bad slog level", backend: "slog", level: "loud", wantErr: true},
		{name: "bad zap level", backend: "zap", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := New(tt.backend, tt.level, &buf)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l)
		})
	}
}

func TestZapLogger_RespectsLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZapLoggerTo(&buf, "info")
	require.NoError(t, err)

	ctx := context.Background()
	l.Debug(ctx, "hidden")
	l.With("component", "timer").Warn(ctx, "session warning", "remaining", "30s")
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "session warning"), out)
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "timer")
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	ctx := context.TODO()
	l.Debug(ctx, "x")
	l.Info(ctx, "x")
	l.Warn(ctx, "x")
	l.With("k", "v").Error(ctx, "x")
}
