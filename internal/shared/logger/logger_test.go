package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewZapLogger(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l := NewZapLogger(nil)
		assert.NotNil(t, l)
	})

	t.Run("writes json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := NewZapLogger(&Config{Level: "debug", Format: "json", Output: buf})

		l.Info("test message", zap.String("order_id", "42"))
		require.NoError(t, l.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "test message", entry["msg"])
		assert.Equal(t, "42", entry["order_id"])
	})

	t.Run("writes console format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := NewZapLogger(&Config{Level: "info", Format: "console", Output: buf})

		l.Info("test message")
		output := buf.String()
		assert.Contains(t, output, "test message")
		assert.False(t, strings.HasPrefix(output, "{"))
	})

	t.Run("filters below level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := NewZapLogger(&Config{Level: "warn", Output: buf})

		l.Info("hidden")
		l.Debug("hidden")
		assert.Empty(t, buf.String())

		l.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := ContextWithLogger(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to nop logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))

		l := zap.NewExample()
		ctx := ContextWithLogger(context.Background(), l)
		fallback := zap.NewExample()
		assert.Same(t, fallback, FromContextOr(context.Background(), fallback))
		assert.Same(t, l, FromContextOr(ctx, fallback))
	})
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "", Redact(""))
	assert.Equal(t, "***", Redact("secret-token"))
}
