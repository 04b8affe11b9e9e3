package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/encuestaia/backend/internal/infrastructure/log/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // 默认值
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("ENV", "")

		cfg := NewConfigFromEnv()
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, "stdout", cfg.Output)
	})

	t.Run("custom config", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("ENV", "")

		cfg := NewConfigFromEnv()
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
	})

	t.Run("development mode", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("LOG_LEVEL", "error") // 应该被覆盖
		t.Setenv("LOG_FORMAT", "json")

		cfg := NewConfigFromEnv()
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.True(t, cfg.AddSource)
	})
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		defaultValue bool
		envValue     string
		expected     bool
	}{
		{"true value", false, "true", true},
		{"false value", true, "false", false},
		{"invalid value", true, "invalid", true}, // 默认值
		{"missing env", false, "", false},        // 默认值
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENCUESTA_TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, getEnvBool("ENCUESTA_TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestInit_DebugMode(t *testing.T) {
	Init(&Config{Level: "debug", Format: "text", Output: "stderr"})
	assert.True(t, IsDebugMode())
	assert.NotNil(t, GetLogger())

	Init(&Config{Level: "info", Format: "json", Output: "stderr"})
	assert.False(t, IsDebugMode())
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	Init(&Config{Level: "info", Format: "json", Output: "file:" + path})
	t.Cleanup(func() { Init(&Config{Level: "info", Format: "text", Output: "stderr"}) })

	NewModuleLogger("survey", "service").Info("file output works")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file output works")
	assert.Contains(t, string(data), ServiceName)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(handler.NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithSurveyID(WithRequestID(context.Background(), "req-1"), "srv-1")
	FromContext(ctx, base).Info("answer recorded")

	out := buf.String()
	assert.True(t, strings.Contains(out, "request_id=req-1"))
	assert.True(t, strings.Contains(out, "survey_id=srv-1"))
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
