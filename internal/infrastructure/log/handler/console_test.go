package handler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleHandler_ModulePrefixAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("module", "llm", "component", "openai")

	logger.Info("completion finished", "tokens", 42)

	out := buf.String()
	assert.Contains(t, out, "[llm/openai]")
	assert.Contains(t, out, "completion finished")
	assert.Contains(t, out, "tokens=42")
	assert.NotContains(t, out, "module=")
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	logger.Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestConsoleHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(&buf, nil)).WithGroup("http")

	logger.Info("request", "status", 200)

	assert.Contains(t, buf.String(), "http.status=200")
}
