package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTee(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(Tee(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		nil,
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)).With("agent", "claude")

	logger.Debug("catalog loaded", "entries", 4)
	logger.Warn("catalog download failed")

	if strings.Contains(console.String(), "catalog loaded") {
		t.Error("console handler should drop debug records")
	}
	if !strings.Contains(console.String(), "catalog download failed") {
		t.Errorf("console = %q", console.String())
	}
	if got := strings.Count(file.String(), "\n"); got != 2 {
		t.Errorf("file got %d records, want 2", got)
	}
	if !strings.Contains(file.String(), `"agent":"claude"`) {
		t.Errorf("file handler lost attributes: %q", file.String())
	}
}

func TestTee_Single(t *testing.T) {
	h := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if Tee(nil, h) != slog.Handler(h) {
		t.Error("a single handler should be returned as is")
	}
}
