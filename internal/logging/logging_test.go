package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	logger, closer := New("info", "json", "stdout")
	if closer != nil {
		t.Error("expected nil closer for stdout output")
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewTextFormat(t *testing.T) {
	logger, closer := New("debug", "text", "stderr")
	if closer != nil {
		t.Error("expected nil closer for stderr output")
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewFileOutputReturnsCloser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eguisyncd.log")

	logger, closer := New("info", "json", path)
	if closer == nil {
		t.Fatal("expected non-nil closer for file output")
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected log file to contain written record, got %q", string(data))
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(handler)

	logger.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info record to be suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected warn record to appear, got %q", buf.String())
	}
}

func TestUnknownOutputFallsBackToStdout(t *testing.T) {
	_, closer := New("info", "json", filepath.Join(string([]byte{0}), "bad"))
	if closer != nil {
		t.Error("expected nil closer when falling back to stdout")
	}
}
