// Package logging builds the slog.Logger every other package logs
// through, configured from internal/config.LogConfig.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds a structured logger writing to output ("stdout",
// "stderr", or a file path) in the given format ("json" or "text") at
// the given level ("debug", "info", "warn", "error"). The returned
// io.Closer is non-nil only when output names a file the caller
// should close on shutdown.
func New(level, format, output string) (*slog.Logger, io.Closer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writer, closer := resolveOutput(output)
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), closer
}

func resolveOutput(output string) (io.Writer, io.Closer) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stdout, nil
		}
		return f, f
	}
}
