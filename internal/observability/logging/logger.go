// Package logging builds the slog loggers shared by the api and worker
// binaries. Output is always JSON with a service attribute so the two
// processes can be told apart in an aggregated stream.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger returns a logger writing JSON lines to stdout at the given
// level. Unknown level names fall back to info rather than failing startup.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
