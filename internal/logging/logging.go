// Package logging builds the slog logger shared by the binaries.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel overrides the default level when no flag is given.
const EnvLevel = "FOCUSGUARD_LOG_LEVEL"

// ParseLevel maps a level name to a slog level. Unknown names mean info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// New returns a text logger writing to out at the requested level. An empty
// level falls back to EnvLevel.
func New(out io.Writer, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv(EnvLevel)
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Setup builds the logger and installs it as the slog default.
func Setup(out io.Writer, level string) *slog.Logger {
	logger := New(out, level)
	slog.SetDefault(logger)
	return logger
}
