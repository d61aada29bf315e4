// Package logger builds the slog logger used throughout cditrend.
package logger

import (
	"log/slog"
	"os"
)

// New creates a slog.Logger writing to stderr with the given level and
// format. Unknown levels fall back to info; any format other than
// "json" selects the text handler. Logs go to stderr so that the
// user-facing run messages on stdout stay clean.
func New(level, format string) *slog.Logger {
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

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
