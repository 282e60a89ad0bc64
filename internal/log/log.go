// Package log holds the small shared pieces of the logging setup. Both
// binaries log through slog; this package only maps configuration onto it.
package log

import (
	"log/slog"
	"strings"
)

// ParseLevel maps a LOG_LEVEL env value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
