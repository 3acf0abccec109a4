// Package log configures the process-wide slog default used by every
// entrypoint. Services attach a "module" attribute so one log stream stays
// greppable per component.
package log

import (
	"log/slog"
	"os"
)

func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with a component name.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module, "service", "orbit")
}
