package app

import (
	"fmt"
	"io"
	"log/slog"
)

// parseLevel accepts slog level names in any case, with an optional offset
// such as "warn+2".
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level '%s': %w", s, err)
	}
	return level, nil
}

// newLogger builds the application logger. slog.Default is left alone so apps
// in the same process keep separate outputs.
func newLogger(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
