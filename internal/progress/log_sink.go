package progress

import (
	"context"
	"log/slog"
)

// LogSink writes each event as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink that logs through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Report(e Event) {
	level := slog.LevelInfo
	if e.Severity == SeverityError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("run_id", e.RunID),
		slog.String("kind", string(e.Kind)),
		slog.String("severity", e.Severity.String()),
	}
	if e.NodeID != "" {
		attrs = append(attrs, slog.String("node_id", e.NodeID))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	s.logger.LogAttrs(context.Background(), level, e.Message, attrs...)
}
