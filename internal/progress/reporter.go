package progress

import (
	"log/slog"
)

// Reporter receives progress events. Implementations must not assume they can
// influence the run: return values are not consulted.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

type safeReporter struct {
	next   Reporter
	logger *slog.Logger
}

// Safe wraps r so that a panic inside Report is logged and swallowed. A nil
// logger falls back to slog.Default.
func Safe(r Reporter, logger *slog.Logger) Reporter {
	if r == nil {
		return Discard
	}
	if _, ok := r.(*safeReporter); ok {
		return r
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &safeReporter{next: r, logger: logger}
}

func (s *safeReporter) Report(e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Warn("Progress reporter panicked, event dropped.", "kind", string(e.Kind), "panic", rec)
		}
	}()
	s.next.Report(e)
}

type fanout []Reporter

// Fanout forwards each event to every reporter in argument order. Nil entries
// are skipped. Wrap individual sinks with Safe so one failing sink cannot starve
// the ones after it.
func Fanout(rs ...Reporter) Reporter {
	out := make(fanout, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (f fanout) Report(e Event) {
	for _, r := range f {
		r.Report(e)
	}
}
