package kosmos

import (
	"context"
	"log"
	"log/slog"
)

// Logger reports LogEvents. Grounded on the teacher's own Logger interface
// (logger.go) and typed events (connection_events.go): a small closed set
// of structured events rather than printf-style strings, so a caller can
// filter or route by event type.
type Logger interface {
	Log(event LogEvent)
}

// SlogLogger reports events through log/slog, the teacher's default.
type SlogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

// NewSlogLogger wraps logger (or slog.Default() if nil).
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogLogger{logger: logger, ctx: context.Background()}
}

// WithContext returns a copy of l that attaches ctx to every log call.
func (l SlogLogger) WithContext(ctx context.Context) SlogLogger {
	return SlogLogger{logger: l.logger, ctx: ctx}
}

func (l SlogLogger) Log(event LogEvent) {
	l.logger.LogAttrs(l.ctx, event.LogLevel(), event.Message(), event.LogAttrs()...)
}

// SimpleLogger writes events with the standard library's log package, for
// callers that don't want to configure slog.
type SimpleLogger struct{}

func (l SimpleLogger) Log(event LogEvent) {
	log.Printf("[%s] %s [event=%s]", event.LogLevel(), event.Message(), event.EventName())
}

// NoopLogger discards every event. Tests set it as ConnectionSettings.Logger
// to silence logging; Connect never selects it on its own (a nil Logger
// defaults to a SlogLogger).
type NoopLogger struct{}

func (NoopLogger) Log(LogEvent) {}
