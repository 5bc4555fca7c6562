package logger

import (
	"context"
	"log/slog"
)

// unexported key type so other packages cannot collide with it
type loggerCtxKey struct{}

// With derives a context carrying a logger enriched with fields.
// Middleware calls this once per request so every log line downstream
// carries the trace ID.
func With(ctx context.Context, fields ...any) context.Context {
	enriched := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerCtxKey{}, enriched)
}

// From extracts the request-scoped logger, falling back to the shared
// one when the context has none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
