// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logger shared by every layer.
var Logger = NewLogger(os.Stdout, "development", slog.LevelInfo)

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// Context keys picked up by the context-aware handler.
const (
	RequestIDKey LogContextKey = "request_id"
	TraceIDKey   LogContextKey = "trace_id"
)

// ctxHandler is a slog.Handler that adds context values to the log record.
type ctxHandler struct {
	slog.Handler
}

// Handle adds context values to the record before passing it to the underlying handler.
func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// NewLogger builds a JSON logger for production and a text logger otherwise.
func NewLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&ctxHandler{handler})
}

// InitLogger replaces the shared logger for the given environment.
func InitLogger(env string) {
	Logger = NewLogger(os.Stdout, env, slog.LevelInfo)
	slog.SetDefault(Logger)
}

// WithRequestID returns a context carrying the request ID for log records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// WithTraceID returns a context carrying the trace ID for log records.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// StoreLogger provides structured logging for record store operations.
type StoreLogger struct {
	backend string
	logger  *slog.Logger
}

// NewStoreLogger creates a StoreLogger for the named backend.
func NewStoreLogger(backend string) *StoreLogger {
	return &StoreLogger{
		backend: backend,
		logger:  Logger,
	}
}

// LogWrite logs a durable write.
func (l *StoreLogger) LogWrite(ctx context.Context, key string, version int64) {
	l.logger.DebugContext(ctx, "store write",
		slog.String("backend", l.backend),
		slog.String("key", key),
		slog.Int64("version", version),
	)
}

// LogConflict logs a lost versioned write.
func (l *StoreLogger) LogConflict(ctx context.Context, key string, attempt int) {
	l.logger.WarnContext(ctx, "store write conflict",
		slog.String("backend", l.backend),
		slog.String("key", key),
		slog.Int("attempt", attempt),
	)
}

// LogCorruption logs a stored value that was reset to its empty default.
func (l *StoreLogger) LogCorruption(ctx context.Context, key string, err error) {
	l.logger.WarnContext(ctx, "corrupted record reset to default",
		slog.String("backend", l.backend),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogError logs a failed store operation.
func (l *StoreLogger) LogError(ctx context.Context, err error, operation, key string) {
	l.logger.ErrorContext(ctx, "store error",
		slog.String("backend", l.backend),
		slog.String("operation", operation),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
