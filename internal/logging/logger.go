// Package logging configures the process-wide slog logger and builds
// request-scoped loggers.
//
// A request picks up fields as it passes through the HTTP middleware: chi's
// request ID, the resolved client address and, on authenticated routes, the
// importer name. Every logger built from that request's context carries
// them, so the "import started" and "import completed" lines of the import
// service can be tied back to who sent the file without the service knowing
// about HTTP.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default logger, writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. The server logs to stdout; schedctl
// passes stderr so that command output stays machine-readable.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

type fieldsKey struct{}

// ContextWithFields returns a copy of ctx carrying args as key/value pairs.
// Fields accumulate: a child context keeps its parent's fields, followed by
// its own.
func ContextWithFields(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := fieldsFrom(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func fieldsFrom(ctx context.Context) []any {
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// FromContext returns the default logger with the request ID and any
// ContextWithFields fields of ctx attached.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("looking up section", "name", name)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if fields := fieldsFrom(ctx); len(fields) > 0 {
		logger = logger.With(fields...)
	}
	return logger
}

// WithFields is FromContext plus operation-specific fields, for a logger
// that follows one import through its steps:
//
//	logger := logging.WithFields(ctx, "import_id", id, "file", name)
//	logger.Info("import started")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
