// Package logging configures log/slog for the service and the CLI and
// carries request-scoped fields through context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger and returns it.
//
// level is one of debug, info, warn, error (default info). format is text or
// json (default text). A nil w writes to stdout; the CLI passes stderr so
// that logs never mix with CSV written to stdout.
func Setup(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a level name to slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// WithContext returns a context whose FromContext loggers include args.
// Calls accumulate.
func WithContext(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev, _ := ctx.Value(fieldsKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FromContext returns the default logger with the chi request ID and any
// fields added with WithContext.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("preview saved", "contacts", n)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if fields, ok := ctx.Value(fieldsKey{}).([]any); ok {
		logger = logger.With(fields...)
	}
	return logger
}

// WithFields is FromContext(ctx).With(args...), for one multi-step
// operation that logs several times.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
