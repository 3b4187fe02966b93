// Package logger builds the process-wide slog logger and carries
// request-scoped loggers through context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

const serviceName = "voiceagent-api"

// New returns the process logger: JSON on stdout, debug level outside
// staging/production, and a fixed service attribute so dashboard log lines
// are separable from the calling platform's in a shared sink.
func New(appEnv string) *slog.Logger {
	level := slog.LevelDebug
	switch appEnv {
	case "staging", "production":
		level = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(
		slog.String("service", serviceName),
		slog.String("env", appEnv),
	)
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// ShutdownFlush is a no-op while the handler writes straight to stdout; it
// keeps the shutdown path stable if a buffered handler is swapped in.
func ShutdownFlush(_ context.Context, _ time.Duration) error { return nil }
