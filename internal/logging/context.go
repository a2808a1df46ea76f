package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

type loggerKey struct{}

// Used outside of requests, e.g. from background timers
var fallbackLogger = sync.OnceValue(func() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("logger", "fallback"))
})

// FromContext returns the logger of the current request, or a fallback logger tagged as such
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallbackLogger()
}

func AddToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// AddMetaToContext attaches attrs to every later log line of the request
func AddMetaToContext(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}

	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return AddToContext(ctx, FromContext(ctx).With(args...))
}
