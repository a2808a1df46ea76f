package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/config"
	"github.com/anki0476/rigveda-explorer/internal/constants"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

var uuidRx = regexp.MustCompile(`[0-9a-f]{8}-?([0-9a-f]{4}-?){3}[0-9a-f]{12}`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var bearerRx = regexp.MustCompile(`(?i)bearer [a-z0-9._~+/=-]+`)
var apiKeyRx = regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`)
var contentIDRx = regexp.MustCompile(`/v1/(progress/deities|progress/badges|progress/achievements|progress/paths|story/goto|notifications)/[^\s"/?]+`)

// Strip per-request values so that similar errors share a fingerprint
func sanitizeError(err string) string {
	err = uuidRx.ReplaceAllString(err, "<uuid>")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = bearerRx.ReplaceAllString(err, "Bearer <token>")
	err = apiKeyRx.ReplaceAllString(err, "<api-key>")
	err = contentIDRx.ReplaceAllString(err, "/v1/$1/<id>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	if err == nil {
		err = errors.New("No error provided")
	}

	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", err, "extras", extras)
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", err.Error()),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if meta.userID != "" {
			scope.SetUser(sentry.User{
				ID: meta.userID,
			})
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

func NewAddMetaMiddleware(port string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userAgent := r.UserAgent()
			if userAgent == "" {
				userAgent = "<missing>"
			}
			methodPath := fmt.Sprintf("%s %s", r.Method, sanitizeError(r.URL.Path))

			ctx = AddTagsToContext(ctx,
				map[string]string{
					"port":       port,
					"userAgent":  userAgent,
					"methodPath": methodPath,
				},
			)

			if playerID := r.Header.Get("X-User-Id"); playerID != "" {
				ctx = SetUserIDInContext(ctx, playerID)
			}

			ctx = setStartedAtInContext(ctx, time.Now())

			next(w, r.WithContext(ctx))
		}
	}
}

func InitSentryMiddleware(sentryDSN string, release string) (func(http.HandlerFunc) http.HandlerFunc, func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Release:          release,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, nil, err
	}

	sentryHandler := sentryhttp.New(sentryhttp.Options{})

	// Wrap sentry middleware in a http.HandlerFunc
	middleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sentryHandler.HandleFunc(next).ServeHTTP(w, r)
		}
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return middleware, flush, nil
}

func NewSentryMiddlewareOrMock(config config.Config) (func(http.HandlerFunc) http.HandlerFunc, func(), error) {
	if config.SentryDSN() != "" {
		return InitSentryMiddleware(config.SentryDSN(), fmt.Sprintf("rigveda-explorer@%s", constants.VERSION))
	}

	if config.IsDevelopment() {
		middleware := func(next http.HandlerFunc) http.HandlerFunc {
			return next
		}
		flush := func() {}
		return middleware, flush, nil
	}

	return nil, nil, fmt.Errorf("Missing Sentry DSN in non-development environment")
}
