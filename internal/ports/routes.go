package ports

import (
	"log/slog"
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/ratelimiting"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
)

type Deps struct {
	GetSession       app.GetSession
	AskAssistant     app.AskAssistant
	Catalog          AchievementCatalog
	AllowedOrigins   *DomainSuffixes
	RootLogger       *slog.Logger
	SentryMiddleware func(http.HandlerFunc) http.HandlerFunc
	// Instrument wraps the regular API routes. The websocket route is never wrapped.
	Instrument func(http.Handler) http.Handler
}

// NewHandler builds the full HTTP surface. The returned function stops the rate limiters.
func NewHandler(deps Deps) (http.Handler, func()) {
	ipLimiter, stopIP := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(8),
		ratelimiting.BurstSize(480),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(ipLimiter, ratelimiting.IPKeyFunc)

	playerLimiter, stopPlayer := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(4),
		ratelimiting.BurstSize(120),
	)
	playerRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		// NOTE: Rate limiting based on user controlled value
		playerLimiter,
		ratelimiting.PlayerIDKeyFunc,
	)

	assistantLimiter, stopAssistant := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(0.2),
		ratelimiting.BurstSize(5),
	)
	assistantRateLimiter := ratelimiting.NewRequestBasedRateLimiter(assistantLimiter, ratelimiting.PlayerIDKeyFunc)

	stop := func() {
		stopIP()
		stopPlayer()
		stopAssistant()
	}

	middleware := func(port string, limiters ...ratelimiting.RequestRateLimiter) func(http.HandlerFunc) http.HandlerFunc {
		middlewares := []func(http.HandlerFunc) http.HandlerFunc{
			buildMetricsMiddleware(port),
			logging.NewRequestLoggerMiddleware(deps.RootLogger.With("port", port)),
			deps.SentryMiddleware,
			reporting.NewAddMetaMiddleware(port),
			BuildCORSMiddleware(deps.AllowedOrigins),
		}
		for _, limiter := range limiters {
			middlewares = append(middlewares, NewRateLimitMiddleware(limiter, writeRateLimited))
		}
		return ComposeMiddlewares(middlewares...)
	}

	read := func(port string, handler http.HandlerFunc) http.HandlerFunc {
		return middleware(port, ipRateLimiter)(handler)
	}
	write := func(port string, handler http.HandlerFunc) http.HandlerFunc {
		return middleware(port, ipRateLimiter, playerRateLimiter)(handler)
	}

	api := http.NewServeMux()

	api.HandleFunc("OPTIONS /v1/", BuildCORSHandler(deps.AllowedOrigins))

	api.HandleFunc("GET /v1/progress", read("get_progress", MakeGetProgressHandler(deps.GetSession)))
	api.HandleFunc("DELETE /v1/progress", write("reset_progress", MakeResetProgressHandler(deps.GetSession)))
	api.HandleFunc("POST /v1/progress/xp", write("add_xp", MakeAddXPHandler(deps.GetSession)))
	for _, kind := range []UnlockKind{UnlockDeity, UnlockBadge, UnlockAchievement, UnlockPath} {
		api.HandleFunc(
			"POST /v1/progress/"+string(kind)+"/{id}",
			write("unlock_"+string(kind), MakeUnlockHandler(deps.GetSession, kind)),
		)
	}

	api.HandleFunc("GET /v1/achievements", read("get_achievements", MakeGetAchievementsHandler(deps.GetSession, deps.Catalog)))

	api.HandleFunc("GET /v1/story", read("get_story", MakeGetStoryHandler(deps.GetSession)))
	api.HandleFunc("POST /v1/story/choices", write("choose", MakeChooseHandler(deps.GetSession)))
	api.HandleFunc("POST /v1/story/goto/{id}", write("goto", MakeGoToHandler(deps.GetSession)))
	api.HandleFunc("POST /v1/story/restart", write("restart", MakeRestartHandler(deps.GetSession)))

	api.HandleFunc("GET /v1/notifications", read("get_notifications", MakeGetNotificationsHandler(deps.GetSession)))
	api.HandleFunc("DELETE /v1/notifications/{id}", write("dismiss_notification", MakeDismissNotificationHandler(deps.GetSession)))

	api.HandleFunc(
		"POST /v1/assistant",
		middleware("assistant", ipRateLimiter, assistantRateLimiter)(MakeAskAssistantHandler(deps.AskAssistant)),
	)

	api.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var instrumented http.Handler = api
	if deps.Instrument != nil {
		instrumented = deps.Instrument(api)
	}

	root := http.NewServeMux()
	root.Handle("/", instrumented)
	// The upgrade needs the raw connection, so the stream skips wrappers that replace the ResponseWriter
	root.HandleFunc("GET /v1/notifications/ws", ComposeMiddlewares(
		logging.NewRequestLoggerMiddleware(deps.RootLogger.With("port", "notification_stream")),
		reporting.NewAddMetaMiddleware("notification_stream"),
		NewRateLimitMiddleware(ipRateLimiter, writeRateLimited),
	)(MakeNotificationStreamHandler(deps.GetSession, deps.AllowedOrigins)))

	return root, stop
}
