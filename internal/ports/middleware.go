package ports

import (
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/ratelimiting"
)

// NewRateLimitMiddleware answers with onLimitExceeded once the request's bucket is empty
func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				ctx := r.Context()
				logging.FromContext(ctx).InfoContext(ctx, "Rate limit exceeded", "key", rateLimiter.KeyFor(r))
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

// ComposeMiddlewares chains middlewares so the first one listed sees the request first
func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(handler http.HandlerFunc) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}
