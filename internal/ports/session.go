package ports

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
	"github.com/anki0476/rigveda-explorer/internal/strutils"
)

type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, session *app.Session)

// withSession resolves the player's session from the X-User-Id header.
// allowQuery also accepts a playerId query parameter, for clients that cannot set headers.
func withSession(getSession app.GetSession, allowQuery bool, handler sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawPlayerID := r.Header.Get("X-User-Id")
		if rawPlayerID == "" && allowQuery {
			rawPlayerID = r.URL.Query().Get("playerId")
		}

		playerID, err := strutils.NormalizeUUID(rawPlayerID)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid player id")
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("playerId", playerID))
		ctx = reporting.SetUserIDInContext(ctx, playerID)

		session, err := getSession(ctx, playerID)
		if err != nil {
			reporting.Report(ctx, fmt.Errorf("failed to get session: %w", err))
			writeError(ctx, w, http.StatusInternalServerError, "internal server error")
			return
		}

		handler(w, r.WithContext(ctx), session)
	}
}
