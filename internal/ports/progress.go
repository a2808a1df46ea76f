package ports

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/strutils"
)

type UnlockKind string

const (
	UnlockDeity       UnlockKind = "deities"
	UnlockBadge       UnlockKind = "badges"
	UnlockAchievement UnlockKind = "achievements"
	UnlockPath        UnlockKind = "paths"
)

func MakeGetProgressHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		writeJSON(r.Context(), w, http.StatusOK, progressResponse{
			Success:  true,
			Progress: progressToJSON(session.Store.Snapshot()),
		})
	})
}

func MakeResetProgressHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		if r.URL.Query().Get("confirm") != "true" {
			writeDomainError(ctx, w, domain.ErrResetNotConfirmed)
			return
		}

		record, err := session.Store.ResetProgress(ctx)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Progress reset")
		writeJSON(ctx, w, http.StatusOK, progressResponse{Success: true, Progress: progressToJSON(record)})
	})
}

type addXPRequest struct {
	Amount *int `json:"amount"`
}

func MakeAddXPHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		var request addXPRequest
		if err := decodeBody(w, r, &request); err != nil || request.Amount == nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.Int("amount", *request.Amount))

		record, err := session.Store.AddXP(ctx, *request.Amount)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, progressResponse{Success: true, Progress: progressToJSON(record)})
	})
}

func MakeUnlockHandler(getSession app.GetSession, kind UnlockKind) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		id, err := strutils.NormalizeContentID(r.PathValue("id"))
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("kind", string(kind)), slog.String("contentId", id))

		var record domain.ProgressRecord
		switch kind {
		case UnlockDeity:
			record, err = session.Store.UnlockDeity(ctx, id)
		case UnlockBadge:
			record, err = session.Store.UnlockBadge(ctx, id)
		case UnlockAchievement:
			record, err = session.Store.UnlockAchievement(ctx, id)
		case UnlockPath:
			record, err = session.Store.CompletePath(ctx, id)
		default:
			err = fmt.Errorf("unknown unlock kind %s", kind)
		}
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, progressResponse{Success: true, Progress: progressToJSON(record)})
	})
}
