package ports

import (
	"log/slog"
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/story"
	"github.com/anki0476/rigveda-explorer/internal/strutils"
)

func writeStory(w http.ResponseWriter, r *http.Request, session *app.Session, view story.View) {
	writeJSON(r.Context(), w, http.StatusOK, storyResponse{
		Success:  true,
		View:     viewToJSON(view),
		Progress: progressToJSON(session.Store.Snapshot()),
	})
}

func MakeGetStoryHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		writeStory(w, r, session, session.Navigator.Current())
	})
}

type chooseRequest struct {
	FromChapterID string `json:"fromChapterId"`
	ChoiceID      string `json:"choiceId"`
}

func MakeChooseHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		var request chooseRequest
		if err := decodeBody(w, r, &request); err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}

		fromChapterID, err := strutils.NormalizeContentID(request.FromChapterID)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}
		choiceID, err := strutils.NormalizeContentID(request.ChoiceID)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		ctx = logging.AddMetaToContext(ctx,
			slog.String("fromChapterId", fromChapterID),
			slog.String("choiceId", choiceID),
		)

		view, err := session.Navigator.Choose(ctx, fromChapterID, choiceID)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		writeStory(w, r.WithContext(ctx), session, view)
	})
}

func MakeGoToHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		chapterID, err := strutils.NormalizeContentID(r.PathValue("id"))
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("chapterId", chapterID))

		view, err := session.Navigator.GoTo(ctx, chapterID)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		writeStory(w, r.WithContext(ctx), session, view)
	})
}

func MakeRestartHandler(getSession app.GetSession) http.HandlerFunc {
	return withSession(getSession, false, func(w http.ResponseWriter, r *http.Request, session *app.Session) {
		ctx := r.Context()

		view, err := session.Navigator.Restart(ctx)
		if err != nil {
			writeDomainError(ctx, w, err)
			return
		}

		writeStory(w, r, session, view)
	})
}
