package ports

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/logging"
)

const MAX_QUESTION_LENGTH = 2000

type assistantRequest struct {
	Question string `json:"question"`
}

func MakeAskAssistantHandler(askAssistant app.AskAssistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var request assistantRequest
		if err := decodeBody(w, r, &request); err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}

		question := strings.TrimSpace(request.Question)
		if question == "" {
			writeError(ctx, w, http.StatusBadRequest, "empty question")
			return
		}
		if utf8.RuneCountInString(question) > MAX_QUESTION_LENGTH {
			writeError(ctx, w, http.StatusBadRequest, "question too long")
			return
		}

		reply := askAssistant(ctx, question)

		ctx = logging.AddMetaToContext(ctx,
			slog.String("model", reply.Model),
			slog.Bool("fallback", reply.Fallback),
		)

		writeJSON(ctx, w, http.StatusOK, assistantResponse{
			Success:  true,
			Reply:    reply.Text,
			Model:    reply.Model,
			Fallback: reply.Fallback,
		})
	}
}
