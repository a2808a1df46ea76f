package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
)

const maxRequestBodyBytes = 16 * 1024

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		statusCode = http.StatusInternalServerError
		data = []byte(`{"success":false,"cause":"internal server error"}`)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Returning response", "statusCode", statusCode, "contentLength", len(data))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, cause string) {
	writeJSON(ctx, w, statusCode, errorResponse{Success: false, Cause: cause})
}

// writeDomainError maps the domain error taxonomy to a response.
// Unexpected errors have already been reported where they happened.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidXPAmount):
		writeError(ctx, w, http.StatusBadRequest, "invalid xp amount")
	case errors.Is(err, domain.ErrInvalidIdentifier):
		writeError(ctx, w, http.StatusBadRequest, "invalid id")
	case errors.Is(err, domain.ErrResetNotConfirmed):
		writeError(ctx, w, http.StatusBadRequest, "reset not confirmed")
	case errors.Is(err, domain.ErrChapterNotFound):
		writeError(ctx, w, http.StatusNotFound, "chapter not found")
	case errors.Is(err, domain.ErrChoiceNotFound):
		writeError(ctx, w, http.StatusNotFound, "choice not found")
	case errors.Is(err, domain.ErrStaleChoice):
		writeError(ctx, w, http.StatusConflict, "stale choice")
	case errors.Is(err, domain.ErrTransitionInProgress):
		writeError(ctx, w, http.StatusConflict, "transition in progress")
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		writeError(ctx, w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		logging.FromContext(ctx).ErrorContext(ctx, "Unhandled error", "error", err.Error())
		writeError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody reads a JSON request body into target, rejecting unknown fields and trailing data
func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after request body")
	}
	return nil
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"success":false,"cause":"rate limit exceeded"}`))
}
