package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestGoogleCloudTracingLogHandler(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, buf *bytes.Buffer) map[string]any {
		t.Helper()
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		return entry
	}

	t.Run("adds trace fields from the span context", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewGoogleCloudTracingLogHandler(slog.NewJSONHandler(buf, nil), "rigveda-prod"))

		traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
		require.NoError(t, err)
		ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		logger.With("playerId", "player").InfoContext(ctx, "Progress updated")

		entry := decode(t, buf)
		require.Equal(t, "projects/rigveda-prod/traces/4bf92f3577b34da6a3ce929d0e0e4736", entry["logging.googleapis.com/trace"])
		require.Equal(t, "00f067aa0ba902b7", entry["logging.googleapis.com/spanId"])
		require.Equal(t, true, entry["logging.googleapis.com/trace_sampled"])
		require.Equal(t, "player", entry["playerId"])
	})

	t.Run("no span context", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewGoogleCloudTracingLogHandler(slog.NewJSONHandler(buf, nil), "rigveda-prod"))

		logger.InfoContext(t.Context(), "Progress updated")

		entry := decode(t, buf)
		require.NotContains(t, entry, "logging.googleapis.com/trace")
		require.Equal(t, "Progress updated", entry["msg"])
	})
}
