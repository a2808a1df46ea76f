package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/adapters/cache"
	"github.com/anki0476/rigveda-explorer/internal/app"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionResult struct {
	text string
	err  error
}

type mockCompletionProvider struct {
	t *testing.T

	results        map[string]completionResult
	completeModels []string
}

func (m *mockCompletionProvider) Complete(ctx context.Context, model string, question string) (string, error) {
	m.t.Helper()
	require.NotEmpty(m.t, question)

	m.completeModels = append(m.completeModels, model)

	result, ok := m.results[model]
	require.True(m.t, ok, "unexpected model %s", model)
	return result.text, result.err
}

func TestBuildAskAssistant(t *testing.T) {
	t.Parallel()

	models := []string{"first", "second", "third"}

	t.Run("first model answers", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{
			t: t,
			results: map[string]completionResult{
				"first": {text: "Agni is the fire."},
			},
		}
		askAssistant := app.BuildAskAssistant(provider, models, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		reply := askAssistant(t.Context(), "Who is Agni?")
		require.Equal(t, domain.AssistantReply{Text: "Agni is the fire.", Model: "first"}, reply)
		require.Equal(t, []string{"first"}, provider.completeModels)
	})

	t.Run("falls through to the next model", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{
			t: t,
			results: map[string]completionResult{
				"first":  {err: domain.ErrMissingCredential},
				"second": {err: fmt.Errorf("status 503: %w", assert.AnError)},
				"third":  {text: "Indra wields the vajra."},
			},
		}
		askAssistant := app.BuildAskAssistant(provider, models, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		reply := askAssistant(t.Context(), "What does Indra carry?")
		require.Equal(t, domain.AssistantReply{Text: "Indra wields the vajra.", Model: "third"}, reply)
		require.Equal(t, models, provider.completeModels)
	})

	t.Run("apology after exhausting every model", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{
			t: t,
			results: map[string]completionResult{
				"first":  {err: assert.AnError},
				"second": {err: assert.AnError},
				"third":  {err: domain.ErrMissingCredential},
			},
		}
		askAssistant := app.BuildAskAssistant(provider, models, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		reply := askAssistant(t.Context(), "Who is Soma?")
		require.Equal(t, domain.AssistantReply{Text: app.ASSISTANT_APOLOGY, Fallback: true}, reply)
		require.Equal(t, models, provider.completeModels)
	})

	t.Run("no models configured", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{t: t}
		askAssistant := app.BuildAskAssistant(provider, nil, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		reply := askAssistant(t.Context(), "Who is Varuna?")
		require.True(t, reply.Fallback)
		require.Empty(t, provider.completeModels)
	})

	t.Run("answers are cached by normalized question", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{
			t: t,
			results: map[string]completionResult{
				"first": {text: "Ushas is the dawn."},
			},
		}
		askAssistant := app.BuildAskAssistant(provider, models, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		first := askAssistant(t.Context(), "Who is Ushas?")
		second := askAssistant(t.Context(), "  who   is USHAS? ")
		require.Equal(t, first, second)
		require.Equal(t, []string{"first"}, provider.completeModels)
	})

	t.Run("fallback replies are not cached", func(t *testing.T) {
		t.Parallel()

		provider := &mockCompletionProvider{
			t: t,
			results: map[string]completionResult{
				"first": {err: assert.AnError},
			},
		}
		askAssistant := app.BuildAskAssistant(provider, []string{"first"}, cache.NewTTLCache[domain.AssistantReply](time.Minute))

		require.True(t, askAssistant(t.Context(), "Who is Surya?").Fallback)
		require.True(t, askAssistant(t.Context(), "Who is Surya?").Fallback)
		require.Equal(t, []string{"first", "first"}, provider.completeModels)
	})
}
