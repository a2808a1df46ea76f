package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/adapters/cache"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/logging"
	"github.com/anki0476/rigveda-explorer/internal/reporting"
)

const ASSISTANT_APOLOGY = "I'm sorry, the sages are silent right now. Please try asking again in a little while."

const perModelTimeout = 20 * time.Second

// AskAssistant never fails: when no model answers, the reply is an apology with Fallback set
type AskAssistant func(ctx context.Context, question string) domain.AssistantReply

type completionProvider interface {
	Complete(ctx context.Context, model string, question string) (string, error)
}

func questionKey(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	return fmt.Sprintf("question:%x", sha256.Sum256([]byte(normalized)))
}

func buildAskModels(provider completionProvider, models []string) func(ctx context.Context, question string) (domain.AssistantReply, error) {
	return func(ctx context.Context, question string) (domain.AssistantReply, error) {
		logger := logging.FromContext(ctx)

		var errs []error
		for _, model := range models {
			modelCtx, cancel := context.WithTimeout(ctx, perModelTimeout)
			text, err := provider.Complete(modelCtx, model, question)
			cancel()
			if err == nil {
				return domain.AssistantReply{Text: text, Model: model}, nil
			}

			logger.WarnContext(ctx, "Model did not answer, trying next", slog.String("model", model), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", model, err))

			if ctx.Err() != nil {
				break
			}
		}

		return domain.AssistantReply{}, errors.Join(errs...)
	}
}

func allMissingCredential(errs error) bool {
	var joined interface{ Unwrap() []error }
	if !errors.As(errs, &joined) {
		return errors.Is(errs, domain.ErrMissingCredential)
	}
	for _, err := range joined.Unwrap() {
		if !errors.Is(err, domain.ErrMissingCredential) {
			return false
		}
	}
	return true
}

func BuildAskAssistant(
	provider completionProvider,
	models []string,
	answerCache cache.Cache[domain.AssistantReply],
) AskAssistant {
	askModels := buildAskModels(provider, models)

	return func(ctx context.Context, question string) domain.AssistantReply {
		reply, _, err := cache.GetOrCreate(ctx, answerCache, questionKey(question), func() (domain.AssistantReply, error) {
			return askModels(ctx, question)
		})
		if err != nil {
			// A missing key is a deployment choice, not an incident
			if !allMissingCredential(err) && ctx.Err() == nil {
				reporting.Report(ctx, fmt.Errorf("all assistant models failed: %w", err), map[string]string{
					"models": strings.Join(models, ","),
				})
			}
			return domain.AssistantReply{Text: ASSISTANT_APOLOGY, Fallback: true}
		}

		return reply
	}
}
