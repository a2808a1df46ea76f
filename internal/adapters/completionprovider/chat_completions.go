package completionprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/anki0476/rigveda-explorer/internal/constants"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const DEFAULT_BASE_URL = "https://openrouter.ai/api/v1"

const systemPrompt = "You are a guide to the Rigveda. Answer questions about its hymns, deities, " +
	"seers and themes concisely and accurately. Say so when the text is silent or scholars disagree."

var ErrEmptyCompletion = errors.New("completion response contained no text")

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletions talks to an OpenAI compatible /chat/completions endpoint
type ChatCompletions struct {
	httpClient HttpClient
	baseURL    string
	apiKey     string
	// Keeps us within the upstream quota shared by all players
	limiter *rate.Limiter

	requestCount metric.Int64Counter
	tracer       trace.Tracer
}

func NewChatCompletions(httpClient HttpClient, baseURL string, apiKey string, limiter *rate.Limiter) (*ChatCompletions, error) {
	const name = "rigveda-explorer/completionprovider"

	meter := otel.Meter(name)
	requestCount, err := meter.Int64Counter("completionprovider/request_count")
	if err != nil {
		return nil, fmt.Errorf("failed to create request count metric: %w", err)
	}

	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}

	return &ChatCompletions{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       strings.TrimSpace(apiKey),
		limiter:      limiter,
		requestCount: requestCount,
		tracer:       otel.Tracer(name),
	}, nil
}

// Complete asks model a single question. The returned error is never worth showing a player;
// callers move on to another model.
func (c *ChatCompletions) Complete(ctx context.Context, model string, question string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ChatCompletions.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("model", model))

	if c.apiKey == "" {
		return "", fmt.Errorf("%w: completion api key", domain.ErrMissingCredential)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: completion quota: %w", domain.ErrTemporarilyUnavailable, err)
		}
	}

	requestBody, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(ctx, model, "transport_error")
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.count(ctx, model, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return "", fmt.Errorf("failed to read error body for status %d: %w", resp.StatusCode, err)
		}
		return "", fmt.Errorf("completion request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, choice := range payload.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}

	return "", ErrEmptyCompletion
}

func (c *ChatCompletions) count(ctx context.Context, model string, status string) {
	c.requestCount.Add(
		ctx,
		1,
		metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("status", status),
		),
	)
}
