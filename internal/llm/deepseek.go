package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
)

// DeepSeekClient talks to the DeepSeek chat-completion API. DeepSeek is
// OpenAI-compatible, so the client also works against any compatible
// endpoint via a custom base URL.
type DeepSeekClient struct {
	client  openai.Client
	model   string
	baseURL string
}

// NewDeepSeekClient creates a client for an OpenAI-compatible endpoint.
// A timeout of zero leaves the SDK default in place.
func NewDeepSeekClient(apiKey, baseURL, model string, timeout time.Duration) *DeepSeekClient {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &DeepSeekClient{
		client:  openai.NewClient(opts...),
		model:   model,
		baseURL: baseURL,
	}
}

// Complete sends the question with the fixed system prompt and returns the
// first choice's message content.
func (c *DeepSeekClient) Complete(ctx context.Context, question string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(question),
		},
		Temperature: openai.Float(float64(DefaultTemperature)),
		MaxTokens:   openai.Int(DefaultMaxTokens),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			slog.WarnContext(ctx, "chat completion rejected",
				"provider", ProviderDeepSeek,
				"model", c.model,
				"status", apierr.StatusCode,
				"duration_ms", duration.Milliseconds())
			return "", apperrors.NewRemoteError(apierr.StatusCode, apierr.Error())
		}
		slog.WarnContext(ctx, "chat completion call failed",
			"provider", ProviderDeepSeek,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", apperrors.NewTransportError(c.baseURL, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.ErrEmptyResponse
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "chat completion done",
			"provider", ProviderDeepSeek,
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return resp.Choices[0].Message.Content, nil
}

// Provider reports which backend this client talks to.
func (c *DeepSeekClient) Provider() Provider {
	return ProviderDeepSeek
}
