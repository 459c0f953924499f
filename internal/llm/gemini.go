package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/zzy/curiosity-engine-go/internal/errors"
)

const geminiEndpoint = "generativelanguage.googleapis.com"

// GeminiClient answers questions through the Gemini API. It reuses the same
// system prompt as the DeepSeek client, so responses follow the same JSON
// contract regardless of provider.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed chat client. A timeout of zero
// leaves the SDK default in place.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		APIKey: apiKey,
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Complete sends the question with the fixed system prompt and returns the
// concatenated text parts of the first candidate.
func (c *GeminiClient) Complete(ctx context.Context, question string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](DefaultTemperature),
		MaxOutputTokens:   DefaultMaxTokens,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(question), config)
	duration := time.Since(start)

	if err != nil {
		var apierr genai.APIError
		if errors.As(err, &apierr) {
			slog.WarnContext(ctx, "chat completion rejected",
				"provider", ProviderGemini,
				"model", c.model,
				"status", apierr.Code,
				"duration_ms", duration.Milliseconds())
			return "", apperrors.NewRemoteError(apierr.Code, apierr.Message)
		}
		slog.WarnContext(ctx, "chat completion call failed",
			"provider", ProviderGemini,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", apperrors.NewTransportError(geminiEndpoint, err)
	}

	text := candidateText(result)
	if text == "" {
		return "", apperrors.ErrEmptyResponse
	}
	return text, nil
}

// Provider reports which backend this client talks to.
func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
