package llm

import (
	"context"
	"fmt"

	"github.com/zzy/curiosity-engine-go/internal/config"
)

// NewClient builds the chat client selected by configuration.
func NewClient(ctx context.Context, cfg *config.Config) (ChatClient, error) {
	switch Provider(cfg.LLMProvider) {
	case ProviderDeepSeek:
		return NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.ChatModel, cfg.LLMTimeout), nil
	case ProviderGemini:
		model := cfg.ChatModel
		if model == config.DefaultChatModel {
			model = DefaultGeminiModel
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, model, cfg.LLMTimeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
