package llm

import (
	"context"
	"testing"

	"github.com/zzy/curiosity-engine-go/internal/config"
)

func TestNewClientDeepSeek(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		LLMProvider:     "deepseek",
		DeepSeekAPIKey:  "sk-test",
		DeepSeekBaseURL: "https://api.deepseek.com",
		ChatModel:       config.DefaultChatModel,
	}

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.Provider() != ProviderDeepSeek {
		t.Errorf("Provider = %q", client.Provider())
	}
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{LLMProvider: "llama"}
	if _, err := NewClient(context.Background(), cfg); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
