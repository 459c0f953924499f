// Package llm provides chat-completion access to LLM providers (DeepSeek
// and Gemini). Both providers sit behind one ChatClient interface so the
// fetch pipeline never knows which backend answered.
package llm

import "context"

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderDeepSeek Provider = "deepseek"
	ProviderGemini   Provider = "gemini"
)

// DefaultGeminiModel is used when the configured chat model is the
// DeepSeek default but the Gemini provider is selected.
const DefaultGeminiModel = "gemini-2.5-flash"

// Request generation parameters shared by every provider. The values are
// part of the prompt contract: the system prompt assumes a creative but
// bounded response.
const (
	DefaultTemperature float32 = 0.7
	DefaultMaxTokens           = 2000
)

// ChatClient answers a single question with a single completion. The raw
// text is returned as-is; structured extraction happens downstream.
type ChatClient interface {
	// Complete sends the question with the fixed system prompt and returns
	// the first choice's message content.
	Complete(ctx context.Context, question string) (string, error)

	// Provider reports which backend this client talks to.
	Provider() Provider
}
