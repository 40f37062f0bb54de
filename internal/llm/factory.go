package llm

import (
	"fmt"

	"techpal/backend/pkg/config"
)

// NewClient creates the provider client selected by configuration.
// Selection happens once at process start; there is no per-request
// provider override.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(
			cfg.LLM.OpenAIKey,
			cfg.LLM.OpenAIModel,
			cfg.LLM.MaxOutputTokens,
			cfg.LLM.MaxPromptChars,
			cfg.LLM.Timeout,
		)
	case config.ProviderAnthropic:
		return NewAnthropicClient(
			cfg.LLM.AnthropicKey,
			cfg.LLM.AnthropicModel,
			cfg.LLM.MaxOutputTokens,
			cfg.LLM.MaxPromptChars,
			cfg.LLM.Timeout,
		)
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLM.Provider)
	}
}
