package llm

import (
	"context"
	"fmt"

	"github.com/meghashyamc/toolshelf/config"
	"github.com/meghashyamc/toolshelf/logger"
)

// New builds the completer for the provider named in cfg.
func New(ctx context.Context, logger logger.Logger, cfg *config.Config) (Completer, error) {
	switch provider := cfg.GetLLMProvider(); provider {
	case config.LLMProviderOpenAI:
		return NewOpenAI(logger, OpenAIConfig{
			APIKey:  cfg.GetLLMAPIKey(),
			Model:   cfg.GetLLMModel(),
			BaseURL: cfg.GetLLMBaseURL(),
		})
	case config.LLMProviderGemini:
		return NewGemini(ctx, logger, GeminiConfig{
			APIKey: cfg.GetLLMAPIKey(),
			Model:  cfg.GetLLMModel(),
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", provider)
	}
}
