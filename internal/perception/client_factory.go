package perception

import (
	"context"
	"fmt"

	"microagent/internal/config"
	"microagent/internal/logging"
	"microagent/internal/types"
)

// NewClient builds the model backend selected by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (types.ChatClient, error) {
	switch cfg.Provider {
	case config.ProviderOllama, "":
		logging.Boot("Using Ollama backend at %s (model %s)", cfg.BaseURL, cfg.Model)
		return NewOllamaClient(cfg.BaseURL, cfg.Model, cfg.GetTimeout()), nil
	case config.ProviderGemini:
		logging.Boot("Using Gemini backend (model %s)", cfg.Model)
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.GetTimeout())
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
