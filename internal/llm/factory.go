package llm

import (
	"context"
	"fmt"

	"github.com/terra-clan/careerprep/internal/config"
)

// NewProvider creates a Provider from configuration, wrapped with
// timeout, logging and metrics.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	defaults := Defaults{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature}

	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, defaults)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, defaults)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, defaults)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithInstrumentation(base, cfg.Timeout), nil
}
