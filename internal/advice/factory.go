package advice

import (
	"context"
	"fmt"
)

// Config selects and configures the advice provider.
type Config struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GeminiAPIKey    string
}

// New returns the configured gateway. An empty provider disables advice.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case ProviderNone, "":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported advice provider: %s", cfg.Provider)
	}
}
