package ai

import (
	"context"
	"fmt"
)

// ProviderConfig selects and configures one Completer implementation.
type ProviderConfig struct {
	Provider string // "openai" or "gemini"
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
}

// NewCompleter builds the configured provider. The returned close func
// releases provider resources and is never nil.
func NewCompleter(ctx context.Context, cfg ProviderConfig) (Completer, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Provider {
	case "", "openai":
		c, err := NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
