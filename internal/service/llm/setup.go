package llm

import (
	"fmt"
	"log/slog"

	"quill/internal/config"
	"quill/internal/domain/generation"
)

// SetupGenerator builds the generator service selected by
// configuration. New providers slot in here without touching callers,
// which only ever see the generation.Service interface.
func SetupGenerator(cfg *config.Config, logger *slog.Logger) (generation.Service, error) {
	profiles, err := LoadProfiles()
	if err != nil {
		return nil, fmt.Errorf("load style profiles: %w", err)
	}

	switch cfg.Provider {
	case "anthropic":
		svc, err := NewAnthropicService(cfg.AnthropicAPIKey, cfg.Model, profiles, logger)
		if err != nil {
			return nil, fmt.Errorf("setup anthropic provider: %w", err)
		}
		logger.Info("generator provider initialized", "provider", "anthropic", "model", svc.model)
		return svc, nil
	case "openai":
		svc, err := NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model, profiles, logger)
		if err != nil {
			return nil, fmt.Errorf("setup openai provider: %w", err)
		}
		logger.Info("generator provider initialized", "provider", "openai", "model", svc.model)
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
