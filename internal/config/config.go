package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Generator configuration
	Provider        string // "anthropic" or "openai"
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	OpenAIBaseURL   string // optional, for OpenAI-compatible gateways
	// Tunables (see limits.go for defaults)
	GenerationTimeout  time.Duration
	SuggestionDebounce time.Duration
	SnapshotInterval   time.Duration
	SessionTTL         time.Duration
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Generator configuration
		Provider:        getEnv("GENERATOR_PROVIDER", "anthropic"),
		Model:           getEnv("GENERATOR_MODEL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		// Tunables
		GenerationTimeout:  getDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),
		SuggestionDebounce: getDuration("SUGGESTION_DEBOUNCE", DefaultSuggestionDebounce),
		SnapshotInterval:   getDuration("SNAPSHOT_INTERVAL", DefaultSnapshotInterval),
		SessionTTL:         getDuration("SESSION_TTL", DefaultSessionTTL),
		// Debug defaults to true outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
