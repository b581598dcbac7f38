package core

import (
	"os"
	"strconv"
	"strings"
	"time"

	"companion/internal/assistant"
	"companion/internal/llm"
	"companion/internal/session"
)

// Remote backend providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGenkit     = "genkit"
	ProviderGemini     = "gemini"
)

// Config holds the application configuration.
type Config struct {
	LogLevel string // DEBUG, INFO, WARN, ERROR
	LogFile  string // Rotated log file; stderr when empty

	Provider          string // openrouter, genkit or gemini
	OpenRouterAPIKey  string // Enables the remote path for openrouter and genkit
	OpenRouterBaseURL string
	DefaultModel      string
	GeminiAPIKey      string // Enables the remote path for gemini
	GeminiModel       string

	RemoteTimeout      time.Duration
	SimulatedDelay     time.Duration
	MoodResetDelay     time.Duration
	FlavorChance       float64
	DefaultPersonality assistant.Key

	HTTPAddr    string
	CatalogFile string // Optional YAML catalog replacing the built-in one
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	// DEBUG flag overrides log level
	if os.Getenv("DEBUG") == "1" {
		logLevel = "debug"
	}

	cfg := &Config{
		LogLevel: strings.ToLower(logLevel),
		LogFile:  os.Getenv("LOG_FILE"),

		Provider:          strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenRouter)),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", llm.DefaultBaseURL),
		DefaultModel:      getEnvOrDefault("DEFAULT_MODEL", llm.DefaultModel),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", llm.DefaultGeminiModel),

		RemoteTimeout:      getEnvDuration("REMOTE_TIMEOUT", assistant.DefaultRemoteTimeout),
		SimulatedDelay:     getEnvDuration("SIMULATED_DELAY", assistant.DefaultSimulatedDelay),
		MoodResetDelay:     getEnvDuration("MOOD_RESET_DELAY", session.DefaultMoodResetDelay),
		FlavorChance:       getEnvFloat("FLAVOR_CHANCE", assistant.DefaultFlavorChance),
		DefaultPersonality: assistant.ParseKey(getEnvOrDefault("DEFAULT_PERSONALITY", string(assistant.Technical))),

		HTTPAddr:    getEnvOrDefault("HTTP_ADDR", ":8080"),
		CatalogFile: os.Getenv("CATALOG_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderGenkit, ProviderGemini:
		// Valid
	default:
		return &ValidationError{Field: "LLM_PROVIDER", Message: "must be openrouter, genkit or gemini, got " + strconv.Quote(c.Provider)}
	}

	if c.RemoteTimeout <= 0 {
		return &ValidationError{Field: "REMOTE_TIMEOUT", Message: "must be positive"}
	}
	if c.SimulatedDelay < 0 {
		return &ValidationError{Field: "SIMULATED_DELAY", Message: "must not be negative"}
	}
	if c.MoodResetDelay <= 0 {
		return &ValidationError{Field: "MOOD_RESET_DELAY", Message: "must be positive"}
	}
	if c.FlavorChance < 0 || c.FlavorChance > 1 {
		return &ValidationError{Field: "FLAVOR_CHANCE", Message: "must be between 0 and 1"}
	}
	if c.HTTPAddr == "" {
		return &ValidationError{Field: "HTTP_ADDR", Message: "cannot be empty"}
	}

	return nil
}

// CheckPersonality reports whether DefaultPersonality names a personality in
// registry.
func (c *Config) CheckPersonality(registry *assistant.Registry) error {
	if !registry.Has(c.DefaultPersonality) {
		return &ValidationError{
			Field:   "DEFAULT_PERSONALITY",
			Message: "unknown personality " + strconv.Quote(string(c.DefaultPersonality)),
			Err:     assistant.ErrUnknownPersonality,
		}
	}
	return nil
}

// RemoteConfigured reports whether the selected provider has credentials.
func (c *Config) RemoteConfigured() bool {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey != ""
	}
	return c.OpenRouterAPIKey != ""
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a Go duration ("8s", "1200ms"). Unparseable values
// fall back to the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
