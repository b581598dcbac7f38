package llm

import (
	"fmt"
	"time"
)

// Config contains configuration for the remote completion backends.
type Config struct {
	// APIKey is the OpenRouter API key
	APIKey string

	// BaseURL is the OpenRouter API base URL
	// Default: https://openrouter.ai/api/v1
	BaseURL string

	// DefaultModel is the model to use for completions
	// Example: anthropic/claude-3.5-sonnet
	DefaultModel string

	// Timeout is the HTTP request timeout
	// Default: 30 seconds
	Timeout time.Duration

	// Temperature is the sampling temperature sent with every request
	// Default: 0.7
	Temperature float64

	// MaxTokens caps the completion length
	// Default: 1000
	MaxTokens int
}

// Defaults.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "anthropic/claude-3.5-sonnet"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("APIKey is required")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}

	if c.DefaultModel == "" {
		return fmt.Errorf("DefaultModel is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("Temperature must be between 0 and 2, got %v", c.Temperature)
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("MaxTokens must not be negative")
	}

	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}

	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}
