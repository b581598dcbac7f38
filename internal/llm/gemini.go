package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GeminiConfig.Model is empty.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string // optional override, used by tests
	Temperature float64
	MaxTokens   int
}

// GeminiBackend completes prompts with Google's Gemini API.
type GeminiBackend struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *slog.Logger
}

// NewGeminiBackend creates a Gemini backend.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiBackend{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		logger:      slog.Default(),
	}, nil
}

// WithLogger returns the backend with logs routed to logger.
func (b *GeminiBackend) WithLogger(logger *slog.Logger) *GeminiBackend {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Model returns the Gemini model name.
func (b *GeminiBackend) Model() string {
	return b.model
}

// Complete sends the prompts to Gemini and returns the generated text.
func (b *GeminiBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := b.client.Models.GenerateContent(ctx,
		b.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(b.temperature),
			MaxOutputTokens:   b.maxTokens,
		},
	)
	if err != nil {
		b.logger.Error("Gemini request failed", "error", err.Error(), "duration", time.Since(start))
		return "", classifyGeminiError(ctx, err)
	}

	b.logger.Info("Gemini request completed", "model", b.model, "duration", time.Since(start))

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", NewMalformedError("empty content", nil)
	}
	return text, nil
}

func classifyGeminiError(ctx context.Context, err error) *LLMError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return NewAPIError(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return NewAPIError(apiErrPtr.Code, apiErrPtr.Message)
	}
	return transportError(ctx, err)
}
