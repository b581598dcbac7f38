package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a completion client for the OpenRouter chat completions API.
type Client struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a new OpenRouter client.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.SetDefaults()

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default(),
	}, nil
}

// WithLogger returns the client with logs routed to logger.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Model returns the model used for completions.
func (c *Client) Model() string {
	return c.config.DefaultModel
}

// OpenRouterRequest represents a request to OpenRouter (OpenAI-compatible).
type OpenRouterRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenRouterMsg `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

// OpenRouterMsg represents a message in the conversation.
type OpenRouterMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenRouterResponse represents a response from OpenRouter.
type OpenRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends one system prompt and one user prompt and returns the
// completion text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := OpenRouterRequest{
		Model: c.config.DefaultModel,
		Messages: []OpenRouterMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("OpenRouter HTTP request failed",
			"error", err.Error(),
			"duration", duration,
		)
		return "", transportError(ctx, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", "error", err)
		}
	}()

	c.logger.Info("OpenRouter HTTP request completed",
		"status_code", resp.StatusCode,
		"duration", duration,
		"model", c.config.DefaultModel,
	)

	if resp.StatusCode != http.StatusOK {
		var errBody bytes.Buffer
		if _, err := errBody.ReadFrom(resp.Body); err != nil {
			c.logger.Warn("Failed to read error response body", "error", err)
			return "", NewAPIError(resp.StatusCode, fmt.Sprintf("status %d (failed to read error body)", resp.StatusCode))
		}
		return "", NewAPIError(resp.StatusCode, errBody.String())
	}

	var openrouterResp OpenRouterResponse
	if err := json.NewDecoder(resp.Body).Decode(&openrouterResp); err != nil {
		return "", NewMalformedError("decode response", err)
	}

	if openrouterResp.Error != nil {
		return "", NewAPIError(0, openrouterResp.Error.Message)
	}

	if len(openrouterResp.Choices) == 0 {
		return "", NewMalformedError("no choices in response", nil)
	}

	content := openrouterResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", NewMalformedError("empty content", nil)
	}

	return content, nil
}
