package core

import (
	"context"
	"log/slog"

	"companion/internal/assistant"
	"companion/internal/llm"
)

// NewBackend builds the remote backend for cfg.Provider. It returns a nil
// backend, and no error, when the provider has no credentials; the engine
// then answers from the simulated path only.
func NewBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (assistant.Backend, error) {
	if !cfg.RemoteConfigured() {
		logger.Info("No remote credentials, using simulated responses", "provider", cfg.Provider)
		return nil, nil
	}

	if cfg.Provider == ProviderGemini {
		gemini, err := llm.NewGeminiBackend(ctx, llm.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, &BackendError{Provider: cfg.Provider, Err: err}
		}
		logger.Info("Remote backend ready", "provider", cfg.Provider, "model", gemini.Model())
		return gemini.WithLogger(logger), nil
	}

	client, err := llm.NewClient(&llm.Config{
		APIKey:       cfg.OpenRouterAPIKey,
		BaseURL:      cfg.OpenRouterBaseURL,
		DefaultModel: cfg.DefaultModel,
		// The engine bounds each call; this only guards a stuck connection.
		Timeout: 2 * cfg.RemoteTimeout,
	})
	if err != nil {
		return nil, &BackendError{Provider: cfg.Provider, Err: err}
	}
	client.WithLogger(logger)

	if cfg.Provider == ProviderGenkit {
		gk, err := llm.NewGenkitBackend(ctx, client)
		if err != nil {
			return nil, &BackendError{Provider: cfg.Provider, Err: err}
		}
		logger.Info("Remote backend ready", "provider", cfg.Provider, "model", client.Model())
		return gk, nil
	}

	logger.Info("Remote backend ready", "provider", cfg.Provider, "model", client.Model())
	return client, nil
}

// NewEngine builds the response engine configured by cfg over registry. A nil
// backend disables the remote path.
func NewEngine(cfg *Config, registry *assistant.Registry, backend assistant.Backend, logger *slog.Logger) *assistant.Engine {
	opts := []assistant.Option{
		assistant.WithRemoteTimeout(cfg.RemoteTimeout),
		assistant.WithSimulatedDelay(cfg.SimulatedDelay),
		assistant.WithFlavorPicker(assistant.RandomFlavor(cfg.FlavorChance, nil)),
		assistant.WithLogger(logger),
	}
	if backend != nil {
		opts = append(opts, assistant.WithBackend(backend))
	}
	return assistant.NewEngine(registry, opts...)
}
