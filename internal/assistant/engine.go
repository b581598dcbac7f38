package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"companion/internal/llm"
)

// Backend is a remote text-generation service.
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Source records which path produced a Response.
type Source string

const (
	SourceRemote    Source = "remote"
	SourceSimulated Source = "simulated"
)

// ErrEmptyUtterance is returned for blank utterances.
var ErrEmptyUtterance = errors.New("utterance is empty")

// Request is a single engine call.
type Request struct {
	Utterance   string
	Personality Key
	Context     *Context
}

// Response is the engine's answer. Content is never empty; a nil
// Suggestions slice and an empty Code mean absent.
type Response struct {
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
	Code        string   `json:"code,omitempty"`
	Source      Source   `json:"source"`
}

// Defaults.
const (
	DefaultRemoteTimeout  = 8 * time.Second
	DefaultSimulatedDelay = 1200 * time.Millisecond
	DefaultFlavorChance   = 0.35
)

// Engine answers requests with a remote backend when one is configured and
// falls back to the rule-based simulator otherwise. Engine holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	registry       *Registry
	backend        Backend
	remoteTimeout  time.Duration
	simulatedDelay time.Duration
	flavor         FlavorPicker
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBackend enables the remote path. A nil backend leaves it disabled.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithRemoteTimeout bounds each remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.remoteTimeout = d
		}
	}
}

// WithSimulatedDelay sets the artificial latency of the simulated path.
// Zero disables it.
func WithSimulatedDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.simulatedDelay = d
		}
	}
}

// WithFlavorPicker replaces the flavor-line decision function.
func WithFlavorPicker(p FlavorPicker) Option {
	return func(e *Engine) {
		if p == nil {
			p = NoFlavor
		}
		e.flavor = p
	}
}

// WithLogger routes engine logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over registry.
func NewEngine(registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:       registry,
		remoteTimeout:  DefaultRemoteTimeout,
		simulatedDelay: DefaultSimulatedDelay,
		flavor:         RandomFlavor(DefaultFlavorChance, nil),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's personality registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// RemoteEnabled reports whether a backend is configured.
func (e *Engine) RemoteEnabled() bool {
	return e.backend != nil
}

// Process answers req. The only errors returned are caller misuse
// (ErrUnknownPersonality, ErrEmptyUtterance); every remote failure falls
// back to the simulated path.
func (e *Engine) Process(ctx context.Context, req Request) (Response, error) {
	profile, err := e.registry.Profile(req.Personality)
	if err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Utterance) == "" {
		return Response{}, ErrEmptyUtterance
	}

	contextBlock := BuildContext(req.Context)

	if e.backend != nil {
		resp, err := e.remote(ctx, profile, contextBlock, req.Utterance)
		if err == nil {
			return resp, nil
		}
		e.logger.Warn("Remote completion failed, using simulated response",
			"personality", string(profile.Key),
			"kind", llm.ErrorType(err),
			"error", err.Error(),
		)
	}

	return e.Simulate(ctx, profile, req.Utterance), nil
}

// Simulate runs the deterministic path for profile, including its latency.
func (e *Engine) Simulate(ctx context.Context, profile Profile, utterance string) Response {
	resp := simulate(profile, utterance, e.flavor)
	pause(ctx, e.simulatedDelay)
	e.logger.Debug("Simulated response generated",
		"personality", string(profile.Key),
		"has_code", resp.Code != "",
		"suggestions", len(resp.Suggestions),
	)
	return resp
}

// remote performs one bounded backend call and extracts its output.
func (e *Engine) remote(ctx context.Context, profile Profile, contextBlock, utterance string) (resp Response, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = llm.NewNetworkError(fmt.Errorf("backend panicked: %v", r))
		}
	}()

	start := time.Now()
	text, err := e.backend.Complete(ctx, profile.SystemPrompt, BuildUserPrompt(contextBlock, utterance))
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && llm.ErrorType(err) != llm.ErrorTypeTimeout {
			err = llm.NewTimeoutError(err)
		}
		return Response{}, err
	}

	ext := Extract(text)
	if ext.Prose == "" {
		return Response{}, llm.NewMalformedError("no prose outside code blocks", nil)
	}

	e.logger.Info("Remote completion succeeded",
		"personality", string(profile.Key),
		"duration", time.Since(start),
		"has_code", ext.Code != "",
		"suggestions", len(ext.Suggestions),
	)

	return Response{
		Content:     ext.Prose,
		Suggestions: ext.Suggestions,
		Code:        ext.Code,
		Source:      SourceRemote,
	}, nil
}

// BuildUserPrompt prefixes the utterance with the context block, if any.
func BuildUserPrompt(contextBlock, utterance string) string {
	utterance = strings.TrimSpace(utterance)
	if contextBlock == "" {
		return utterance
	}
	return "Context: " + contextBlock + "\n\n" + utterance
}
