package llm

import (
	"context"
	"sync"
	"time"
)

// MockBackend is a scriptable completion backend for tests.
type MockBackend struct {
	Response string        // The completion to return
	Error    error         // Error to return (if any)
	Delay    time.Duration // Simulated latency; honours ctx cancellation
	Panic    any           // When non-nil, Complete panics with this value

	mu         sync.Mutex
	calls      int
	lastSystem string
	lastUser   string
}

// Complete records the prompts and returns the scripted result.
func (m *MockBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	m.mu.Unlock()

	if m.Panic != nil {
		panic(m.Panic)
	}

	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", NewTimeoutError(ctx.Err())
		}
	}

	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastPrompts returns the prompts of the most recent call.
func (m *MockBackend) LastPrompts() (system, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem, m.lastUser
}

// NewFixtureBackend returns a MockBackend replaying a recorded fixture.
func NewFixtureBackend(f *Fixture) *MockBackend {
	return &MockBackend{Response: f.Output}
}
