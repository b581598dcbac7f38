package session

import (
	"fmt"
	"sync"

	"companion/internal/assistant"
	"companion/pkg/schema"
)

// Manager owns the live sessions of a process, keyed by session ID.
type Manager struct {
	engine Processor
	opts   []Option

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a manager whose sessions share engine and opts.
func NewManager(engine Processor, opts ...Option) *Manager {
	return &Manager{
		engine:   engine,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session with the given personality. An empty key keeps
// the default from the manager's options.
func (m *Manager) Create(personality assistant.Key) (string, *Session, error) {
	id, err := schema.NewSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("generate session id: %w", err)
	}

	opts := append([]Option(nil), m.opts...)
	if personality != "" {
		opts = append(opts, WithPersonality(personality))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", nil, ErrSessionClosed
	}
	s := New(m.engine, opts...)
	m.sessions[id] = s
	return id, s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete closes and forgets the session with id. It reports whether the
// session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes every session. Later calls to Create fail.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.closed = true
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
