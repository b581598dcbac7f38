package llm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockBackend(t *testing.T) {
	m := &MockBackend{Response: "ok"}

	text, err := m.Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 1, m.Calls())

	system, user := m.LastPrompts()
	assert.Equal(t, "sys", system)
	assert.Equal(t, "usr", user)

	m.Error = errors.New("down")
	_, err = m.Complete(context.Background(), "s", "u")
	assert.EqualError(t, err, "down")
	assert.Equal(t, 2, m.Calls())
}

func TestMockBackend_DelayRespectsContext(t *testing.T) {
	m := &MockBackend{Response: "late", Delay: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Complete(ctx, "s", "u")
	assert.Equal(t, ErrorTypeTimeout, ErrorType(err))
}

func TestFixtures_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fixtures")
	fixture := &Fixture{
		Name:      "greeting",
		System:    "be brief",
		User:      "hello",
		Output:    "Hi!",
		Model:     "test-model",
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveFixture(dir, "greeting", fixture))

	loaded, err := LoadFixture(dir, "greeting")
	require.NoError(t, err)
	assert.Equal(t, fixture, loaded)

	backend := NewFixtureBackend(loaded)
	text, err := backend.Complete(context.Background(), loaded.System, loaded.User)
	require.NoError(t, err)
	assert.Equal(t, "Hi!", text)
}

func TestFixtures_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFixture(dir, "missing")
	assert.ErrorContains(t, err, "fixture not found")

	err = SaveFixture(dir, "bad", &Fixture{Name: "bad"})
	assert.ErrorContains(t, err, "missing 'model' field")
}
