package assistant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Profile(t *testing.T) {
	registry := NewRegistry()

	for _, key := range []Key{Creative, Technical, Marketing, Educator} {
		t.Run(string(key), func(t *testing.T) {
			p, err := registry.Profile(key)
			require.NoError(t, err)

			assert.Equal(t, key, p.Key)
			assert.NotEmpty(t, p.Label)
			assert.NotEmpty(t, p.SystemPrompt)
			assert.NotEmpty(t, p.Flavor)
			assert.NotEmpty(t, p.Fallback.Content)
			assert.Empty(t, p.Fallback.Keywords, "fallback must not need a keyword")

			for _, r := range p.Rules {
				assert.NotEmpty(t, r.Keywords, "rule %s", r.Name)
				assert.NotEmpty(t, r.Content, "rule %s", r.Name)
				assert.LessOrEqual(t, len(r.Suggestions), MaxSuggestions, "rule %s", r.Name)
			}
		})
	}
}

func TestRegistry_UnknownPersonality(t *testing.T) {
	registry := NewRegistry()

	for _, key := range []Key{"", "pirate", "Technical", "technical "} {
		_, err := registry.Profile(key)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownPersonality))

		var upErr *UnknownPersonalityError
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, key, upErr.Key)
	}
}

func TestRegistry_ProfileIsACopy(t *testing.T) {
	registry := NewRegistry()

	p, err := registry.Profile(Technical)
	require.NoError(t, err)
	p.Flavor[0] = "mutated"
	p.Rules[0].Suggestions[0] = "mutated"

	again, err := registry.Profile(Technical)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Flavor[0])
	assert.NotEqual(t, "mutated", again.Rules[0].Suggestions[0])
}

func TestRegistry_Keys(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, []Key{Creative, Technical, Marketing, Educator}, registry.Keys())
	assert.True(t, registry.Has(Marketing))
	assert.False(t, registry.Has("pirate"))
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, Technical, ParseKey("  Technical\n"))
	assert.Equal(t, Key("pirate"), ParseKey("PIRATE"))
}

func TestRule_Matches(t *testing.T) {
	rule := Rule{Name: "mixed", Keywords: []string{"art", "crash", "ads", "not working"}}

	tests := []struct {
		lowered string
		want    bool
	}{
		{"nice art!", true},
		{"artwork ideas", true},
		{"the game crashes", true},
		{"run ads", true},
		{"it's not working.", true},
		{"where do i start?", false},
		{"my game loads slowly", false},
		{"not workings", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.lowered, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Matches(tt.lowered))
		})
	}
}
