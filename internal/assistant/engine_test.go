package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion/internal/llm"
)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithSimulatedDelay(0),
		WithFlavorPicker(NoFlavor),
	}
	return NewEngine(NewRegistry(), append(base, opts...)...)
}

func TestEngine_UnknownPersonality(t *testing.T) {
	backend := &llm.MockBackend{Response: "hello"}
	engine := newTestEngine(WithBackend(backend))

	_, err := engine.Process(context.Background(), Request{Utterance: "hi", Personality: "pirate"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPersonality))
	assert.Equal(t, 0, backend.Calls())
}

func TestEngine_EmptyUtterance(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Process(context.Background(), Request{Utterance: "  \n", Personality: Technical})

	assert.ErrorIs(t, err, ErrEmptyUtterance)
}

func TestEngine_SimulatedWhenUnconfigured(t *testing.T) {
	engine := newTestEngine()
	assert.False(t, engine.RemoteEnabled())

	for _, key := range engine.Registry().Keys() {
		resp, err := engine.Process(context.Background(), Request{Utterance: "hello there", Personality: key})
		require.NoError(t, err)

		assert.Equal(t, SourceSimulated, resp.Source)
		assert.NotEmpty(t, resp.Content)
	}
}

func TestEngine_SimulatedDecisionTable(t *testing.T) {
	engine := newTestEngine()
	registry := engine.Registry()

	tests := []struct {
		key       Key
		utterance string
		rule      string
	}{
		{Technical, "how do I optimize performance", "performance"},
		{Technical, "My PERFORMANCE is bad", "performance"},
		{Technical, "collision detection please", "physics"},
		{Technical, "the game crashes on start", "debugging"},
		{Technical, "hello", "guidance"},
		{Creative, "help me write a story", "story"},
		{Creative, "design a level", "level"},
		{Creative, "pick a color palette", "art"},
		{Creative, "anything", "inspiration"},
		{Marketing, "when should I launch", "launch"},
		{Marketing, "how to monetize", "monetization"},
		{Marketing, "grow my discord", "community"},
		{Marketing, "hi", "positioning"},
		{Educator, "I'm a beginner", "getting-started"},
		{Educator, "what is a sprite", "concept"},
		{Educator, "give me an exercise", "practice"},
		{Educator, "hmm", "encouragement"},
		{Creative, "where do I start?", "inspiration"},
		{Marketing, "my game loads slowly", "positioning"},
		{Educator, "I need to restart", "encouragement"},
		{Technical, "the terror theme music", "guidance"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key)+"/"+tt.rule, func(t *testing.T) {
			profile, err := registry.Profile(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, selectRule(profile, tt.utterance).Name)

			resp, err := engine.Process(context.Background(), Request{Utterance: tt.utterance, Personality: tt.key})
			require.NoError(t, err)
			assert.Equal(t, selectRule(profile, tt.utterance).Content, resp.Content)
		})
	}
}

func TestEngine_TechnicalPerformanceBranch(t *testing.T) {
	engine := newTestEngine()

	resp, err := engine.Process(context.Background(), Request{
		Utterance:   "how do I optimize performance",
		Personality: Technical,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Content)
	assert.NotEmpty(t, resp.Code)
	assert.Len(t, resp.Suggestions, 3)
}

func TestEngine_FlavorPicker(t *testing.T) {
	engine := newTestEngine(WithFlavorPicker(FirstFlavor))
	profile, err := engine.Registry().Profile(Marketing)
	require.NoError(t, err)

	resp, err := engine.Process(context.Background(), Request{Utterance: "hi", Personality: Marketing})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Content, profile.Flavor[0]+" "))
	assert.True(t, strings.HasSuffix(resp.Content, profile.Fallback.Content))
}

func TestRandomFlavor(t *testing.T) {
	lines := []string{"a", "b"}

	assert.Equal(t, "", RandomFlavor(0, nil)(lines))
	assert.Contains(t, lines, RandomFlavor(1, nil)(lines))
	assert.Equal(t, "", RandomFlavor(1, nil)(nil))
}

func TestEngine_ConcurrentProcessSharedRandomSource(t *testing.T) {
	engine := newTestEngine(WithFlavorPicker(RandomFlavor(0.5, rand.New(rand.NewPCG(1, 2)))))

	const workers, calls = 8, 200
	errs := make(chan error, workers*calls)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				resp, err := engine.Process(context.Background(), Request{Utterance: "hi", Personality: Marketing})
				if err == nil && resp.Content == "" {
					err = errors.New("empty content")
				}
				if err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEngine_RemoteSuccess(t *testing.T) {
	backend := &llm.MockBackend{
		Response: "Batch your sprites.\n\n```js\nbatch();\n```\n\nTry:\n- Use an atlas\n- Profile first",
	}
	engine := newTestEngine(WithBackend(backend))

	resp, err := engine.Process(context.Background(), Request{
		Utterance:   "how do I optimize performance",
		Personality: Technical,
		Context:     &Context{ProjectID: "p1", Scene: "main"},
	})
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, resp.Source)
	assert.Equal(t, "batch();", resp.Code)
	assert.Equal(t, []string{"Use an atlas", "Profile first"}, resp.Suggestions)
	assert.NotContains(t, resp.Content, "```")

	profile, _ := engine.Registry().Profile(Technical)
	system, user := backend.LastPrompts()
	assert.Equal(t, profile.SystemPrompt, system)
	assert.Equal(t, "Context: Project: p1\nScene: main\n\nhow do I optimize performance", user)
}

func TestEngine_RemoteFailureMatchesSimulated(t *testing.T) {
	failures := map[string]Backend{
		"network":       &llm.MockBackend{Error: llm.NewNetworkError(errors.New("connection refused"))},
		"rejected":      &llm.MockBackend{Error: llm.NewAPIError(http.StatusUnauthorized, "bad key")},
		"plain error":   &llm.MockBackend{Error: errors.New("boom")},
		"empty content": &llm.MockBackend{Response: ""},
		"code only":     &llm.MockBackend{Response: "```js\nonlyCode();\n```"},
		"panic":         &llm.MockBackend{Panic: "backend exploded"},
		"timeout":       &llm.MockBackend{Response: "too late", Delay: time.Second},
	}

	req := Request{Utterance: "how do I optimize performance", Personality: Technical}
	expected, err := newTestEngine().Process(context.Background(), req)
	require.NoError(t, err)

	for name, backend := range failures {
		t.Run(name, func(t *testing.T) {
			engine := newTestEngine(WithBackend(backend), WithRemoteTimeout(20*time.Millisecond))

			got, err := engine.Process(context.Background(), req)
			require.NoError(t, err)

			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("fallback response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_OpenRouterClient(t *testing.T) {
	var received llm.OpenRouterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Keep the loop small.\n\nConsider:\n1. Split update and render"}}]}`))
	}))
	defer server.Close()

	client, err := llm.NewClient(&llm.Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		DefaultModel: "test-model",
	})
	require.NoError(t, err)

	engine := newTestEngine(WithBackend(client))
	resp, err := engine.Process(context.Background(), Request{Utterance: "structure my game", Personality: Technical})
	require.NoError(t, err)

	assert.Equal(t, SourceRemote, resp.Source)
	assert.Equal(t, []string{"Split update and render"}, resp.Suggestions)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0].Role)
	assert.Equal(t, "user", received.Messages[1].Role)
	assert.Equal(t, "structure my game", received.Messages[1].Content)
}

func TestEngine_OpenRouterServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client, err := llm.NewClient(&llm.Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		DefaultModel: "test-model",
	})
	require.NoError(t, err)

	engine := newTestEngine(WithBackend(client))
	resp, err := engine.Process(context.Background(), Request{Utterance: "hello", Personality: Educator})
	require.NoError(t, err)

	assert.Equal(t, SourceSimulated, resp.Source)
	assert.NotEmpty(t, resp.Content)
}

func TestEngine_WithFixture(t *testing.T) {
	fixture, err := llm.LoadFixture("testdata/fixtures", "technical-object-pool")
	require.NoError(t, err)

	backend := llm.NewFixtureBackend(fixture)
	engine := newTestEngine(WithBackend(backend))

	resp, err := engine.Process(context.Background(), Request{
		Utterance:   "My bullets make the game stutter, what should I do?",
		Personality: Technical,
		Context:     &Context{ProjectID: "space-shooter", Scene: "level-1"},
	})
	require.NoError(t, err)

	_, user := backend.LastPrompts()
	assert.Equal(t, fixture.User, user)

	assert.Equal(t, SourceRemote, resp.Source)
	assert.Contains(t, resp.Code, "function getBullet()")
	assert.Equal(t, []string{
		"Pool bullets and particles",
		"Profile a frame to confirm GC pauses",
		"Avoid allocating arrays inside the game loop",
	}, resp.Suggestions)
	assert.True(t, strings.HasPrefix(resp.Content, "Stutter from bullets"))
}

func TestEngine_SimulatedDelayHonoursCancellation(t *testing.T) {
	engine := NewEngine(NewRegistry(), WithSimulatedDelay(time.Hour), WithFlavorPicker(NoFlavor))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	resp, err := engine.Process(ctx, Request{Utterance: "hi", Personality: Creative})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.NotEmpty(t, resp.Content)
}
