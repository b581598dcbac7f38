package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"companion/internal/assistant"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedEngine blocks in Process until release is closed or ctx is done.
type gatedEngine struct {
	started chan struct{}
	release chan struct{}
	resp    assistant.Response
	err     error

	mu   sync.Mutex
	reqs []assistant.Request
}

func newGatedEngine() *gatedEngine {
	return &gatedEngine{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		resp:    assistant.Response{Content: "gated reply", Source: assistant.SourceSimulated},
	}
}

func (g *gatedEngine) Process(ctx context.Context, req assistant.Request) (assistant.Response, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()

	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return g.resp, g.err
}

func (g *gatedEngine) requests() []assistant.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]assistant.Request(nil), g.reqs...)
}

// instantEngine answers immediately with a fixed response or error.
type instantEngine struct {
	resp assistant.Response
	err  error
}

func (e instantEngine) Process(context.Context, assistant.Request) (assistant.Response, error) {
	return e.resp, e.err
}

func realEngine() *assistant.Engine {
	return assistant.NewEngine(assistant.NewRegistry(),
		assistant.WithSimulatedDelay(0),
		assistant.WithFlavorPicker(assistant.NoFlavor),
	)
}

func TestSession_New(t *testing.T) {
	s := New(realEngine(), WithPersonality(assistant.Creative))
	defer s.Close()

	snap := s.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Equal(t, assistant.Creative, snap.Personality)
	assert.Equal(t, MoodIdle, snap.Mood)
	assert.False(t, snap.Busy)
}

func TestSession_SendRejectsEmptyInput(t *testing.T) {
	s := New(realEngine())
	defer s.Close()

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(context.Background(), content)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Empty(t, s.Messages())
	assert.Equal(t, MoodIdle, s.Mood())
}

func TestSession_TechnicalPerformanceEndToEnd(t *testing.T) {
	s := New(realEngine(), WithPersonality(assistant.Technical))
	defer s.Close()

	reply, err := s.Send(context.Background(), "How can I optimize performance?")
	require.NoError(t, err)

	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Equal(t, assistant.Technical, reply.Personality)
	assert.NotEmpty(t, reply.Content)
	assert.NotEmpty(t, reply.Code)
	assert.Len(t, reply.Suggestions, 3)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "How can I optimize performance?", msgs[0].Content)
	assert.Equal(t, reply, msgs[1])
	assert.Less(t, msgs[0].Seq, msgs[1].Seq)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	assert.False(t, s.Busy())
	assert.Equal(t, MoodExcited, s.Mood())
}

func TestSession_BusyRejectsWithoutMutation(t *testing.T) {
	engine := newGatedEngine()
	s := New(engine)
	defer s.Close()

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()
	<-engine.started

	before := s.Snapshot()
	require.True(t, before.Busy)
	assert.Equal(t, MoodThinking, before.Mood)
	require.Len(t, before.Messages, 1)

	_, err := s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSessionBusy)
	assert.ErrorIs(t, s.Clear(), ErrSessionBusy)
	assert.ErrorIs(t, s.Express(MoodCurious), ErrSessionBusy)
	assert.Equal(t, before, s.Snapshot())

	close(engine.release)
	require.NoError(t, <-done)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "gated reply", msgs[1].Content)
	assert.False(t, s.Busy())
	assert.Len(t, engine.requests(), 1)
}

func TestSession_UnknownPersonalityAppendsApology(t *testing.T) {
	s := New(realEngine())
	defer s.Close()

	s.SetPersonality("pirate")
	reply, err := s.Send(context.Background(), "Ahoy")
	require.NoError(t, err)

	assert.Equal(t, ApologyContent, reply.Content)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Empty(t, reply.Suggestions)
	assert.Empty(t, reply.Code)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, ApologyContent, msgs[1].Content)
	assert.Equal(t, MoodIdle, s.Mood())
	assert.False(t, s.Busy())
}

func TestSession_EngineErrorAppendsApology(t *testing.T) {
	s := New(instantEngine{err: errors.New("boom")})
	defer s.Close()

	reply, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, ApologyContent, reply.Content)
	assert.Equal(t, MoodIdle, s.Mood())
}

func TestSession_MoodResetsToIdle(t *testing.T) {
	s := New(realEngine(), WithMoodResetDelay(20*time.Millisecond))
	defer s.Close()

	_, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, MoodExcited, s.Mood())

	assert.Eventually(t, func() bool { return s.Mood() == MoodIdle },
		time.Second, 5*time.Millisecond)
}

func TestSession_StaleMoodTimerIgnored(t *testing.T) {
	s := New(realEngine(), WithMoodResetDelay(100*time.Millisecond))
	defer s.Close()

	_, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	require.NoError(t, s.Express(MoodCurious))

	// The first timer would have fired by now.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, MoodCurious, s.Mood())

	assert.Eventually(t, func() bool { return s.Mood() == MoodIdle },
		time.Second, 5*time.Millisecond)
}

func TestSession_Clear(t *testing.T) {
	s := New(realEngine(), WithPersonality(assistant.Educator), WithMoodResetDelay(30*time.Millisecond))
	defer s.Close()

	for _, msg := range []string{"Where do I start?", "Explain sprites", "practice ideas"} {
		_, err := s.Send(context.Background(), msg)
		require.NoError(t, err)
	}
	require.Len(t, s.Messages(), 6)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Messages())
	assert.Equal(t, MoodIdle, s.Mood())
	assert.Equal(t, assistant.Educator, s.Personality())

	// The cancelled reset timer must not fire into the cleared session.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, MoodIdle, s.Mood())

	reply, err := s.Send(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 8, reply.Seq)
}

func TestSession_Express(t *testing.T) {
	s := New(realEngine(), WithMoodResetDelay(20*time.Millisecond))
	defer s.Close()

	assert.Error(t, s.Express(MoodThinking))
	assert.Error(t, s.Express(MoodExcited))

	require.NoError(t, s.Express(MoodCelebrating))
	assert.Equal(t, MoodCelebrating, s.Mood())
	assert.Eventually(t, func() bool { return s.Mood() == MoodIdle },
		time.Second, 5*time.Millisecond)
}

func TestSession_ContextIsForwarded(t *testing.T) {
	engine := newGatedEngine()
	close(engine.release)
	s := New(engine, WithPersonality(assistant.Marketing))
	defer s.Close()

	convCtx := &assistant.Context{ProjectID: "p1", Scene: "menu", RecentActions: []string{"added sprite"}}
	s.SetContext(convCtx)
	convCtx.RecentActions[0] = "mutated"

	_, err := s.Send(context.Background(), "launch plan")
	require.NoError(t, err)

	reqs := engine.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, assistant.Marketing, reqs[0].Personality)
	assert.Equal(t, "launch plan", reqs[0].Utterance)
	require.NotNil(t, reqs[0].Context)
	assert.Equal(t, []string{"added sprite"}, reqs[0].Context.RecentActions)
}

func TestSession_Subscribe(t *testing.T) {
	s := New(realEngine())
	defer s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()

	initial := <-ch
	assert.Empty(t, initial.Messages)

	_, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)

	latest := <-ch
	assert.Len(t, latest.Messages, 2)
	assert.False(t, latest.Busy)
	assert.Equal(t, MoodExcited, latest.Mood)

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()
}

func TestSession_Close(t *testing.T) {
	s := New(realEngine())
	ch, _ := s.Subscribe()
	<-ch

	s.Close()
	s.Close()

	_, ok := <-ch
	assert.False(t, ok)

	_, err := s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.Clear(), ErrSessionClosed)

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestSession_CloseAbandonsInFlightSend(t *testing.T) {
	engine := newGatedEngine()
	s := New(engine)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "hello")
		done <- err
	}()
	<-engine.started

	s.Close()
	assert.ErrorIs(t, <-done, ErrSessionClosed)
	assert.Len(t, s.Messages(), 1)
}
