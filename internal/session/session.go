// Package session holds per-conversation state: ordered history, the
// selected personality, and the busy and mood indicators.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"companion/internal/assistant"
	"companion/pkg/schema"
)

// Processor answers a single request. *assistant.Engine satisfies it.
type Processor interface {
	Process(ctx context.Context, req assistant.Request) (assistant.Response, error)
}

var (
	// ErrSessionBusy is returned when a send is already in flight.
	ErrSessionBusy = errors.New("session is busy")
	// ErrEmptyInput is returned for blank message content.
	ErrEmptyInput = errors.New("message content is empty")
	// ErrSessionClosed is returned once the session has been closed.
	ErrSessionClosed = errors.New("session is closed")
)

// ApologyContent is appended in place of an answer when the engine fails.
const ApologyContent = "Sorry, I ran into a problem answering that. Please pick a different assistant and try again."

// DefaultMoodResetDelay is how long a transient mood lasts before returning
// to idle.
const DefaultMoodResetDelay = 3 * time.Second

// Session is a single conversation. All methods are safe for concurrent use;
// at most one Send runs at a time and overlapping sends are rejected.
type Session struct {
	engine         Processor
	moodResetDelay time.Duration
	logger         *slog.Logger

	// lifetime is cancelled by Close and abandons in-flight engine calls.
	lifetime context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	messages    []Message
	nextSeq     int
	personality assistant.Key
	convCtx     *assistant.Context
	mood        Mood
	busy        bool
	closed      bool
	moodTimer   *time.Timer
	moodGen     uint64
	subscribers map[int]chan Snapshot
	nextSub     int
}

// Option configures a Session.
type Option func(*Session)

// WithPersonality sets the initial personality.
func WithPersonality(key assistant.Key) Option {
	return func(s *Session) { s.personality = key }
}

// WithMoodResetDelay overrides DefaultMoodResetDelay.
func WithMoodResetDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.moodResetDelay = d
		}
	}
}

// WithLogger routes session logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an idle session with empty history.
func New(engine Processor, opts ...Option) *Session {
	s := &Session{
		engine:         engine,
		moodResetDelay: DefaultMoodResetDelay,
		logger:         slog.Default(),
		nextSeq:        1,
		personality:    assistant.Technical,
		mood:           MoodIdle,
		subscribers:    make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lifetime, s.cancel = context.WithCancel(context.Background())
	return s
}

// Send appends content as a user message, asks the engine for an answer and
// appends the assistant message. Blank content, a send already in flight and
// a closed session are rejected before any state changes. Engine errors are
// not returned: they produce an apology message instead.
func (s *Session) Send(ctx context.Context, content string) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyInput
	}

	userID, err := schema.NewMessageID()
	if err != nil {
		return Message{}, fmt.Errorf("generate message id: %w", err)
	}
	replyID, err := schema.NewMessageID()
	if err != nil {
		return Message{}, fmt.Errorf("generate message id: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Message{}, ErrSessionClosed
	}
	if s.busy {
		s.mu.Unlock()
		return Message{}, ErrSessionBusy
	}
	s.busy = true
	s.stopMoodTimerLocked()
	s.mood = MoodThinking
	personality := s.personality
	req := assistant.Request{
		Utterance:   content,
		Personality: personality,
		Context:     cloneContext(s.convCtx),
	}
	s.appendLocked(Message{
		ID:          userID,
		Role:        RoleUser,
		Content:     content,
		Personality: personality,
	})
	s.publishLocked()
	s.mu.Unlock()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	unregister := context.AfterFunc(s.lifetime, stop)
	defer unregister()

	start := time.Now()
	resp, engineErr := s.engine.Process(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.busy = false
		return Message{}, ErrSessionClosed
	}

	reply := Message{
		ID:          replyID,
		Role:        RoleAssistant,
		Personality: personality,
	}
	if engineErr != nil {
		s.logger.Error("Engine failed, appending apology",
			"personality", string(personality),
			"error", engineErr.Error(),
		)
		reply.Content = ApologyContent
		s.mood = MoodIdle
	} else {
		reply.Content = resp.Content
		reply.Suggestions = append([]string(nil), resp.Suggestions...)
		reply.Code = resp.Code
		s.setTransientMoodLocked(MoodExcited)
		s.logger.Debug("Assistant replied",
			"personality", string(personality),
			"source", string(resp.Source),
			"duration", time.Since(start),
		)
	}
	reply = s.appendLocked(reply)
	s.busy = false
	s.publishLocked()

	return reply, nil
}

// Clear empties the history and resets the mood to idle. The personality is
// kept. It is rejected while a send is in flight.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.busy {
		return ErrSessionBusy
	}
	s.stopMoodTimerLocked()
	s.messages = nil
	s.mood = MoodIdle
	s.publishLocked()
	return nil
}

// SetPersonality selects the personality for subsequent sends. The key is
// not validated here; an unknown key yields an apology on the next send.
func (s *Session) SetPersonality(key assistant.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.personality == key {
		return
	}
	s.personality = key
	s.publishLocked()
}

// SetContext replaces the conversational context sent with each request.
// A nil context clears it.
func (s *Session) SetContext(c *assistant.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convCtx = cloneContext(c)
}

// Express shows a transient mood that returns to idle after the reset delay.
// Only celebrating and curious are accepted.
func (s *Session) Express(mood Mood) error {
	if mood != MoodCelebrating && mood != MoodCurious {
		return fmt.Errorf("mood %q cannot be expressed", mood)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.busy {
		return ErrSessionBusy
	}
	s.setTransientMoodLocked(mood)
	s.publishLocked()
	return nil
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Messages returns a copy of the history in display order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.messages)
}

// Mood returns the current mood.
func (s *Session) Mood() Mood {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mood
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Personality returns the selected personality.
func (s *Session) Personality() assistant.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.personality
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow readers only see the latest snapshot. The channel is closed
// by the returned cancel function or by Close.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch
	ch <- s.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close stops pending timers, abandons an in-flight send and closes all
// subscriptions. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.stopMoodTimerLocked()
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

func (s *Session) appendLocked(m Message) Message {
	m.Seq = s.nextSeq
	s.nextSeq++
	m.CreatedAt = time.Now()
	s.messages = append(s.messages, m)
	return m
}

// setTransientMoodLocked sets mood and schedules the return to idle. A
// callback from an earlier generation does nothing.
func (s *Session) setTransientMoodLocked(mood Mood) {
	s.stopMoodTimerLocked()
	s.mood = mood
	gen := s.moodGen
	s.moodTimer = time.AfterFunc(s.moodResetDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.moodGen != gen {
			return
		}
		s.moodTimer = nil
		s.mood = MoodIdle
		s.publishLocked()
	})
}

func (s *Session) stopMoodTimerLocked() {
	s.moodGen++
	if s.moodTimer != nil {
		s.moodTimer.Stop()
		s.moodTimer = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Messages:    cloneMessages(s.messages),
		Personality: s.personality,
		Mood:        s.mood,
		Busy:        s.busy,
	}
}

// publishLocked hands the current snapshot to every subscriber, replacing
// any snapshot the subscriber has not read yet.
func (s *Session) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func cloneContext(c *assistant.Context) *assistant.Context {
	if c == nil {
		return nil
	}
	out := *c
	out.RecentActions = append([]string(nil), c.RecentActions...)
	return &out
}
