package session

import (
	"time"

	"companion/internal/assistant"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Mood is the presentation state shown alongside the conversation.
type Mood string

const (
	MoodIdle        Mood = "idle"
	MoodThinking    Mood = "thinking"
	MoodExcited     Mood = "excited"
	MoodCelebrating Mood = "celebrating"
	MoodCurious     Mood = "curious"
)

// Message is one entry in a conversation. Messages are never modified after
// they are appended.
type Message struct {
	ID          string        `json:"id"`
	Seq         int           `json:"seq"`
	Role        Role          `json:"role"`
	Content     string        `json:"content"`
	Personality assistant.Key `json:"personality"`
	CreatedAt   time.Time     `json:"created_at"`
	Suggestions []string      `json:"suggestions,omitempty"`
	Code        string        `json:"code,omitempty"`
}

// Snapshot is a point-in-time copy of a session's observable state.
type Snapshot struct {
	Messages    []Message     `json:"messages"`
	Personality assistant.Key `json:"personality"`
	Mood        Mood          `json:"mood"`
	Busy        bool          `json:"busy"`
}

func cloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		m.Suggestions = append([]string(nil), m.Suggestions...)
		out[i] = m
	}
	return out
}
