package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/sync/errgroup"

	"companion/internal/session"
)

// Stream event types.
const (
	EventSnapshot = "snapshot"
	EventError    = "error"
)

// StreamEvent is one frame sent to a WebSocket client.
type StreamEvent struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ClientMessage is a frame a WebSocket client may send to chat.
type ClientMessage struct {
	Content string `json:"content"`
}

// errSessionGone ends a stream whose session was closed.
var errSessionGone = errors.New("session closed")

// streamSession pushes a snapshot after every session change and accepts
// chat messages from the client on the same connection.
func (h *Handler) streamSession(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err, "session_id", id)
		return
	}

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	h.logger.Debug("WebSocket stream opened", "session_id", id)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return h.pushSnapshots(ctx, ws, updates) })
	g.Go(func() error { return h.readMessages(ctx, ws, s) })
	err = g.Wait()

	// Fails harmlessly when pushSnapshots already closed the connection.
	if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
		h.logger.Debug("Failed to close websocket", "error", closeErr, "session_id", id)
	}
	h.logger.Debug("WebSocket stream closed", "session_id", id, "error", err)
}

func (h *Handler) pushSnapshots(ctx context.Context, ws *websocket.Conn, updates <-chan session.Snapshot) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				if err := ws.Close(websocket.StatusGoingAway, "session closed"); err != nil {
					h.logger.Debug("Failed to close websocket", "error", err)
				}
				return errSessionGone
			}
			if err := wsjson.Write(ctx, ws, StreamEvent{Type: EventSnapshot, Snapshot: &snap}); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) readMessages(ctx context.Context, ws *websocket.Conn, s *session.Session) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return context.Canceled
			}
			return err
		}

		// Replies arrive through the snapshot feed.
		if _, err := s.Send(ctx, msg.Content); err != nil {
			// pushSnapshots closes the connection once the session is gone.
			if errors.Is(err, session.ErrSessionClosed) {
				continue
			}
			if werr := wsjson.Write(ctx, ws, StreamEvent{Type: EventError, Error: err.Error()}); werr != nil {
				return werr
			}
		}
	}
}
