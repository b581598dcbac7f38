package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"companion/internal/assistant"
	"companion/internal/session"
)

type createSessionRequest struct {
	Personality string             `json:"personality"`
	Context     *assistant.Context `json:"context,omitempty"`
}

type sessionView struct {
	ID string `json:"id"`
	session.Snapshot
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type personalityRequest struct {
	Personality string `json:"personality"`
}

type moodRequest struct {
	Mood session.Mood `json:"mood"`
}

// lookup resolves the {id} URL parameter, writing 404 when it is unknown.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	id := chi.URLParam(r, "id")
	s, ok := h.sessions.Get(id)
	if !ok {
		Error(w, http.StatusNotFound, "session not found")
		return id, nil, false
	}
	return id, s, true
}

// parsePersonality validates a user-supplied key, writing 400 when unknown.
func (h *Handler) parsePersonality(w http.ResponseWriter, raw string) (assistant.Key, bool) {
	key := assistant.ParseKey(raw)
	if !h.registry.Has(key) {
		Error(w, http.StatusBadRequest, (&assistant.UnknownPersonalityError{Key: key}).Error())
		return "", false
	}
	return key, true
}

// sessionError maps session errors to HTTP statuses.
func sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionBusy):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrEmptyInput):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrSessionClosed):
		Error(w, http.StatusNotFound, "session not found")
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}

	var key assistant.Key
	if req.Personality != "" {
		var ok bool
		if key, ok = h.parsePersonality(w, req.Personality); !ok {
			return
		}
	}

	id, s, err := h.sessions.Create(key)
	if err != nil {
		sessionError(w, err)
		return
	}
	if req.Context != nil {
		s.SetContext(req.Context)
	}

	h.logger.Info("Session created", "session_id", id, "personality", string(s.Personality()))
	JSON(w, http.StatusCreated, sessionView{ID: id, Snapshot: s.Snapshot()})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, sessionView{ID: id, Snapshot: s.Snapshot()})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.Delete(id) {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	h.logger.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}

	reply, err := s.Send(r.Context(), req.Content)
	if err != nil {
		sessionError(w, err)
		return
	}
	JSON(w, http.StatusOK, reply)
}

func (h *Handler) clearMessages(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Clear(); err != nil {
		sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPersonality(w http.ResponseWriter, r *http.Request) {
	id, s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req personalityRequest
	if !decode(w, r, &req) {
		return
	}
	key, ok := h.parsePersonality(w, req.Personality)
	if !ok {
		return
	}

	s.SetPersonality(key)
	JSON(w, http.StatusOK, sessionView{ID: id, Snapshot: s.Snapshot()})
}

func (h *Handler) setContext(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req assistant.Context
	if !decode(w, r, &req) {
		return
	}
	s.SetContext(&req)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) expressMood(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req moodRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.Express(req.Mood); err != nil {
		if errors.Is(err, session.ErrSessionBusy) || errors.Is(err, session.ErrSessionClosed) {
			sessionError(w, err)
			return
		}
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
