// Package api exposes sessions, personalities and the template catalog over
// HTTP and WebSocket.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"companion/internal/assistant"
	"companion/internal/catalog"
	"companion/internal/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the companion API.
type Handler struct {
	sessions       *session.Manager
	registry       *assistant.Registry
	catalog        *catalog.Catalog
	logger         *slog.Logger
	originPatterns []string
}

// NewHandler creates a Handler over its collaborators.
func NewHandler(sessions *session.Manager, registry *assistant.Registry, cat *catalog.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions:       sessions,
		registry:       registry,
		catalog:        cat,
		logger:         logger,
		originPatterns: []string{"*"},
	}
}

// WithOriginPatterns restricts WebSocket origins.
func (h *Handler) WithOriginPatterns(patterns ...string) *Handler {
	h.originPatterns = patterns
	return h
}

// Router builds the chi router with global middleware and all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personalities", h.listPersonalities)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)
			r.Post("/messages", h.sendMessage)
			r.Delete("/messages", h.clearMessages)
			r.Put("/personality", h.setPersonality)
			r.Put("/context", h.setContext)
			r.Post("/mood", h.expressMood)
			r.Get("/ws", h.streamSession)
		})
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.listTemplates)
		r.Get("/{id}", h.getTemplate)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

type personalityView struct {
	Key   assistant.Key `json:"key"`
	Label string        `json:"label"`
}

func (h *Handler) listPersonalities(w http.ResponseWriter, r *http.Request) {
	out := make([]personalityView, 0, len(h.registry.Keys()))
	for _, key := range h.registry.Keys() {
		p, err := h.registry.Profile(key)
		if err != nil {
			continue
		}
		out = append(out, personalityView{Key: p.Key, Label: p.Label})
	}
	JSON(w, http.StatusOK, out)
}
