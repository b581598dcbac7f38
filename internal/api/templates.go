package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"companion/internal/catalog"
	"companion/pkg/schema"
)

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	templates := h.catalog.Find(catalog.Query{
		Category:   strings.TrimSpace(q.Get("category")),
		Engine:     schema.Engine(strings.ToLower(strings.TrimSpace(q.Get("engine")))),
		Difficulty: schema.Difficulty(strings.ToLower(strings.TrimSpace(q.Get("difficulty")))),
	})
	JSON(w, http.StatusOK, templates)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := h.catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		Error(w, http.StatusNotFound, "template not found")
		return
	}
	JSON(w, http.StatusOK, t)
}
