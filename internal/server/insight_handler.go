package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"StockLens/internal/insight"
)

// InsightHandler exposes the insight requester.
type InsightHandler struct {
	requester *insight.Requester
}

func (h *InsightHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Get)
	r.Post("/regenerate", h.Regenerate)
	return r
}

// Get handles GET /api/insights.
func (h *InsightHandler) Get(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.requester.Current())
}

// Regenerate handles POST /api/insights/regenerate. Failures come back as
// fallback text with status 200.
func (h *InsightHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.requester.Regenerate(r.Context()))
}
