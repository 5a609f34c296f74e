package leads

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountAPI registers the JSON routes under /leads.
func (h *Handler) MountAPI(r chi.Router) {
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Put("/{id}/assign", h.assign)
	})
}

// MountPages registers the data table.
func (h *Handler) MountPages(r chi.Router) {
	r.Method(http.MethodGet, "/leads", h.table)
}
