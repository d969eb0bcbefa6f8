package entrytypes

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/journal-entry-types", h.List)
	r.Post("/journal-entry-types", h.Create)
	r.Put("/journal-entry-types/{id}", h.Update)
	r.Delete("/journal-entry-types/{id}", h.Delete)
}
