package journals

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/journal-entries", h.List)
	r.Post("/journal-entries", h.Create)
	r.Get("/journal-entries/pending-voids", h.PendingVoids)
	r.Get("/journal-entries/{id}", h.Show)
	r.Put("/journal-entries/{id}", h.Update)
	r.Delete("/journal-entries/{id}", h.Delete)
	r.Post("/journal-entries/{id}/post", h.Post)
	r.Post("/journal-entries/{id}/request-void", h.RequestVoid)
	r.Post("/journal-entries/{id}/authorize-void", h.AuthorizeVoid)
}
