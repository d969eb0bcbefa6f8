package periods

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounting-periods", h.List)
	r.Post("/accounting-periods", h.Create)
	r.Post("/accounting-periods/generate-year", h.GenerateYear)
	r.Get("/accounting-periods/{id}", h.Show)
	r.Post("/accounting-periods/{id}/close", h.Close)
	r.Post("/accounting-periods/{id}/reopen", h.Reopen)
	r.Delete("/accounting-periods/{id}", h.Delete)
}
