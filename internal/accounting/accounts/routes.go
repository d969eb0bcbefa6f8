package accounts

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.Tree)
	r.Post("/accounts", h.Create)
	r.Get("/accounts/{id}", h.Show)
	r.Put("/accounts/{id}", h.Update)
	r.Delete("/accounts/{id}", h.Delete)
	r.Get("/account-types", h.ListTypes)
	r.Post("/account-types", h.CreateType)
}
