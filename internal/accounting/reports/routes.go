package reports

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.TrialBalance)
	r.Get("/reports/balance-sheet", h.BalanceSheet)
	r.Get("/reports/income-statement", h.IncomeStatement)
	r.Get("/reports/general-ledger", h.GeneralLedger)
	r.Get("/reports/account-ledger", h.AccountLedger)
	r.Get("/reports/{report}/export", h.Export)
}
