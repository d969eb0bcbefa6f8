package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contalibre/contalibre/internal/platform/httpx"
	"github.com/contalibre/contalibre/internal/shared"
)

// Handler serves the report endpoints. JSON responses come from the
// redis read-through cache; CSV exports are computed fresh.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *Cache
}

func NewHandler(logger *slog.Logger, service *Service, cache *Cache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache}
}

const dateLayout = "2006-01-02"

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	asOf, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	h.cached(w, r, Key(actor.CompanyID, "trial-balance", asOf.Format(dateLayout)), func(ctx context.Context) (any, error) {
		return h.service.TrialBalance(ctx, actor.CompanyID, asOf)
	})
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	asOf, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	h.cached(w, r, Key(actor.CompanyID, "balance-sheet", asOf.Format(dateLayout)), func(ctx context.Context) (any, error) {
		return h.service.BalanceSheet(ctx, actor.CompanyID, asOf)
	})
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}
	h.cached(w, r, Key(actor.CompanyID, "income-statement", from.Format(dateLayout), to.Format(dateLayout)), func(ctx context.Context) (any, error) {
		return h.service.IncomeStatement(ctx, actor.CompanyID, from, to)
	})
}

func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}
	h.cached(w, r, Key(actor.CompanyID, "general-ledger", from.Format(dateLayout), to.Format(dateLayout)), func(ctx context.Context) (any, error) {
		return h.service.GeneralLedger(ctx, actor.CompanyID, from, to)
	})
}

func (h *Handler) AccountLedger(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account_id")
		return
	}
	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}
	key := Key(actor.CompanyID, "account-ledger", strconv.FormatInt(accountID, 10),
		from.Format(dateLayout), to.Format(dateLayout))
	h.cached(w, r, key, func(ctx context.Context) (any, error) {
		return h.service.AccountLedger(ctx, actor.CompanyID, accountID, from, to)
	})
}

// Export streams the named report as CSV.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if format := r.URL.Query().Get("format"); format != "" && format != "csv" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unsupported export format")
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())
	report := chi.URLParam(r, "report")

	var err error
	writeCSV := func(filename string, write func() error) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := write(); err != nil {
			h.logger.Error("csv export", slog.String("report", report), slog.Any("error", err))
		}
	}

	switch report {
	case "trial-balance":
		asOf, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		var tb TrialBalance
		if tb, err = h.service.TrialBalance(r.Context(), actor.CompanyID, asOf); err == nil {
			writeCSV("trial-balance.csv", func() error { return WriteTrialBalanceCSV(w, tb) })
		}
	case "balance-sheet":
		asOf, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		var bs BalanceSheet
		if bs, err = h.service.BalanceSheet(r.Context(), actor.CompanyID, asOf); err == nil {
			writeCSV("balance-sheet.csv", func() error { return WriteBalanceSheetCSV(w, bs) })
		}
	case "income-statement":
		from, to, ok := rangeParams(w, r)
		if !ok {
			return
		}
		var is IncomeStatement
		if is, err = h.service.IncomeStatement(r.Context(), actor.CompanyID, from, to); err == nil {
			writeCSV("income-statement.csv", func() error { return WriteIncomeStatementCSV(w, is) })
		}
	case "general-ledger":
		from, to, ok := rangeParams(w, r)
		if !ok {
			return
		}
		var gl GeneralLedger
		if gl, err = h.service.GeneralLedger(r.Context(), actor.CompanyID, from, to); err == nil {
			writeCSV("general-ledger.csv", func() error { return WriteGeneralLedgerCSV(w, gl) })
		}
	case "account-ledger":
		accountID, perr := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
		if perr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid account_id")
			return
		}
		from, to, ok := rangeParams(w, r)
		if !ok {
			return
		}
		var al AccountLedger
		if al, err = h.service.AccountLedger(r.Context(), actor.CompanyID, accountID, from, to); err == nil {
			writeCSV("account-ledger.csv", func() error { return WriteAccountLedgerCSV(w, al) })
		}
	default:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown report")
		return
	}
	if err != nil {
		httpx.RespondError(w, err)
	}
}

func (h *Handler) cached(w http.ResponseWriter, r *http.Request, key string, compute func(ctx context.Context) (any, error)) {
	payload, err := h.cache.Payload(r.Context(), key, compute)
	if err != nil {
		h.logger.Error("build report", slog.String("key", key), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// dateParam parses a query date, defaulting to today when absent.
func dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name)
		return time.Time{}, false
	}
	return t, true
}

// rangeParams parses from/to, defaulting to the current month.
func rangeParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	rawFrom, rawTo := q.Get("from"), q.Get("to")
	if rawFrom == "" && rawTo == "" {
		now := time.Now().UTC()
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1), true
	}
	from, err := time.Parse(dateLayout, rawFrom)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(dateLayout, rawTo)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to")
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
