package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/contalibre/contalibre/internal/accounting/accounts"
	"github.com/contalibre/contalibre/internal/accounting/entrytypes"
	"github.com/contalibre/contalibre/internal/accounting/journals"
	"github.com/contalibre/contalibre/internal/accounting/periods"
	"github.com/contalibre/contalibre/internal/accounting/reports"
	accshared "github.com/contalibre/contalibre/internal/accounting/shared"
	"github.com/contalibre/contalibre/internal/observability"
	"github.com/contalibre/contalibre/internal/platform/httpx"
	"github.com/contalibre/contalibre/internal/shared"
)

// IntegrityEnqueuer submits an on-demand ledger integrity scan to the
// job queue.
type IntegrityEnqueuer interface {
	EnqueueLedgerIntegrity(ctx context.Context) (string, error)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Metrics           *observability.Metrics
	Integrity         IntegrityEnqueuer
	AccountsHandler   *accounts.Handler
	PeriodsHandler    *periods.Handler
	EntryTypesHandler *entrytypes.Handler
	JournalsHandler   *journals.Handler
	ReportsHandler    *reports.Handler
}

// NewRouter constructs the chi.Router with contalibre defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(ActorMiddleware(params.Logger))
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(api)
		}
		if params.PeriodsHandler != nil {
			params.PeriodsHandler.MountRoutes(api)
		}
		if params.EntryTypesHandler != nil {
			params.EntryTypesHandler.MountRoutes(api)
		}
		if params.JournalsHandler != nil {
			params.JournalsHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
		if params.Integrity != nil {
			api.Post("/admin/ledger-integrity", integrityHandler(params.Logger, params.Integrity))
		}
	})

	return r
}

// integrityHandler queues a ledger integrity scan for the worker.
// Restricted to privileged roles, same as void authorization.
func integrityHandler(logger *slog.Logger, enqueuer IntegrityEnqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := shared.ActorFromContext(r.Context())
		if !actor.Privileged() {
			httpx.RespondError(w, fmt.Errorf("%w: integrity scan requires an admin role", accshared.ErrForbidden))
			return
		}
		taskID, err := enqueuer.EnqueueLedgerIntegrity(r.Context())
		if err != nil {
			logger.Error("enqueue integrity scan", slog.Any("error", err))
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not enqueue the integrity scan")
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
	}
}
