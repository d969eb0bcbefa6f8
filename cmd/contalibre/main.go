package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/contalibre/contalibre/internal/accounting/accounts"
	"github.com/contalibre/contalibre/internal/accounting/entrytypes"
	"github.com/contalibre/contalibre/internal/accounting/journals"
	"github.com/contalibre/contalibre/internal/accounting/periods"
	"github.com/contalibre/contalibre/internal/accounting/reports"
	"github.com/contalibre/contalibre/internal/app"
	"github.com/contalibre/contalibre/internal/observability"
	"github.com/contalibre/contalibre/internal/platform/cache"
	"github.com/contalibre/contalibre/internal/platform/db"
	"github.com/contalibre/contalibre/internal/shared"
	"github.com/contalibre/contalibre/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		// Reports degrade to uncached; everything else works without redis.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	periodsService := periods.NewService(periods.NewRepository(pool), auditLogger)
	entryTypesService := entrytypes.NewService(entrytypes.NewRepository(pool))
	reportsService := reports.NewService(reports.NewRepository(pool))
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	journalsService := journals.NewService(journals.ServiceParams{
		Repo:              journals.NewRepository(pool),
		Accounts:          accountsService,
		Periods:           periodsService,
		EntryTypes:        entryTypesService,
		Audit:             auditLogger,
		Metrics:           metrics,
		ReportCache:       reportsCache,
		VoidReasonMinimum: cfg.VoidReasonMinLength,
	})

	// The on-demand integrity scan needs the queue, so the route only
	// exists when redis is up.
	var integrity app.IntegrityEnqueuer
	if redisClient != nil {
		jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}()
		integrity = jobsClient
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Metrics:           metrics,
		Integrity:         integrity,
		AccountsHandler:   accounts.NewHandler(logger, accountsService),
		PeriodsHandler:    periods.NewHandler(logger, periodsService),
		EntryTypesHandler: entrytypes.NewHandler(logger, entryTypesService),
		JournalsHandler:   journals.NewHandler(logger, journalsService),
		ReportsHandler:    reports.NewHandler(logger, reportsService, reportsCache),
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
