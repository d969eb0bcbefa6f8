package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/contalibre/contalibre/internal/accounting/reports"
)

// RunReportsWarmup precomputes the current-month trial balance for
// every company with an active ledger, so the first dashboard hit of
// the day lands on a warm cache.
func RunReportsWarmup(ctx context.Context, logger *slog.Logger, svc *reports.Service, cache *reports.Cache) error {
	companies, err := svc.ActiveCompanyIDs(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	asOf := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, companyID := range companies {
		key := reports.Key(companyID, "trial-balance", asOf.Format("2006-01-02"))
		_, err := cache.Payload(ctx, key, func(ctx context.Context) (any, error) {
			return svc.TrialBalance(ctx, companyID, asOf)
		})
		if err != nil {
			logger.Warn("trial balance warmup",
				slog.Int64("company_id", companyID), slog.Any("error", err))
		}
	}
	logger.Info("report warmup finished", slog.Int("companies", len(companies)))
	return nil
}
