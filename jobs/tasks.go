// Package jobs holds the background workloads: the ledger integrity
// scan and the report cache warmup, both scheduled through asynq.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/reports"
)

const (
	// QueueDefault is the queue every accounting job runs on.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans posted entries for drifted line sums.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup precomputes the current-month trial balance.
	TaskReportsWarmup = "reports:warmup"
)

// Deps collects what the task handlers need.
type Deps struct {
	Logger  *slog.Logger
	DB      *pgxpool.Pool
	Reports *reports.Service
	Cache   *reports.Cache
}

// NewLedgerIntegrityTask constructs the integrity scan task. The scan
// has no parameters; it always covers the whole active ledger.
func NewLedgerIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerIntegrity, nil)
}

// NewReportsWarmupTask constructs the warmup task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}

// HandleLedgerIntegrity runs the scan.
func (d Deps) HandleLedgerIntegrity(ctx context.Context, t *asynq.Task) error {
	return RunLedgerIntegrityScan(ctx, d.Logger, d.DB)
}

// HandleReportsWarmup runs the warmup.
func (d Deps) HandleReportsWarmup(ctx context.Context, t *asynq.Task) error {
	return RunReportsWarmup(ctx, d.Logger, d.Reports, d.Cache)
}
