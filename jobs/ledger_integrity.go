package jobs

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// RunLedgerIntegrityScan looks for active entries whose line sums have
// drifted out of balance beyond the tolerance. Posting enforces the
// invariant, so any hit means direct data manipulation or a bug, and
// gets logged at error level for follow-up.
func RunLedgerIntegrityScan(ctx context.Context, logger *slog.Logger, db *pgxpool.Pool) error {
	rows, err := db.Query(ctx, `SELECT e.id, e.company_id, e.sequence_number,
COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM journal_entries e
LEFT JOIN journal_entry_lines l ON l.journal_entry_id = e.id
WHERE e.status IN ('POSTED','PENDING_VOID')
GROUP BY e.id, e.company_id, e.sequence_number
HAVING ABS(COALESCE(SUM(l.debit),0) - COALESCE(SUM(l.credit),0)) > $1`, shared.BalanceEpsilon)
	if err != nil {
		return err
	}
	defer rows.Close()

	drifted := 0
	for rows.Next() {
		var (
			entryID, companyID int64
			sequence           *int64
			debit, credit      float64
		)
		if err := rows.Scan(&entryID, &companyID, &sequence, &debit, &credit); err != nil {
			return err
		}
		drifted++
		logger.Error("ledger integrity violation",
			slog.Int64("entry_id", entryID),
			slog.Int64("company_id", companyID),
			slog.Any("sequence_number", sequence),
			slog.Float64("debit", debit),
			slog.Float64("credit", credit))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	logger.Info("ledger integrity scan finished", slog.Int("violations", drifted))
	return nil
}
