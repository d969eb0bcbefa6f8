package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Repository runs the aggregation queries. All of them filter on the
// active ledger statuses.
type Repository interface {
	TotalsAsOf(ctx context.Context, companyID int64, asOf time.Time) ([]AccountTotal, error)
	TotalsBetween(ctx context.Context, companyID int64, from, to time.Time) ([]AccountTotal, error)
	LedgerLines(ctx context.Context, companyID int64, from, to time.Time) ([]LedgerLine, error)
	AccountLedgerLines(ctx context.Context, companyID, accountID int64, from, to time.Time) ([]LedgerLine, error)
	AccountInfo(ctx context.Context, companyID, accountID int64) (code, name string, err error)
	ActiveCompanyIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const activeStatuses = `('POSTED','PENDING_VOID')`

func (r *repository) TotalsAsOf(ctx context.Context, companyID int64, asOf time.Time) ([]AccountTotal, error) {
	return r.totals(ctx, `e.entry_date <= $2`, companyID, asOf)
}

func (r *repository) TotalsBetween(ctx context.Context, companyID int64, from, to time.Time) ([]AccountTotal, error) {
	return r.totals(ctx, `e.entry_date BETWEEN $2 AND $3`, companyID, from, to)
}

func (r *repository) totals(ctx context.Context, dateCond string, args ...any) ([]AccountTotal, error) {
	query := `SELECT a.id, a.code, a.name, t.nature, t.code, t.affects_balance, t.affects_results,
COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.journal_entry_id
JOIN accounts a ON a.id = l.account_id
JOIN account_types t ON t.id = a.account_type_id
WHERE e.company_id=$1 AND e.status IN ` + activeStatuses + ` AND ` + dateCond + `
GROUP BY a.id, a.code, a.name, t.nature, t.code, t.affects_balance, t.affects_results
HAVING COALESCE(SUM(l.debit),0) <> 0 OR COALESCE(SUM(l.credit),0) <> 0
ORDER BY a.code`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var totals []AccountTotal
	for rows.Next() {
		var t AccountTotal
		if err := rows.Scan(&t.AccountID, &t.Code, &t.Name, &t.Nature, &t.TypeCode,
			&t.AffectsBalance, &t.AffectsResults, &t.Debit, &t.Credit); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

const ledgerLineColumns = `e.id, e.entry_date, e.sequence_number, e.entry_type, l.description,
a.id, a.code, a.name, l.debit, l.credit`

func scanLedgerLines(rows pgx.Rows) ([]LedgerLine, error) {
	defer rows.Close()
	var lines []LedgerLine
	for rows.Next() {
		var l LedgerLine
		if err := rows.Scan(&l.EntryID, &l.EntryDate, &l.SequenceNumber, &l.EntryType, &l.Description,
			&l.AccountID, &l.AccountCode, &l.AccountName, &l.Debit, &l.Credit); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) LedgerLines(ctx context.Context, companyID int64, from, to time.Time) ([]LedgerLine, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ledgerLineColumns+`
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.journal_entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.company_id=$1 AND e.status IN `+activeStatuses+` AND e.entry_date BETWEEN $2 AND $3
ORDER BY e.entry_date, e.sequence_number, l.line_number`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	return scanLedgerLines(rows)
}

func (r *repository) AccountLedgerLines(ctx context.Context, companyID, accountID int64, from, to time.Time) ([]LedgerLine, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ledgerLineColumns+`
FROM journal_entry_lines l
JOIN journal_entries e ON e.id = l.journal_entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.company_id=$1 AND l.account_id=$2 AND e.status IN `+activeStatuses+` AND e.entry_date BETWEEN $3 AND $4
ORDER BY e.entry_date, e.sequence_number, l.line_number`, companyID, accountID, from, to)
	if err != nil {
		return nil, err
	}
	return scanLedgerLines(rows)
}

func (r *repository) AccountInfo(ctx context.Context, companyID, accountID int64) (string, string, error) {
	var code, name string
	err := r.db.QueryRow(ctx, `SELECT code, name FROM accounts WHERE company_id=$1 AND id=$2`,
		companyID, accountID).Scan(&code, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", shared.ErrAccountNotFound
		}
		return "", "", err
	}
	return code, name, nil
}

func (r *repository) ActiveCompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT company_id FROM journal_entries WHERE status IN `+activeStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
