package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Repository encapsulates DB operations for accounting periods.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Period, error)
	Get(ctx context.Context, companyID, id int64) (Period, error)
	Insert(ctx context.Context, p Period) (Period, error)
	InsertYear(ctx context.Context, periods []Period) error
	SetClosed(ctx context.Context, companyID, id int64, closed bool, closedBy int64, at time.Time) error
	Delete(ctx context.Context, companyID, id int64) error
	ExistsForYear(ctx context.Context, companyID int64, year int) (bool, error)
	Overlaps(ctx context.Context, companyID int64, start, end time.Time) (bool, error)
	HasEntriesInRange(ctx context.Context, companyID int64, start, end time.Time) (bool, error)
	ClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error)
	PeriodForDate(ctx context.Context, companyID int64, date time.Time) (Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, company_id, fiscal_year, period_number, period_type, period_name, start_date, end_date, is_closed, closed_at, closed_by, created_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.CompanyID, &p.FiscalYear, &p.PeriodNumber, &p.PeriodType, &p.PeriodName, &p.StartDate, &p.EndDate, &p.IsClosed, &p.ClosedAt, &p.ClosedBy, &p.CreatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE company_id=$1 ORDER BY fiscal_year DESC, period_number DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) Insert(ctx context.Context, p Period) (Period, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounting_periods
(company_id, fiscal_year, period_number, period_type, period_name, start_date, end_date, is_closed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at`,
		p.CompanyID, p.FiscalYear, p.PeriodNumber, p.PeriodType, p.PeriodName, p.StartDate, p.EndDate, p.IsClosed)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *repository) InsertYear(ctx context.Context, periods []Period) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for _, p := range periods {
		if _, err := tx.Exec(ctx, `INSERT INTO accounting_periods
(company_id, fiscal_year, period_number, period_type, period_name, start_date, end_date, is_closed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.CompanyID, p.FiscalYear, p.PeriodNumber, p.PeriodType, p.PeriodName, p.StartDate, p.EndDate, p.IsClosed); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repository) SetClosed(ctx context.Context, companyID, id int64, closed bool, closedBy int64, at time.Time) error {
	if closed {
		cmd, err := r.db.Exec(ctx, `UPDATE accounting_periods SET is_closed=TRUE, closed_at=$3, closed_by=$4
WHERE company_id=$1 AND id=$2`, companyID, id, at, closedBy)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return shared.ErrPeriodNotFound
		}
		return nil
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounting_periods SET is_closed=FALSE, closed_at=NULL, closed_by=NULL
WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounting_periods WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

func (r *repository) ExistsForYear(ctx context.Context, companyID int64, year int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounting_periods WHERE company_id=$1 AND fiscal_year=$2)`, companyID, year).Scan(&exists)
	return exists, err
}

func (r *repository) Overlaps(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounting_periods
WHERE company_id=$1 AND start_date <= $3 AND end_date >= $2)`, companyID, start, end).Scan(&exists)
	return exists, err
}

func (r *repository) HasEntriesInRange(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries
WHERE company_id=$1 AND entry_date BETWEEN $2 AND $3)`, companyID, start, end).Scan(&exists)
	return exists, err
}

func (r *repository) ClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounting_periods
WHERE company_id=$1 AND is_closed AND $2 BETWEEN start_date AND end_date)`, companyID, date).Scan(&exists)
	return exists, err
}

func (r *repository) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE company_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY period_type = 'month' DESC, start_date LIMIT 1`, companyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}
