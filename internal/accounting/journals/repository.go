package journals

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
	"github.com/contalibre/contalibre/internal/platform/db"
)

// Repository encapsulates DB operations for journal entries. Mutations
// run inside WithTx so posting can lock the entry and the sequence
// counters in a single transaction.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (JournalEntry, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, error)
	ListPendingVoids(ctx context.Context, companyID int64) ([]JournalEntry, error)
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository is the transactional slice of the repository.
type TxRepository interface {
	GetForUpdate(ctx context.Context, companyID, id int64) (JournalEntry, error)
	Insert(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	Update(ctx context.Context, entry JournalEntry) error
	ReplaceLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error
	Delete(ctx context.Context, companyID, id int64) error
	// NextSequence locks the counter row for the scope and returns the
	// assigned number. The row lock serializes concurrent posters.
	NextSequence(ctx context.Context, companyID int64, scope string) (int64, error)
}

// SequenceScopeCompany is the scope of the company-wide entry sequence.
// Per-type numbers use "TYPE:<code>".
const SequenceScopeCompany = "JE"

func TypeSequenceScope(code string) string { return "TYPE:" + code }

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const entryColumns = `id, company_id, reference, entry_date, entry_type, description, status,
entry_number, sequence_number, type_number, created_by, posted_at,
void_reason, void_requested_by, void_requested_at, void_authorized_by, void_authorized_at,
created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.Reference, &e.EntryDate, &e.EntryType, &e.Description, &e.Status,
		&e.EntryNumber, &e.SequenceNumber, &e.TypeNumber, &e.CreatedBy, &e.PostedAt,
		&e.VoidReason, &e.VoidRequestedBy, &e.VoidRequestedAt, &e.VoidAuthorizedBy, &e.VoidAuthorizedAt,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

const lineColumns = `id, journal_entry_id, line_number, account_id, description, debit, credit`

func loadLines(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, entryID int64) ([]JournalEntryLine, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_entry_lines
WHERE journal_entry_id=$1 ORDER BY line_number`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalEntryLine
	for rows.Next() {
		var l JournalEntryLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.LineNumber, &l.AccountID, &l.Description, &l.Debit, &l.Credit); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	e.Lines, err = loadLines(ctx, r.db, e.ID)
	return e, err
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE company_id=$1`
	args := []any{companyID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status=$2`
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += ` AND entry_date >= $` + strconv.Itoa(len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += ` AND entry_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY entry_date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines, err = loadLines(ctx, r.db, entries[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *repository) ListPendingVoids(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	return r.List(ctx, companyID, ListFilter{Status: StatusPendingVoid})
}

func (r *repository) WithTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	e, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	e.Lines, err = loadLines(ctx, r.tx, e.ID)
	return e, err
}

func (r *txRepository) Insert(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries
(company_id, reference, entry_date, entry_type, description, status, entry_number, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		entry.CompanyID, entry.Reference, entry.EntryDate, entry.EntryType, entry.Description,
		entry.Status, entry.EntryNumber, entry.CreatedBy)
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, err
	}
	if err := r.ReplaceLines(ctx, entry.ID, entry.Lines); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) Update(ctx context.Context, entry JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET
entry_date=$3, entry_type=$4, description=$5, status=$6, entry_number=$7,
sequence_number=$8, type_number=$9, posted_at=$10,
void_reason=$11, void_requested_by=$12, void_requested_at=$13,
void_authorized_by=$14, void_authorized_at=$15, updated_at=NOW()
WHERE company_id=$1 AND id=$2`,
		entry.CompanyID, entry.ID, entry.EntryDate, entry.EntryType, entry.Description,
		entry.Status, entry.EntryNumber, entry.SequenceNumber, entry.TypeNumber, entry.PostedAt,
		entry.VoidReason, entry.VoidRequestedBy, entry.VoidRequestedAt,
		entry.VoidAuthorizedBy, entry.VoidAuthorizedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) ReplaceLines(ctx context.Context, entryID int64, lines []JournalEntryLine) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id=$1`, entryID); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines
(journal_entry_id, line_number, account_id, description, debit, credit)
VALUES ($1,$2,$3,$4,$5,$6)`,
			entryID, l.LineNumber, l.AccountID, l.Description, l.Debit, l.Credit); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines
WHERE journal_entry_id IN (SELECT id FROM journal_entries WHERE company_id=$1 AND id=$2)`, companyID, id); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) NextSequence(ctx context.Context, companyID int64, scope string) (int64, error) {
	if _, err := r.tx.Exec(ctx, `INSERT INTO journal_sequences (company_id, scope, next_number)
VALUES ($1,$2,1) ON CONFLICT (company_id, scope) DO NOTHING`, companyID, scope); err != nil {
		return 0, err
	}
	var n int64
	if err := r.tx.QueryRow(ctx, `SELECT next_number FROM journal_sequences
WHERE company_id=$1 AND scope=$2 FOR UPDATE`, companyID, scope).Scan(&n); err != nil {
		return 0, err
	}
	if _, err := r.tx.Exec(ctx, `UPDATE journal_sequences SET next_number=next_number+1
WHERE company_id=$1 AND scope=$2`, companyID, scope); err != nil {
		return 0, err
	}
	return n, nil
}
