package entrytypes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Repository encapsulates DB operations for the entry type catalog.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]EntryType, error)
	Get(ctx context.Context, companyID, id int64) (EntryType, error)
	GetByCode(ctx context.Context, companyID int64, code string) (EntryType, error)
	Insert(ctx context.Context, t EntryType) (EntryType, error)
	Update(ctx context.Context, t EntryType) error
	Delete(ctx context.Context, companyID, id int64) error
	HasEntries(ctx context.Context, companyID int64, code string) (bool, error)
	SeedSystemTypes(ctx context.Context, companyID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const typeColumns = `id, company_id, code, name, description, is_system, active, created_at`

func scanType(row pgx.Row) (EntryType, error) {
	var t EntryType
	err := row.Scan(&t.ID, &t.CompanyID, &t.Code, &t.Name, &t.Description, &t.IsSystem, &t.Active, &t.CreatedAt)
	return t, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]EntryType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+typeColumns+` FROM journal_entry_types
WHERE company_id=$1 ORDER BY is_system DESC, code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []EntryType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (EntryType, error) {
	t, err := scanType(r.db.QueryRow(ctx, `SELECT `+typeColumns+` FROM journal_entry_types
WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EntryType{}, shared.ErrUnknownEntryType
		}
		return EntryType{}, err
	}
	return t, nil
}

func (r *repository) GetByCode(ctx context.Context, companyID int64, code string) (EntryType, error) {
	t, err := scanType(r.db.QueryRow(ctx, `SELECT `+typeColumns+` FROM journal_entry_types
WHERE company_id=$1 AND code=$2`, companyID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EntryType{}, shared.ErrUnknownEntryType
		}
		return EntryType{}, err
	}
	return t, nil
}

func (r *repository) Insert(ctx context.Context, t EntryType) (EntryType, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO journal_entry_types
(company_id, code, name, description, is_system, active)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at`,
		t.CompanyID, t.Code, t.Name, t.Description, t.IsSystem, t.Active)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return EntryType{}, shared.ErrDuplicateCode
		}
		return EntryType{}, err
	}
	return t, nil
}

func (r *repository) Update(ctx context.Context, t EntryType) error {
	cmd, err := r.db.Exec(ctx, `UPDATE journal_entry_types SET name=$3, description=$4, active=$5
WHERE company_id=$1 AND id=$2`, t.CompanyID, t.ID, t.Name, t.Description, t.Active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrUnknownEntryType
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM journal_entry_types WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrUnknownEntryType
	}
	return nil
}

func (r *repository) HasEntries(ctx context.Context, companyID int64, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entries
WHERE company_id=$1 AND entry_type=$2)`, companyID, code).Scan(&exists)
	return exists, err
}

func (r *repository) SeedSystemTypes(ctx context.Context, companyID int64) error {
	for _, t := range SystemTypes {
		if _, err := r.db.Exec(ctx, `INSERT INTO journal_entry_types
(company_id, code, name, description, is_system, active)
VALUES ($1,$2,$3,$4,TRUE,TRUE) ON CONFLICT (company_id, code) DO NOTHING`,
			companyID, t.Code, t.Name, t.Description); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
