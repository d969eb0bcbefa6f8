package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Account, error)
	Get(ctx context.Context, companyID, id int64) (Account, error)
	Insert(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) error
	Delete(ctx context.Context, companyID, id int64) error
	HasChildren(ctx context.Context, companyID, id int64) (bool, error)
	HasJournalLines(ctx context.Context, id int64) (bool, error)
	GetType(ctx context.Context, companyID, typeID int64) (AccountType, error)
	ListTypes(ctx context.Context, companyID int64) ([]AccountType, error)
	InsertType(ctx context.Context, t AccountType) (AccountType, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, company_id, code, name, account_type_id, parent_account_id, level, is_detail, active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.AccountTypeID, &a.ParentID, &a.Level, &a.IsDetail, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (company_id, code, name, account_type_id, parent_account_id, level, is_detail, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		account.CompanyID, account.Code, account.Name, account.AccountTypeID, account.ParentID, account.Level, account.IsDetail, account.Active)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) Update(ctx context.Context, account Account) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET code=$3, name=$4, account_type_id=$5, is_detail=$6, active=$7, updated_at=NOW()
WHERE company_id=$1 AND id=$2`, account.CompanyID, account.ID, account.Code, account.Name, account.AccountTypeID, account.IsDetail, account.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateCode
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) HasChildren(ctx context.Context, companyID, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE company_id=$1 AND parent_account_id=$2)`, companyID, id).Scan(&exists)
	return exists, err
}

func (r *repository) HasJournalLines(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *repository) GetType(ctx context.Context, companyID, typeID int64) (AccountType, error) {
	var t AccountType
	err := r.db.QueryRow(ctx, `SELECT id, company_id, code, name, nature, affects_balance, affects_results, sort_order
FROM account_types WHERE company_id=$1 AND id=$2`, companyID, typeID).
		Scan(&t.ID, &t.CompanyID, &t.Code, &t.Name, &t.Nature, &t.AffectsBalance, &t.AffectsResults, &t.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountType{}, shared.ErrUnknownAccountType
		}
		return AccountType{}, err
	}
	return t, nil
}

func (r *repository) ListTypes(ctx context.Context, companyID int64) ([]AccountType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company_id, code, name, nature, affects_balance, affects_results, sort_order
FROM account_types WHERE company_id=$1 ORDER BY sort_order, code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var types []AccountType
	for rows.Next() {
		var t AccountType
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Code, &t.Name, &t.Nature, &t.AffectsBalance, &t.AffectsResults, &t.SortOrder); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *repository) InsertType(ctx context.Context, t AccountType) (AccountType, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO account_types (company_id, code, name, nature, affects_balance, affects_results, sort_order)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		t.CompanyID, t.Code, t.Name, t.Nature, t.AffectsBalance, t.AffectsResults, t.SortOrder)
	if err := row.Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return AccountType{}, shared.ErrDuplicateCode
		}
		return AccountType{}, err
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
