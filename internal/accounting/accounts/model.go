package accounts

import "time"

// Nature indicates the normal balance side of an account type.
type Nature string

const (
	// NatureDebit marks debit-normal (deudora) types: assets, expenses.
	NatureDebit Nature = "deudora"
	// NatureCredit marks credit-normal (acreedora) types: liabilities, equity, revenue.
	NatureCredit Nature = "acreedora"
)

// AccountType categorises accounts and drives statement placement.
type AccountType struct {
	ID             int64
	CompanyID      int64
	Code           string
	Name           string
	Nature         Nature
	AffectsBalance bool
	AffectsResults bool
	SortOrder      int
}

// Account models a chart of accounts node. Only detail leaves accept
// journal lines; level is derived from the parent chain (root = 1).
type Account struct {
	ID            int64
	CompanyID     int64
	Code          string
	Name          string
	AccountTypeID int64
	ParentID      *int64
	Level         int
	IsDetail      bool
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TreeNode is an account with its children, ordered by code.
type TreeNode struct {
	Account
	Children []*TreeNode
}
