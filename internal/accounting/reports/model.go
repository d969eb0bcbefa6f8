// Package reports builds read-only aggregations over the active
// ledger. Entries in POSTED or PENDING_VOID status count; drafts and
// voided entries do not.
package reports

import "time"

// AccountTotal is the per-account aggregation primitive every report
// is built from.
type AccountTotal struct {
	AccountID      int64
	Code           string
	Name           string
	Nature         string
	TypeCode       string
	AffectsBalance bool
	AffectsResults bool
	Debit          float64
	Credit         float64
}

// TrialBalanceRow splits the signed balance into its debit and credit
// columns.
type TrialBalanceRow struct {
	AccountID     int64   `json:"account_id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	BalanceDebit  float64 `json:"balance_debit"`
	BalanceCredit float64 `json:"balance_credit"`
}

type TrialBalance struct {
	AsOf               time.Time         `json:"as_of"`
	Rows               []TrialBalanceRow `json:"rows"`
	TotalDebit         float64           `json:"total_debit"`
	TotalCredit        float64           `json:"total_credit"`
	TotalBalanceDebit  float64           `json:"total_balance_debit"`
	TotalBalanceCredit float64           `json:"total_balance_credit"`
}

// BalanceSheetLine carries a natural-sign balance: credit-natured
// accounts are flipped so liabilities and equity read positive.
type BalanceSheetLine struct {
	AccountID int64   `json:"account_id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
}

type BalanceSheetSection struct {
	Lines []BalanceSheetLine `json:"lines"`
	Total float64            `json:"total"`
}

type BalanceSheet struct {
	AsOf        time.Time           `json:"as_of"`
	Assets      BalanceSheetSection `json:"assets"`
	Liabilities BalanceSheetSection `json:"liabilities"`
	Equity      BalanceSheetSection `json:"equity"`
}

type IncomeStatement struct {
	From          time.Time          `json:"from"`
	To            time.Time          `json:"to"`
	Revenue       []BalanceSheetLine `json:"revenue"`
	Expenses      []BalanceSheetLine `json:"expenses"`
	TotalRevenue  float64            `json:"total_revenue"`
	TotalExpenses float64            `json:"total_expenses"`
	Net           float64            `json:"net"`
}

// LedgerLine is one posted journal line with its entry header fields.
type LedgerLine struct {
	EntryID        int64     `json:"entry_id"`
	EntryDate      time.Time `json:"entry_date"`
	SequenceNumber int64     `json:"sequence_number"`
	EntryType      string    `json:"entry_type"`
	Description    string    `json:"description"`
	AccountID      int64     `json:"account_id"`
	AccountCode    string    `json:"account_code"`
	AccountName    string    `json:"account_name"`
	Debit          float64   `json:"debit"`
	Credit         float64   `json:"credit"`
	Balance        float64   `json:"balance,omitempty"`
}

type GeneralLedger struct {
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Lines       []LedgerLine `json:"lines"`
	TotalDebit  float64      `json:"total_debit"`
	TotalCredit float64      `json:"total_credit"`
}

// AccountLedger replays one account's lines with a running balance.
// The opening balance is seeded at zero for the requested range.
type AccountLedger struct {
	AccountID      int64        `json:"account_id"`
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	From           time.Time    `json:"from"`
	To             time.Time    `json:"to"`
	OpeningBalance float64      `json:"opening_balance"`
	Lines          []LedgerLine `json:"lines"`
	ClosingBalance float64      `json:"closing_balance"`
}
