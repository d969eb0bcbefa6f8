package reports

import (
	"context"
	"strings"
	"time"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Service builds the report payloads from the aggregation repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const natureCredit = "acreedora"

// TrialBalance lists every detail account with activity up to the
// given date, with the signed balance split into its two columns.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (TrialBalance, error) {
	totals, err := s.repo.TotalsAsOf(ctx, companyID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := TrialBalance{AsOf: asOf}
	for _, t := range totals {
		row := TrialBalanceRow{
			AccountID: t.AccountID,
			Code:      t.Code,
			Name:      t.Name,
			Debit:     t.Debit,
			Credit:    t.Credit,
		}
		balance := t.Debit - t.Credit
		if balance >= 0 {
			row.BalanceDebit = balance
		} else {
			row.BalanceCredit = -balance
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
		tb.TotalBalanceDebit += row.BalanceDebit
		tb.TotalBalanceCredit += row.BalanceCredit
	}
	return tb, nil
}

// BalanceSheet partitions balance accounts into assets, liabilities
// and equity by their type code, with credit-natured balances flipped
// to read positive. Immaterial balances are omitted.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	totals, err := s.repo.TotalsAsOf(ctx, companyID, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs := BalanceSheet{AsOf: asOf}
	for _, t := range totals {
		if !t.AffectsBalance {
			continue
		}
		balance := naturalBalance(t)
		if !shared.Material(balance) {
			continue
		}
		line := BalanceSheetLine{AccountID: t.AccountID, Code: t.Code, Name: t.Name, Balance: balance}
		switch section(t.TypeCode) {
		case "assets":
			bs.Assets.Lines = append(bs.Assets.Lines, line)
			bs.Assets.Total += balance
		case "liabilities":
			bs.Liabilities.Lines = append(bs.Liabilities.Lines, line)
			bs.Liabilities.Total += balance
		default:
			bs.Equity.Lines = append(bs.Equity.Lines, line)
			bs.Equity.Total += balance
		}
	}
	return bs, nil
}

// IncomeStatement splits result accounts into revenue and expenses
// over the period; net = revenue - expenses.
func (s *Service) IncomeStatement(ctx context.Context, companyID int64, from, to time.Time) (IncomeStatement, error) {
	totals, err := s.repo.TotalsBetween(ctx, companyID, from, to)
	if err != nil {
		return IncomeStatement{}, err
	}
	is := IncomeStatement{From: from, To: to}
	for _, t := range totals {
		if !t.AffectsResults {
			continue
		}
		balance := naturalBalance(t)
		line := BalanceSheetLine{AccountID: t.AccountID, Code: t.Code, Name: t.Name, Balance: balance}
		if t.Nature == natureCredit {
			is.Revenue = append(is.Revenue, line)
			is.TotalRevenue += balance
		} else {
			is.Expenses = append(is.Expenses, line)
			is.TotalExpenses += balance
		}
	}
	is.Net = is.TotalRevenue - is.TotalExpenses
	return is, nil
}

// GeneralLedger replays every active line in the range chronologically.
func (s *Service) GeneralLedger(ctx context.Context, companyID int64, from, to time.Time) (GeneralLedger, error) {
	lines, err := s.repo.LedgerLines(ctx, companyID, from, to)
	if err != nil {
		return GeneralLedger{}, err
	}
	gl := GeneralLedger{From: from, To: to, Lines: lines}
	for _, l := range lines {
		gl.TotalDebit += l.Debit
		gl.TotalCredit += l.Credit
	}
	return gl, nil
}

// AccountLedger replays one account's lines with a running balance
// seeded at zero for the range.
func (s *Service) AccountLedger(ctx context.Context, companyID, accountID int64, from, to time.Time) (AccountLedger, error) {
	code, name, err := s.repo.AccountInfo(ctx, companyID, accountID)
	if err != nil {
		return AccountLedger{}, err
	}
	lines, err := s.repo.AccountLedgerLines(ctx, companyID, accountID, from, to)
	if err != nil {
		return AccountLedger{}, err
	}
	al := AccountLedger{AccountID: accountID, Code: code, Name: name, From: from, To: to}
	var balance float64
	for _, l := range lines {
		balance += l.Debit - l.Credit
		l.Balance = balance
		al.Lines = append(al.Lines, l)
	}
	al.ClosingBalance = balance
	return al, nil
}

// ActiveCompanyIDs lists companies with an active ledger, used by the
// cache warmup job.
func (s *Service) ActiveCompanyIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ActiveCompanyIDs(ctx)
}

func naturalBalance(t AccountTotal) float64 {
	if t.Nature == natureCredit {
		return t.Credit - t.Debit
	}
	return t.Debit - t.Credit
}

func section(typeCode string) string {
	code := strings.ToUpper(typeCode)
	switch {
	case strings.HasPrefix(code, "ACTIVO"):
		return "assets"
	case strings.HasPrefix(code, "PASIVO"):
		return "liabilities"
	default:
		return "equity"
	}
}
