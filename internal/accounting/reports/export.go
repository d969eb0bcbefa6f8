package reports

import (
	"encoding/csv"
	"io"
	"strconv"
)

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteTrialBalanceCSV streams the trial balance as CSV.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "name", "debit", "credit", "balance_debit", "balance_credit"}); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		if err := cw.Write([]string{row.Code, row.Name, money(row.Debit), money(row.Credit),
			money(row.BalanceDebit), money(row.BalanceCredit)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "TOTAL", money(tb.TotalDebit), money(tb.TotalCredit),
		money(tb.TotalBalanceDebit), money(tb.TotalBalanceCredit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteBalanceSheetCSV streams the balance sheet as CSV.
func WriteBalanceSheetCSV(w io.Writer, bs BalanceSheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "code", "name", "balance"}); err != nil {
		return err
	}
	sections := []struct {
		name    string
		section BalanceSheetSection
	}{
		{"assets", bs.Assets},
		{"liabilities", bs.Liabilities},
		{"equity", bs.Equity},
	}
	for _, s := range sections {
		for _, line := range s.section.Lines {
			if err := cw.Write([]string{s.name, line.Code, line.Name, money(line.Balance)}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{s.name, "", "TOTAL", money(s.section.Total)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIncomeStatementCSV streams the income statement as CSV.
func WriteIncomeStatementCSV(w io.Writer, is IncomeStatement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "code", "name", "amount"}); err != nil {
		return err
	}
	for _, line := range is.Revenue {
		if err := cw.Write([]string{"revenue", line.Code, line.Name, money(line.Balance)}); err != nil {
			return err
		}
	}
	for _, line := range is.Expenses {
		if err := cw.Write([]string{"expenses", line.Code, line.Name, money(line.Balance)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"net", "", "", money(is.Net)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteGeneralLedgerCSV streams the general ledger as CSV.
func WriteGeneralLedgerCSV(w io.Writer, gl GeneralLedger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry_date", "sequence", "entry_type", "account_code", "account_name", "description", "debit", "credit"}); err != nil {
		return err
	}
	for _, l := range gl.Lines {
		if err := cw.Write([]string{l.EntryDate.Format("2006-01-02"), strconv.FormatInt(l.SequenceNumber, 10),
			l.EntryType, l.AccountCode, l.AccountName, l.Description, money(l.Debit), money(l.Credit)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "", "", "", "", "TOTAL", money(gl.TotalDebit), money(gl.TotalCredit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteAccountLedgerCSV streams one account's ledger as CSV.
func WriteAccountLedgerCSV(w io.Writer, al AccountLedger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"entry_date", "sequence", "description", "debit", "credit", "balance"}); err != nil {
		return err
	}
	for _, l := range al.Lines {
		if err := cw.Write([]string{l.EntryDate.Format("2006-01-02"), strconv.FormatInt(l.SequenceNumber, 10),
			l.Description, money(l.Debit), money(l.Credit), money(l.Balance)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "", "CLOSING", "", "", money(al.ClosingBalance)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
