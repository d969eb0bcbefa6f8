package periods

import "time"

// PeriodType distinguishes monthly periods from an annual one.
type PeriodType string

const (
	PeriodTypeMonth PeriodType = "month"
	PeriodTypeYear  PeriodType = "year"
)

// Period represents a fiscal period window for one company. A closed
// period rejects new postings dated inside its range; the gate is
// checked by the journal lifecycle at post time.
type Period struct {
	ID           int64
	CompanyID    int64
	FiscalYear   int
	PeriodNumber int
	PeriodType   PeriodType
	PeriodName   string
	StartDate    time.Time
	EndDate      time.Time
	IsClosed     bool
	ClosedAt     *time.Time
	ClosedBy     *int64
	CreatedAt    time.Time
}

// Covers reports whether the date falls inside the period range, inclusive.
func (p Period) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish month name used for generated period labels.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}
