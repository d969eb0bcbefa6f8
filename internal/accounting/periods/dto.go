package periods

import "time"

// GenerateYearRequest asks for the twelve monthly periods of a fiscal year.
type GenerateYearRequest struct {
	Year int `json:"year" validate:"required,gte=2000,lte=2100"`
}

// CreatePeriodRequest carries the fields for a single ad-hoc period.
type CreatePeriodRequest struct {
	FiscalYear   int       `json:"fiscal_year" validate:"required,gte=2000,lte=2100"`
	PeriodNumber int       `json:"period_number" validate:"required,gte=1,lte=13"`
	PeriodType   string    `json:"period_type" validate:"omitempty,oneof=month year"`
	PeriodName   string    `json:"period_name" validate:"omitempty,max=100"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
}
