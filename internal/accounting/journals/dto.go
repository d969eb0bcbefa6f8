package journals

import "time"

// EntryLineRequest is one line of a draft payload. A line with no
// account and zero amounts is considered blank and dropped.
type EntryLineRequest struct {
	AccountID   int64   `json:"account_id"`
	Description string  `json:"description" validate:"omitempty,max=255"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

// Blank reports whether the line carries no data at all.
func (l EntryLineRequest) Blank() bool {
	return l.AccountID == 0 && l.Debit == 0 && l.Credit == 0
}

// CreateEntryRequest carries a new draft. Balance is not required
// until posting.
type CreateEntryRequest struct {
	EntryDate   time.Time          `json:"entry_date" validate:"required"`
	EntryType   string             `json:"entry_type" validate:"required,max=20"`
	Description string             `json:"description" validate:"omitempty,max=500"`
	EntryNumber string             `json:"entry_number" validate:"omitempty,max=50"`
	Lines       []EntryLineRequest `json:"lines" validate:"dive"`
}

// UpdateEntryRequest replaces a draft's header fields and lines.
type UpdateEntryRequest struct {
	EntryDate   time.Time          `json:"entry_date" validate:"required"`
	EntryType   string             `json:"entry_type" validate:"required,max=20"`
	Description string             `json:"description" validate:"omitempty,max=500"`
	EntryNumber string             `json:"entry_number" validate:"omitempty,max=50"`
	Lines       []EntryLineRequest `json:"lines" validate:"dive"`
}

// RequestVoidRequest carries the mandatory justification.
type RequestVoidRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ListFilter narrows the entry listing.
type ListFilter struct {
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}
