// Package journals implements the journal entry lifecycle: drafts,
// posting with gap-free sequence assignment, and the two-step void
// approval workflow.
package journals

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a journal entry.
//
// DRAFT -> POSTED -> PENDING_VOID -> VOID, with drafts deletable.
// There is no path back to DRAFT once posted.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusPosted      Status = "POSTED"
	StatusPendingVoid Status = "PENDING_VOID"
	StatusVoid        Status = "VOID"
)

// JournalEntry is a double-entry journal header plus its lines.
type JournalEntry struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Reference   uuid.UUID `json:"reference"`
	EntryDate   time.Time `json:"entry_date"`
	EntryType   string    `json:"entry_type"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`

	// EntryNumber is a free-form label, editable while the entry is a
	// draft. SequenceNumber and TypeNumber are assigned at post time
	// and never change afterwards.
	EntryNumber    string `json:"entry_number,omitempty"`
	SequenceNumber *int64 `json:"sequence_number,omitempty"`
	TypeNumber     *int64 `json:"type_number,omitempty"`

	CreatedBy int64      `json:"created_by"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`

	VoidReason       string     `json:"void_reason,omitempty"`
	VoidRequestedBy  *int64     `json:"void_requested_by,omitempty"`
	VoidRequestedAt  *time.Time `json:"void_requested_at,omitempty"`
	VoidAuthorizedBy *int64     `json:"void_authorized_by,omitempty"`
	VoidAuthorizedAt *time.Time `json:"void_authorized_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lines []JournalEntryLine `json:"lines"`
}

// JournalEntryLine is one side of a posting. Exactly one of Debit or
// Credit is non-zero on a valid line.
type JournalEntryLine struct {
	ID          int64   `json:"id"`
	EntryID     int64   `json:"journal_entry_id"`
	LineNumber  int     `json:"line_number"`
	AccountID   int64   `json:"account_id"`
	Description string  `json:"description,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

// Totals returns the summed debit and credit sides of the entry.
func (e JournalEntry) Totals() (debit, credit float64) {
	for _, l := range e.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}
