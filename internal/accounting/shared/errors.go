// Package shared holds the error taxonomy of the accounting core.
//
// Six kind sentinels classify every failure; specific sentinels wrap a
// kind, so callers can match either the exact condition or the whole
// class with errors.Is.
package shared

import (
	"errors"
	"fmt"
)

// Kind sentinels.
var (
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("accounting: validation failed")
	// ErrInvalidState marks an operation not legal for the current status.
	ErrInvalidState = errors.New("accounting: invalid state for operation")
	// ErrPeriodClosed marks a posting against a closed period.
	ErrPeriodClosed = errors.New("accounting: period closed")
	// ErrConflict marks a deletion blocked by existing references.
	ErrConflict = errors.New("accounting: conflict")
	// ErrForbidden marks an action reserved for a privileged role.
	ErrForbidden = errors.New("accounting: forbidden")
	// ErrNotFound marks a missing account, entry, or period.
	ErrNotFound = errors.New("accounting: not found")
)

// Validation failures.
var (
	ErrUnbalanced         = fmt.Errorf("%w: journal lines must balance", ErrValidation)
	ErrZeroTotal          = fmt.Errorf("%w: journal total must be non-zero", ErrValidation)
	ErrNoLines            = fmt.Errorf("%w: journal requires at least one filled line", ErrValidation)
	ErrLineMissingAccount = fmt.Errorf("%w: line missing account", ErrValidation)
	ErrLineBothSides      = fmt.Errorf("%w: line cannot carry both debit and credit", ErrValidation)
	ErrLineNoSide         = fmt.Errorf("%w: line needs a debit or a credit", ErrValidation)
	ErrLineNegative       = fmt.Errorf("%w: line amounts must be non-negative", ErrValidation)
	ErrNotDetailAccount   = fmt.Errorf("%w: account does not accept postings", ErrValidation)
	ErrAccountInactive    = fmt.Errorf("%w: account is inactive", ErrValidation)
	ErrDuplicateCode      = fmt.Errorf("%w: code already in use", ErrValidation)
	ErrUnknownAccountType = fmt.Errorf("%w: unknown account type", ErrValidation)
	ErrUnknownEntryType   = fmt.Errorf("%w: unknown journal entry type", ErrValidation)
	ErrEntryTypeInactive  = fmt.Errorf("%w: journal entry type is inactive", ErrValidation)
	ErrVoidReasonTooShort = fmt.Errorf("%w: void reason too short", ErrValidation)
	ErrNoPeriodForDate    = fmt.Errorf("%w: no accounting period covers the date", ErrValidation)
	ErrParentNotFound     = fmt.Errorf("%w: parent account missing or inactive", ErrValidation)
)

// State failures.
var (
	ErrNotDraft       = fmt.Errorf("%w: only draft entries can be modified", ErrInvalidState)
	ErrNotPosted      = fmt.Errorf("%w: only posted entries can be voided", ErrInvalidState)
	ErrNotPendingVoid = fmt.Errorf("%w: entry has no pending void request", ErrInvalidState)
)

// Conflict failures.
var (
	ErrAccountHasChildren = fmt.Errorf("%w: account has child accounts", ErrConflict)
	ErrAccountReferenced  = fmt.Errorf("%w: account is referenced by journal lines", ErrConflict)
	ErrPeriodHasEntries   = fmt.Errorf("%w: period contains journal entries", ErrConflict)
	ErrPeriodIsClosed     = fmt.Errorf("%w: closed periods cannot be deleted", ErrConflict)
	ErrYearAlreadyExists  = fmt.Errorf("%w: fiscal year already has periods", ErrConflict)
	ErrPeriodOverlap      = fmt.Errorf("%w: period overlaps an existing period", ErrConflict)
	ErrEntryTypeInUse     = fmt.Errorf("%w: entry type has journal entries", ErrConflict)
)

// Not-found failures.
var (
	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)
	ErrEntryNotFound   = fmt.Errorf("%w: journal entry", ErrNotFound)
	ErrPeriodNotFound  = fmt.Errorf("%w: accounting period", ErrNotFound)
)
