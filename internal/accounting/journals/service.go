package journals

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/contalibre/contalibre/internal/accounting/accounts"
	"github.com/contalibre/contalibre/internal/accounting/entrytypes"
	"github.com/contalibre/contalibre/internal/accounting/periods"
	"github.com/contalibre/contalibre/internal/accounting/shared"
	internalShared "github.com/contalibre/contalibre/internal/shared"
)

// AccountGuard resolves postable accounts for line validation.
type AccountGuard interface {
	RequireDetail(ctx context.Context, companyID, accountID int64) (accounts.Account, error)
}

// PeriodGate answers the period lock question at post time.
type PeriodGate interface {
	PeriodForDate(ctx context.Context, companyID int64, date time.Time) (periods.Period, error)
}

// TypeCatalog resolves entry type codes.
type TypeCatalog interface {
	Resolve(ctx context.Context, companyID int64, code string) (entrytypes.EntryType, error)
}

// AuditPort records lifecycle actions.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// MetricsPort counts posted and voided entries.
type MetricsPort interface {
	EntryPosted()
	EntryVoided()
}

// CacheInvalidator drops cached report payloads for a company once a
// posting or an authorized void changes the active ledger.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, companyID int64) error
}

// Service owns the journal entry lifecycle.
type Service struct {
	repo              Repository
	accountGuard      AccountGuard
	periodGate        PeriodGate
	typeCatalog       TypeCatalog
	audit             AuditPort
	metrics           MetricsPort
	reportCache       CacheInvalidator
	voidReasonMinimum int
	now               func() time.Time
}

type ServiceParams struct {
	Repo              Repository
	Accounts          AccountGuard
	Periods           PeriodGate
	EntryTypes        TypeCatalog
	Audit             AuditPort
	Metrics           MetricsPort
	ReportCache       CacheInvalidator
	VoidReasonMinimum int
}

func NewService(p ServiceParams) *Service {
	minimum := p.VoidReasonMinimum
	if minimum <= 0 {
		minimum = 10
	}
	return &Service{
		repo:              p.Repo,
		accountGuard:      p.Accounts,
		periodGate:        p.Periods,
		typeCatalog:       p.EntryTypes,
		audit:             p.Audit,
		metrics:           p.Metrics,
		reportCache:       p.ReportCache,
		voidReasonMinimum: minimum,
		now:               time.Now,
	}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, error) {
	return s.repo.List(ctx, companyID, filter)
}

func (s *Service) ListPendingVoids(ctx context.Context, companyID int64) ([]JournalEntry, error) {
	return s.repo.ListPendingVoids(ctx, companyID)
}

// CreateDraft stores a new draft. Lines may be empty or unbalanced;
// only filled lines are validated individually.
func (s *Service) CreateDraft(ctx context.Context, actor internalShared.Actor, req CreateEntryRequest) (JournalEntry, error) {
	entryType, err := s.resolveActiveType(ctx, actor.CompanyID, req.EntryType)
	if err != nil {
		return JournalEntry{}, err
	}
	lines, err := s.buildLines(ctx, actor.CompanyID, req.Lines)
	if err != nil {
		return JournalEntry{}, err
	}
	entry := JournalEntry{
		CompanyID:   actor.CompanyID,
		Reference:   uuid.New(),
		EntryDate:   req.EntryDate,
		EntryType:   entryType.Code,
		Description: req.Description,
		EntryNumber: req.EntryNumber,
		Status:      StatusDraft,
		CreatedBy:   actor.UserID,
		Lines:       lines,
	}
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		entry, err = tx.Insert(ctx, entry)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actor, "journal.create_draft", entry.ID, map[string]any{"reference": entry.Reference.String()})
	return entry, nil
}

// UpdateDraft replaces the header and lines of a draft under a row lock.
func (s *Service) UpdateDraft(ctx context.Context, actor internalShared.Actor, id int64, req UpdateEntryRequest) (JournalEntry, error) {
	entryType, err := s.resolveActiveType(ctx, actor.CompanyID, req.EntryType)
	if err != nil {
		return JournalEntry{}, err
	}
	lines, err := s.buildLines(ctx, actor.CompanyID, req.Lines)
	if err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		entry, err = tx.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return shared.ErrNotDraft
		}
		entry.EntryDate = req.EntryDate
		entry.EntryType = entryType.Code
		entry.Description = req.Description
		entry.EntryNumber = req.EntryNumber
		entry.Lines = lines
		if err := tx.Update(ctx, entry); err != nil {
			return err
		}
		return tx.ReplaceLines(ctx, entry.ID, lines)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actor, "journal.update_draft", entry.ID, nil)
	return entry, nil
}

// DeleteDraft removes a draft and its lines. Posted entries are never
// deleted; corrections go through the void workflow.
func (s *Service) DeleteDraft(ctx context.Context, actor internalShared.Actor, id int64) error {
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		entry, err := tx.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return shared.ErrNotDraft
		}
		return tx.Delete(ctx, actor.CompanyID, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actor, "journal.delete_draft", id, nil)
	return nil
}

// Post validates the draft, checks the period gate, assigns the
// company and per-type sequence numbers, and flips the status to
// POSTED. All of it happens in one transaction: there is no posted
// entry without a sequence number and no spent number without a
// posted entry.
func (s *Service) Post(ctx context.Context, actor internalShared.Actor, id int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		var err error
		entry, err = tx.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusDraft {
			return shared.ErrNotDraft
		}
		if len(entry.Lines) == 0 {
			return shared.ErrNoLines
		}
		for _, line := range entry.Lines {
			if _, err := s.accountGuard.RequireDetail(ctx, actor.CompanyID, line.AccountID); err != nil {
				return err
			}
		}
		debit, credit := entry.Totals()
		if !shared.Balanced(debit, credit) {
			return fmt.Errorf("%w: debit %.2f credit %.2f", shared.ErrUnbalanced, debit, credit)
		}
		if !shared.Material(debit) {
			return shared.ErrZeroTotal
		}
		period, err := s.periodGate.PeriodForDate(ctx, actor.CompanyID, entry.EntryDate)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.ErrNoPeriodForDate
			}
			return err
		}
		if period.IsClosed {
			return fmt.Errorf("%w: %s", shared.ErrPeriodClosed, period.PeriodName)
		}
		seq, err := tx.NextSequence(ctx, actor.CompanyID, SequenceScopeCompany)
		if err != nil {
			return err
		}
		typeNum, err := tx.NextSequence(ctx, actor.CompanyID, TypeSequenceScope(entry.EntryType))
		if err != nil {
			return err
		}
		now := s.now()
		entry.SequenceNumber = &seq
		entry.TypeNumber = &typeNum
		entry.Status = StatusPosted
		entry.PostedAt = &now
		return tx.Update(ctx, entry)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if s.metrics != nil {
		s.metrics.EntryPosted()
	}
	s.invalidateReports(ctx, actor.CompanyID)
	s.record(ctx, actor, "journal.post", entry.ID, map[string]any{
		"sequence_number": derefInt64(entry.SequenceNumber),
		"type_number":     derefInt64(entry.TypeNumber),
	})
	return entry, nil
}

// RequestVoid moves a posted entry into the approval queue. Closed
// periods do not block the request: voiding is the sanctioned way to
// correct a locked period.
func (s *Service) RequestVoid(ctx context.Context, actor internalShared.Actor, id int64, reason string) (JournalEntry, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < s.voidReasonMinimum {
		return JournalEntry{}, fmt.Errorf("%w: need at least %d characters", shared.ErrVoidReasonTooShort, s.voidReasonMinimum)
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		var err error
		entry, err = tx.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusPosted {
			return shared.ErrNotPosted
		}
		now := s.now()
		entry.Status = StatusPendingVoid
		entry.VoidReason = reason
		entry.VoidRequestedBy = &actor.UserID
		entry.VoidRequestedAt = &now
		return tx.Update(ctx, entry)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.record(ctx, actor, "journal.request_void", entry.ID, map[string]any{"reason": reason})
	return entry, nil
}

// AuthorizeVoid completes the void. Only privileged roles may approve;
// the requester needs no special role.
func (s *Service) AuthorizeVoid(ctx context.Context, actor internalShared.Actor, id int64) (JournalEntry, error) {
	if !actor.Privileged() {
		return JournalEntry{}, fmt.Errorf("%w: void authorization requires an admin role", shared.ErrForbidden)
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		var err error
		entry, err = tx.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if entry.Status != StatusPendingVoid {
			return shared.ErrNotPendingVoid
		}
		now := s.now()
		entry.Status = StatusVoid
		entry.VoidAuthorizedBy = &actor.UserID
		entry.VoidAuthorizedAt = &now
		return tx.Update(ctx, entry)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if s.metrics != nil {
		s.metrics.EntryVoided()
	}
	s.invalidateReports(ctx, actor.CompanyID)
	s.record(ctx, actor, "journal.authorize_void", entry.ID, nil)
	return entry, nil
}

func (s *Service) resolveActiveType(ctx context.Context, companyID int64, code string) (entrytypes.EntryType, error) {
	entryType, err := s.typeCatalog.Resolve(ctx, companyID, code)
	if err != nil {
		return entrytypes.EntryType{}, err
	}
	if !entryType.Active {
		return entrytypes.EntryType{}, shared.ErrEntryTypeInactive
	}
	return entryType, nil
}

// buildLines drops blank lines and validates the filled ones. Balance
// is checked at post time, not here.
func (s *Service) buildLines(ctx context.Context, companyID int64, reqs []EntryLineRequest) ([]JournalEntryLine, error) {
	var lines []JournalEntryLine
	for _, req := range reqs {
		if req.Blank() {
			continue
		}
		if req.AccountID == 0 {
			return nil, shared.ErrLineMissingAccount
		}
		if req.Debit < 0 || req.Credit < 0 {
			return nil, shared.ErrLineNegative
		}
		if req.Debit > 0 && req.Credit > 0 {
			return nil, shared.ErrLineBothSides
		}
		if req.Debit == 0 && req.Credit == 0 {
			return nil, shared.ErrLineNoSide
		}
		if _, err := s.accountGuard.RequireDetail(ctx, companyID, req.AccountID); err != nil {
			return nil, err
		}
		lines = append(lines, JournalEntryLine{
			LineNumber:  len(lines) + 1,
			AccountID:   req.AccountID,
			Description: req.Description,
			Debit:       req.Debit,
			Credit:      req.Credit,
		})
	}
	return lines, nil
}

// invalidateReports runs after the transaction commits; a drop failure
// leaves stale payloads behind until the cache TTL expires.
func (s *Service) invalidateReports(ctx context.Context, companyID int64) {
	if s.reportCache == nil {
		return
	}
	_ = s.reportCache.Invalidate(ctx, companyID)
}

func (s *Service) record(ctx context.Context, actor internalShared.Actor, action string, entryID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: strconv.FormatInt(entryID, 10),
		Meta:     meta,
		At:       s.now(),
	})
}

func derefInt64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
