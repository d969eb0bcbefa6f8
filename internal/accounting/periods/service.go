package periods

import (
	"context"
	"fmt"
	"time"

	"github.com/contalibre/contalibre/internal/accounting/shared"
	internalShared "github.com/contalibre/contalibre/internal/shared"
)

// AuditPort records period actions for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service owns the period lock registry.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns all periods for the company, newest first.
func (s *Service) List(ctx context.Context, companyID int64) ([]Period, error) {
	return s.repo.List(ctx, companyID)
}

// Get returns one period.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Period, error) {
	return s.repo.Get(ctx, companyID, id)
}

// GenerateYear creates the twelve monthly periods of a fiscal year, all
// open. A year that already has periods is rejected.
func (s *Service) GenerateYear(ctx context.Context, actor internalShared.Actor, year int) ([]Period, error) {
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("%w: fiscal year out of range", shared.ErrValidation)
	}
	exists, err := s.repo.ExistsForYear(ctx, actor.CompanyID, year)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrYearAlreadyExists
	}
	periods := make([]Period, 0, 12)
	for month := 1; month <= 12; month++ {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		periods = append(periods, Period{
			CompanyID:    actor.CompanyID,
			FiscalYear:   year,
			PeriodNumber: month,
			PeriodType:   PeriodTypeMonth,
			PeriodName:   fmt.Sprintf("%s %d", MonthName(month), year),
			StartDate:    start,
			EndDate:      end,
			IsClosed:     false,
		})
	}
	if err := s.repo.InsertYear(ctx, periods); err != nil {
		return nil, err
	}
	s.record(ctx, actor, "period.generate_year", fmt.Sprintf("%d", year), map[string]any{"year": year})
	return s.repo.List(ctx, actor.CompanyID)
}

// Create inserts a single ad-hoc period, used for mid-year fiscal
// changes. The range must not overlap an existing period.
func (s *Service) Create(ctx context.Context, actor internalShared.Actor, req CreatePeriodRequest) (Period, error) {
	if !req.EndDate.After(req.StartDate) && !req.EndDate.Equal(req.StartDate) {
		return Period{}, fmt.Errorf("%w: end date before start date", shared.ErrValidation)
	}
	overlaps, err := s.repo.Overlaps(ctx, actor.CompanyID, req.StartDate, req.EndDate)
	if err != nil {
		return Period{}, err
	}
	if overlaps {
		return Period{}, shared.ErrPeriodOverlap
	}
	periodType := PeriodType(req.PeriodType)
	if periodType == "" {
		periodType = PeriodTypeMonth
	}
	name := req.PeriodName
	if name == "" {
		name = fmt.Sprintf("%s %d", MonthName(req.PeriodNumber), req.FiscalYear)
	}
	period, err := s.repo.Insert(ctx, Period{
		CompanyID:    actor.CompanyID,
		FiscalYear:   req.FiscalYear,
		PeriodNumber: req.PeriodNumber,
		PeriodType:   periodType,
		PeriodName:   name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, actor, "period.create", fmt.Sprintf("%d", period.ID), map[string]any{
		"fiscal_year":   period.FiscalYear,
		"period_number": period.PeriodNumber,
	})
	return period, nil
}

// Close flips the period lock on. Existing postings are not revalidated.
func (s *Service) Close(ctx context.Context, actor internalShared.Actor, id int64) (Period, error) {
	period, err := s.repo.Get(ctx, actor.CompanyID, id)
	if err != nil {
		return Period{}, err
	}
	if err := s.repo.SetClosed(ctx, actor.CompanyID, id, true, actor.UserID, s.now()); err != nil {
		return Period{}, err
	}
	s.record(ctx, actor, "period.close", fmt.Sprintf("%d", id), map[string]any{"period_name": period.PeriodName})
	return s.repo.Get(ctx, actor.CompanyID, id)
}

// Reopen flips the period lock off.
func (s *Service) Reopen(ctx context.Context, actor internalShared.Actor, id int64) (Period, error) {
	period, err := s.repo.Get(ctx, actor.CompanyID, id)
	if err != nil {
		return Period{}, err
	}
	if err := s.repo.SetClosed(ctx, actor.CompanyID, id, false, 0, s.now()); err != nil {
		return Period{}, err
	}
	s.record(ctx, actor, "period.reopen", fmt.Sprintf("%d", id), map[string]any{"period_name": period.PeriodName})
	return s.repo.Get(ctx, actor.CompanyID, id)
}

// Delete removes a period that is open and has no journal entries in range.
func (s *Service) Delete(ctx context.Context, actor internalShared.Actor, id int64) error {
	period, err := s.repo.Get(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if period.IsClosed {
		return shared.ErrPeriodIsClosed
	}
	hasEntries, err := s.repo.HasEntriesInRange(ctx, actor.CompanyID, period.StartDate, period.EndDate)
	if err != nil {
		return err
	}
	if hasEntries {
		return shared.ErrPeriodHasEntries
	}
	if err := s.repo.Delete(ctx, actor.CompanyID, id); err != nil {
		return err
	}
	s.record(ctx, actor, "period.delete", fmt.Sprintf("%d", id), map[string]any{"period_name": period.PeriodName})
	return nil
}

// ClosedForDate reports whether any closed period covers the date.
func (s *Service) ClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error) {
	return s.repo.ClosedForDate(ctx, companyID, date)
}

// PeriodForDate returns the period covering the date, if any.
func (s *Service) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (Period, error) {
	return s.repo.PeriodForDate(ctx, companyID, date)
}

func (s *Service) record(ctx context.Context, actor internalShared.Actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actor.UserID,
		Action:   action,
		Entity:   "accounting_period",
		EntityID: entityID,
		Meta:     meta,
		At:       s.now(),
	})
}
