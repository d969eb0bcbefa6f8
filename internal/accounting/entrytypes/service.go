package entrytypes

import (
	"context"
	"strings"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Service owns the entry type catalog rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]EntryType, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (EntryType, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Resolve returns the catalog row for a code, case-insensitively.
func (s *Service) Resolve(ctx context.Context, companyID int64, code string) (EntryType, error) {
	return s.repo.GetByCode(ctx, companyID, strings.ToUpper(strings.TrimSpace(code)))
}

// Create adds a custom entry type. Codes are stored uppercase so the
// per-type sequence scope is stable regardless of input casing.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateEntryTypeRequest) (EntryType, error) {
	return s.repo.Insert(ctx, EntryType{
		CompanyID:   companyID,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:        req.Name,
		Description: req.Description,
		IsSystem:    false,
		Active:      true,
	})
}

func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateEntryTypeRequest) (EntryType, error) {
	t, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return EntryType{}, err
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return EntryType{}, err
	}
	return t, nil
}

// Delete removes a custom entry type. System types and types referenced
// by journal entries are kept.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	t, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if t.IsSystem {
		return shared.ErrEntryTypeInUse
	}
	inUse, err := s.repo.HasEntries(ctx, companyID, t.Code)
	if err != nil {
		return err
	}
	if inUse {
		return shared.ErrEntryTypeInUse
	}
	return s.repo.Delete(ctx, companyID, id)
}

// SeedSystemTypes makes sure the default catalog exists for a company.
func (s *Service) SeedSystemTypes(ctx context.Context, companyID int64) error {
	return s.repo.SeedSystemTypes(ctx, companyID)
}
