package accounts

import (
	"context"
	"fmt"
	"sort"

	"github.com/contalibre/contalibre/internal/accounting/shared"
)

// Service applies the chart of accounts rules on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and inserts a new account. Level is derived from the
// parent chain and never taken from the caller.
func (s *Service) Create(ctx context.Context, companyID int64, req CreateAccountRequest) (Account, error) {
	if _, err := s.repo.GetType(ctx, companyID, req.AccountTypeID); err != nil {
		return Account{}, err
	}
	level := 1
	if req.ParentID != nil {
		parent, err := s.repo.Get(ctx, companyID, *req.ParentID)
		if err != nil {
			return Account{}, shared.ErrParentNotFound
		}
		if !parent.Active {
			return Account{}, shared.ErrParentNotFound
		}
		if parent.IsDetail {
			return Account{}, fmt.Errorf("%w: parent is a detail account", shared.ErrValidation)
		}
		level = parent.Level + 1
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return s.repo.Insert(ctx, Account{
		CompanyID:     companyID,
		Code:          req.Code,
		Name:          req.Name,
		AccountTypeID: req.AccountTypeID,
		ParentID:      req.ParentID,
		Level:         level,
		IsDetail:      req.IsDetail,
		Active:        active,
	})
}

// Update applies partial edits. Detail status cannot change while the
// account has children or posted history that the new status forbids.
func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateAccountRequest) (Account, error) {
	account, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Account{}, err
	}
	if req.Code != nil {
		account.Code = *req.Code
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.AccountTypeID != nil {
		if _, err := s.repo.GetType(ctx, companyID, *req.AccountTypeID); err != nil {
			return Account{}, err
		}
		account.AccountTypeID = *req.AccountTypeID
	}
	if req.IsDetail != nil && *req.IsDetail != account.IsDetail {
		if *req.IsDetail {
			hasChildren, err := s.repo.HasChildren(ctx, companyID, id)
			if err != nil {
				return Account{}, err
			}
			if hasChildren {
				return Account{}, fmt.Errorf("%w: account with children cannot become detail", shared.ErrValidation)
			}
		} else {
			referenced, err := s.repo.HasJournalLines(ctx, id)
			if err != nil {
				return Account{}, err
			}
			if referenced {
				return Account{}, fmt.Errorf("%w: account with journal lines must stay detail", shared.ErrValidation)
			}
		}
		account.IsDetail = *req.IsDetail
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Delete removes an account that has no children and was never posted to.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	hasChildren, err := s.repo.HasChildren(ctx, companyID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.ErrAccountHasChildren
	}
	referenced, err := s.repo.HasJournalLines(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.ErrAccountReferenced
	}
	return s.repo.Delete(ctx, companyID, id)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Account, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns all accounts ordered by code.
func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.List(ctx, companyID)
}

// Tree returns the full hierarchy, roots sorted by code and every
// parent emitted before its children.
func (s *Service) Tree(ctx context.Context, companyID int64) ([]*TreeNode, error) {
	accounts, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	nodes := make(map[int64]*TreeNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &TreeNode{Account: a}
	}
	var roots []*TreeNode
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sortTree(roots)
	return roots, nil
}

func sortTree(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Code < nodes[j].Code })
	for _, n := range nodes {
		sortTree(n.Children)
	}
}

// RequireDetail resolves an account that may receive postings: it must
// exist, be active, and be a detail leaf.
func (s *Service) RequireDetail(ctx context.Context, companyID, id int64) (Account, error) {
	account, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Account{}, err
	}
	if !account.Active {
		return Account{}, shared.ErrAccountInactive
	}
	if !account.IsDetail {
		return Account{}, shared.ErrNotDetailAccount
	}
	return account, nil
}

// ListTypes returns the account type catalog.
func (s *Service) ListTypes(ctx context.Context, companyID int64) ([]AccountType, error) {
	return s.repo.ListTypes(ctx, companyID)
}

// CreateType inserts a new account type.
func (s *Service) CreateType(ctx context.Context, companyID int64, req CreateAccountTypeRequest) (AccountType, error) {
	return s.repo.InsertType(ctx, AccountType{
		CompanyID:      companyID,
		Code:           req.Code,
		Name:           req.Name,
		Nature:         Nature(req.Nature),
		AffectsBalance: req.AffectsBalance,
		AffectsResults: req.AffectsResults,
		SortOrder:      req.SortOrder,
	})
}
