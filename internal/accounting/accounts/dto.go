package accounts

// CreateAccountRequest carries the fields for a new account.
type CreateAccountRequest struct {
	Code          string `json:"code" validate:"required,max=20"`
	Name          string `json:"name" validate:"required,max=255"`
	AccountTypeID int64  `json:"account_type_id" validate:"required,gt=0"`
	ParentID      *int64 `json:"parent_id,omitempty"`
	IsDetail      bool   `json:"is_detail"`
	Active        *bool  `json:"active,omitempty"`
}

// UpdateAccountRequest carries partial account edits.
type UpdateAccountRequest struct {
	Code          *string `json:"code,omitempty" validate:"omitempty,max=20"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=255"`
	AccountTypeID *int64  `json:"account_type_id,omitempty" validate:"omitempty,gt=0"`
	IsDetail      *bool   `json:"is_detail,omitempty"`
	Active        *bool   `json:"active,omitempty"`
}

// CreateAccountTypeRequest carries the fields for a new account type.
type CreateAccountTypeRequest struct {
	Code           string `json:"code" validate:"required,max=20"`
	Name           string `json:"name" validate:"required,max=100"`
	Nature         string `json:"nature" validate:"required,oneof=deudora acreedora"`
	AffectsBalance bool   `json:"affects_balance"`
	AffectsResults bool   `json:"affects_results"`
	SortOrder      int    `json:"sort_order" validate:"gte=0"`
}
