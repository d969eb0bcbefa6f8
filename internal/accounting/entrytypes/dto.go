package entrytypes

// CreateEntryTypeRequest carries the fields for a new entry type.
type CreateEntryTypeRequest struct {
	Code        string `json:"code" validate:"required,max=20,alphanum"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// UpdateEntryTypeRequest carries partial entry type edits. Codes are
// immutable once created so existing entries keep their numbering scope.
type UpdateEntryTypeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Active      *bool   `json:"active,omitempty"`
}
