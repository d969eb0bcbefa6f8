// Package entrytypes manages the catalog of journal entry types. Each
// type carries its own posting sequence, so a company can number its
// Diario, Ingreso, and Egreso entries independently.
package entrytypes

import "time"

// EntryType is a catalog row. System types are seeded per company and
// cannot be removed.
type EntryType struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SystemTypes are created for every company so the journal always has a
// default catalog to post against.
var SystemTypes = []EntryType{
	{Code: "DIARIO", Name: "Diario", Description: "Asientos de diario generales", IsSystem: true, Active: true},
	{Code: "INGRESO", Name: "Ingreso", Description: "Asientos de ingresos", IsSystem: true, Active: true},
	{Code: "EGRESO", Name: "Egreso", Description: "Asientos de egresos", IsSystem: true, Active: true},
}
