// Package api contains the HTTP API contracts of shopmetrics.
// Version v1 represents the current stable API version.
package api

// ReportRequest selects the period and filters of a report. Nil fields fall
// back to the configured defaults.
type ReportRequest struct {
	Year         *int    `json:"year,omitempty" form:"year" validate:"omitempty,min=1900,max=2100"`
	PreviousYear *int    `json:"previous_year,omitempty" form:"previous_year" validate:"omitempty,min=1900,max=2100"`
	Month        *int    `json:"month,omitempty" form:"month" validate:"omitempty,min=1,max=12"`
	Status       *string `json:"status,omitempty" form:"status" validate:"omitempty,max=64"`
	TopN         *int    `json:"top_n,omitempty" form:"top_n" validate:"omitempty,min=1,max=100"`
}

// FiltersRequest asks for the filter options of one year
type FiltersRequest struct {
	Year *int `json:"year,omitempty" form:"year" validate:"omitempty,min=1900,max=2100"`
}
