package api

import (
	"time"

	"shopmetrics/pkg/contracts/domain"
)

// FiltersResponse lists the values a dashboard can offer as filters
type FiltersResponse struct {
	Years       []int    `json:"years"`
	Year        int      `json:"year"`
	Months      []int    `json:"months"`
	DefaultYear int      `json:"default_year"`
	Statuses    []string `json:"statuses"`
}

// KPICard is one headline figure with its formatted value and trend
type KPICard struct {
	Key   string        `json:"key"`
	Label string        `json:"label"`
	Value string        `json:"value"`
	Raw   float64       `json:"raw"`
	Trend *domain.Trend `json:"trend,omitempty"`
}

// KPIResponse holds the KPI cards for a period
type KPIResponse struct {
	Year         int       `json:"year"`
	PreviousYear *int      `json:"previous_year,omitempty"`
	Cards        []KPICard `json:"cards"`
}

// RefreshResponse reports the outcome of reloading the data files
type RefreshResponse struct {
	LoadedAt  time.Time      `json:"loaded_at"`
	Tables    map[string]int `json:"tables"`
	SalesRows int            `json:"sales_rows"`
	Duration  string         `json:"duration"`
}
