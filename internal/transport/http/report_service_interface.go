package http

import (
	"context"

	api "shopmetrics/pkg/contracts/api/v1"
	"shopmetrics/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the API exposes
type ReportServiceInterface interface {
	Report(ctx context.Context, req api.ReportRequest) (*domain.Report, error)
	KPIs(ctx context.Context, req api.ReportRequest) (*api.KPIResponse, error)
	Filters(ctx context.Context, req api.FiltersRequest) (*api.FiltersResponse, error)
	Sales(ctx context.Context, req api.ReportRequest) (*domain.SalesDataset, error)
	Refresh(ctx context.Context) (*api.RefreshResponse, error)
}
