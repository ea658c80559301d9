package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "shopmetrics/internal/errors"
	"shopmetrics/internal/exporter"
	"shopmetrics/internal/services"
	"shopmetrics/internal/shared/testutil"
	api "shopmetrics/pkg/contracts/api/v1"
	"shopmetrics/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Report(ctx context.Context, req api.ReportRequest) (*domain.Report, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) KPIs(ctx context.Context, req api.ReportRequest) (*api.KPIResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.KPIResponse), args.Error(1)
}

func (m *MockReportService) Filters(ctx context.Context, req api.FiltersRequest) (*api.FiltersResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.FiltersResponse), args.Error(1)
}

func (m *MockReportService) Sales(ctx context.Context, req api.ReportRequest) (*domain.SalesDataset, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesDataset), args.Error(1)
}

func (m *MockReportService) Refresh(ctx context.Context) (*api.RefreshResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.RefreshResponse), args.Error(1)
}

func newTestRouter(t *testing.T, svc ReportServiceInterface) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewReportHandler(svc, nil, logger, apierrors.NewErrorHandler(logger, false))
	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func sampleReport() *domain.Report {
	prev := 2022
	return &domain.Report{
		AnalysisPeriod:   2023,
		ComparisonPeriod: &prev,
		GeneratedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		RevenueMetrics: domain.AvailableSection(domain.RevenueMetrics{
			Year:              2023,
			TotalRevenue:      350,
			TotalOrders:       2,
			TotalItemsSold:    3,
			AverageOrderValue: 175,
			Comparison: &domain.RevenueComparison{
				PreviousYear:      2022,
				PreviousRevenue:   450,
				RevenueGrowthRate: domain.NewGrowthRate(350, 450),
			},
		}),
		MonthlyTrends:         domain.AvailableSection([]domain.MonthlyTrend{{Month: 1, Revenue: 150, Orders: 1}}),
		ProductPerformance:    domain.UnavailableSection[domain.ProductPerformance]("product_category_name column not available"),
		GeographicPerformance: domain.AvailableSection([]domain.StatePerformance{{State: "CA", Revenue: 150, Orders: 1}}),
		CustomerSatisfaction:  domain.AvailableSection(domain.CustomerSatisfaction{}),
		DeliveryPerformance:   domain.AvailableSection(domain.DeliveryPerformance{}),
		ReviewDistribution:    domain.AvailableSection([]domain.ReviewScoreShare{}),
		DeliverySatisfaction:  domain.AvailableSection([]domain.DeliverySatisfaction{}),
	}
}

func TestReportHandler_GetReport(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:  "report with explicit period",
			query: "?year=2023&previous_year=2022&status=all&top_n=5",
			setupMock: func(m *MockReportService) {
				m.On("Report", mock.MatchedBy(func(req api.ReportRequest) bool {
					return req.Year != nil && *req.Year == 2023 &&
						req.PreviousYear != nil && *req.PreviousYear == 2022 &&
						req.Status != nil && *req.Status == "all" &&
						req.TopN != nil && *req.TopN == 5 &&
						req.Month == nil
				})).Return(sampleReport(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: []string{
				`"analysis_period":2023`,
				`"total_revenue":350`,
				`"product_performance":{"unavailable":true,"reason":"product_category_name column not available"}`,
			},
		},
		{
			name:  "defaults left to the service",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("Report", api.ReportRequest{}).Return(sampleReport(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"comparison_period":2022`},
		},
		{
			name:           "invalid month",
			query:          "?month=13",
			setupMock:      func(m *MockReportService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"VALIDATION_FAILED"`, `"field":"month"`},
		},
		{
			name:           "non-numeric year",
			query:          "?year=abc",
			setupMock:      func(m *MockReportService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"INVALID_PARAMETER"`},
		},
		{
			name:  "data not loaded",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("Report", mock.Anything).Return(nil, apierrors.NewNotLoadedError("sales data"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   []string{`"/errors/data/not-loaded"`},
		},
		{
			name:  "missing required column",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("Report", mock.Anything).Return(nil, apierrors.NewValidationError([]string{"price"}))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`price`},
		},
		{
			name:  "unexpected error",
			query: "",
			setupMock: func(m *MockReportService) {
				m.On("Report", mock.Anything).Return(nil, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"Internal Server Error"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)
			router := newTestRouter(t, svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_GetKPIs(t *testing.T) {
	svc := new(MockReportService)
	prev := 2022
	svc.On("KPIs", mock.MatchedBy(func(req api.ReportRequest) bool {
		return req.Year != nil && *req.Year == 2023
	})).Return(&api.KPIResponse{
		Year:         2023,
		PreviousYear: &prev,
		Cards: []api.KPICard{{
			Key:   "total_revenue",
			Label: "Total Revenue",
			Value: "$350",
			Raw:   350,
			Trend: &domain.Trend{Available: true, Arrow: "↘", Class: "trend-negative", Change: -22.22, Text: "↘ -22.22%"},
		}},
	}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis?year=2023", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.KPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, "$350", resp.Cards[0].Value)
	assert.Equal(t, "trend-negative", resp.Cards[0].Trend.Class)
	svc.AssertExpectations(t)
}

func TestReportHandler_GetFilters(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Filters", mock.MatchedBy(func(req api.FiltersRequest) bool {
		return req.Year != nil && *req.Year == 2022
	})).Return(&api.FiltersResponse{
		Years:       []int{2022, 2023},
		Year:        2022,
		Months:      []int{1, 2},
		DefaultYear: 2023,
		Statuses:    []string{"delivered", "shipped"},
	}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/filters?year=2022", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"years":[2022,2023],"year":2022,"months":[1,2],"default_year":2023,"statuses":["delivered","shipped"]}`,
		rec.Body.String())
	svc.AssertExpectations(t)
}

func TestReportHandler_Refresh(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockReportService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "refresh succeeds",
			setupMock: func(m *MockReportService) {
				m.On("Refresh").Return(&api.RefreshResponse{
					Tables:    map[string]int{domain.TableOrders: 5},
					SalesRows: 5,
					Duration:  "10ms",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"sales_rows":5`,
		},
		{
			name: "refresh already running",
			setupMock: func(m *MockReportService) {
				m.On("Refresh").Return(nil, services.ErrRefreshInProgress)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"REFRESH_IN_PROGRESS"`,
		},
		{
			name: "missing data file",
			setupMock: func(m *MockReportService) {
				m.On("Refresh").Return(nil, apierrors.NewMissingFileError("ecommerce_data/orders_dataset.csv"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"/errors/data/not-found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_RefreshRejectsGet(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, new(MockReportService)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestReportHandler_ExportSalesCSV(t *testing.T) {
	score := 5
	ds := domain.NewSalesDataset(domain.SalesColumns, []domain.SalesRecord{
		{OrderID: "ord1", OrderItemID: 1, ProductID: "p1", Price: 100, TotalItemValue: 100,
			OrderStatus: "delivered", PurchaseYear: 2023, PurchaseMonth: 1,
			ProductCategoryName: "electronics", CustomerState: "CA", ReviewScore: &score},
		{OrderID: "ord2", OrderItemID: 1, ProductID: "p2", Price: 50.5, TotalItemValue: 50.5,
			OrderStatus: "delivered", PurchaseYear: 2023, PurchaseMonth: 2},
	})

	svc := new(MockReportService)
	svc.On("Sales", mock.MatchedBy(func(req api.ReportRequest) bool {
		return req.Year != nil && *req.Year == 2023
	})).Return(ds, nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/sales.csv?year=2023", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"sales_")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufefforder_id,"))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "50.50")
	svc.AssertExpectations(t)
}

func TestReportHandler_ExportReportXLSX(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Report", mock.Anything).Return(sampleReport(), nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/report.xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_2023_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, exporter.ReportSheets, f.GetSheetList())
}

func TestReportHandler_ExportNotLoaded(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Sales", mock.Anything).Return(nil, apierrors.NewNotLoadedError("sales data"))

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export/sales.csv", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}
