package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmetrics/internal/config"
	"shopmetrics/internal/shared/testutil"
	"shopmetrics/pkg/contracts/domain"
)

func newTestApplication(t *testing.T, dataDir string, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Data.Dir = dataDir
	cfg.Security.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })
	return app
}

func serve(app *Application, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNewApplicationRequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil)
	assert.Error(t, err)
}

func TestNewApplicationWiring(t *testing.T) {
	app := newTestApplication(t, t.TempDir(), func(cfg *config.Config) {
		cfg.Server.Port = 9191
	})

	assert.Equal(t, ":9191", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
	assert.NotNil(t, app.ReportService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.OTelProviders.PrometheusHTTP)
}

func TestLoadData(t *testing.T) {
	tests := []struct {
		name    string
		dataDir func(t *testing.T) string
		noLoad  bool
		wantErr bool
		loaded  bool
	}{
		{
			name:    "loads fixture",
			dataDir: func(t *testing.T) string { return testutil.WriteSalesFixture(t) },
			loaded:  true,
		},
		{
			name: "missing orders file is fatal",
			dataDir: func(t *testing.T) string {
				return testutil.DefaultSalesFixture().Without(domain.FileOrders).Write(t)
			},
			wantErr: true,
		},
		{
			name:    "load disabled",
			dataDir: func(t *testing.T) string { return t.TempDir() },
			noLoad:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication(t, tt.dataDir(t), func(cfg *config.Config) {
				cfg.Data.LoadOnStartup = !tt.noLoad
			})

			err := app.LoadData(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			loaded, _ := app.ReportService.Loaded()
			assert.Equal(t, tt.loaded, loaded)
		})
	}
}

func TestRouterEndToEnd(t *testing.T) {
	app := newTestApplication(t, testutil.WriteSalesFixture(t), nil)

	rec := serve(app, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(app, http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(app, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"sales_rows"`)

	rec = serve(app, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, http.MethodGet, "/api/report?year=2023&previous_year=2022")
	require.Equal(t, http.StatusOK, rec.Code)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, float64(2023), report["analysis_period"])
	revenue := report["revenue_metrics"].(map[string]interface{})
	assert.Equal(t, float64(350), revenue["total_revenue"])

	rec = serve(app, http.MethodGet, "/api/filters")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"years":[2022,2023]`)

	rec = serve(app, http.MethodGet, "/api/export/sales.csv?year=2023")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rec = serve(app, http.MethodGet, "/api/report?month=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(app, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "data_loads_total")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouterRateLimit(t *testing.T) {
	app := newTestApplication(t, t.TempDir(), func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health/live").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, http.MethodGet, "/api/health/live").Code)
}
