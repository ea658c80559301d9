package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shopmetrics/internal/exporter"
	"shopmetrics/internal/shared/testutil"
	"shopmetrics/pkg/contracts"
)

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"unknown format", []string{"-format", "yaml"}, exitUsage, "unknown format"},
		{"month out of range", []string{"-month", "13"}, exitUsage, "month must be between 1 and 12"},
		{"stray argument", []string{"extra"}, exitUsage, "unexpected arguments"},
		{"unknown flag", []string{"-nope"}, exitUsage, "flag provided but not defined"},
		{"help", []string{"-h"}, exitOK, "-data"},
		{"sales with data", []string{"-sales", "s.csv", "-data", "d"}, exitUsage, "mutually exclusive"},
		{"sales with csv", []string{"-sales", "s.csv", "-csv", "o.csv"}, exitUsage, "mutually exclusive"},
		{"sales with month", []string{"-sales", "s.csv", "-month", "2"}, exitUsage, "do not apply to -sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr.String(), tt.wantErr)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunJSON(t *testing.T) {
	dir := testutil.WriteSalesFixture(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", dir, "-year", "2023", "-format", "json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, float64(2023), report["analysis_period"])
	assert.Equal(t, float64(2022), report["comparison_period"])

	revenue := report["revenue_metrics"].(map[string]interface{})
	assert.Equal(t, float64(350), revenue["total_revenue"])
	assert.Equal(t, float64(2), revenue["total_orders"])
}

func TestRunText(t *testing.T) {
	dir := testutil.WriteSalesFixture(t)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", dir, "-year", "2023"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "Business Metrics Report 2023 vs 2022\n"))
	for _, want := range []string{"Revenue", "Total revenue", "$350.00", "Monthly trends", "Delivery"} {
		assert.Contains(t, out, want)
	}
}

func TestRunWritesExports(t *testing.T) {
	dir := testutil.WriteSalesFixture(t)
	out := t.TempDir()
	xlsxPath := filepath.Join(out, "report.xlsx")
	csvPath := filepath.Join(out, "sales.csv")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", dir, "-year", "2023", "-format", "json", "-xlsx", xlsxPath, "-csv", csvPath}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	wb, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, exporter.ReportSheets, wb.GetSheetList())

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Greater(t, len(lines), 1)
	assert.Contains(t, lines[0], "order_id")
}

func TestRunMissingData(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", filepath.Join(t.TempDir(), "absent")}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "report failed")
	assert.Empty(t, stdout.String())
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-version", "-data", filepath.Join(t.TempDir(), "absent")}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout.String(), "shopmetrics "+contracts.Version))
	assert.Empty(t, stderr.String())
}

func TestRunReadsEnvironmentConfig(t *testing.T) {
	t.Setenv("SHOPMETRICS_DATA_DIR", testutil.WriteSalesFixture(t))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-year", "2023", "-format", "json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, float64(2023), report["analysis_period"])
}

func TestRunRejectsInvalidEnvironmentConfig(t *testing.T) {
	t.Setenv("SHOPMETRICS_REPORT_TOP_N", "0")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", testutil.WriteSalesFixture(t)}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "config validation failed")
	assert.Empty(t, stdout.String())
}

func TestRunFromSalesExport(t *testing.T) {
	dir := testutil.WriteSalesFixture(t)
	csvPath := filepath.Join(t.TempDir(), "sales.csv")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-data", dir, "-year", "2023", "-format", "json", "-csv", csvPath}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	stdout.Reset()
	code = run([]string{"-sales", csvPath, "-format", "json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, float64(2023), report["analysis_period"])
	assert.Nil(t, report["comparison_period"], "the export holds a single year")

	revenue := report["revenue_metrics"].(map[string]interface{})
	assert.Equal(t, float64(350), revenue["total_revenue"])
	assert.Equal(t, float64(2), revenue["total_orders"])
}

func TestRunMissingSalesFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-sales", filepath.Join(t.TempDir(), "absent.csv")}, &stdout, &stderr)

	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr.String(), "failed to open sales file")
}
