package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shopmetrics/internal/analytics"
	"shopmetrics/pkg/contracts/domain"
)

func sampleReport(t *testing.T, ds *domain.SalesDataset, previous *int) *domain.Report {
	t.Helper()
	calc, err := analytics.NewCalculator(ds, analytics.DefaultConfig())
	require.NoError(t, err)
	year := 2023
	return calc.GenerateComprehensiveReport(&year, previous)
}

func reportDataset() *domain.SalesDataset {
	return domain.NewSalesDataset(domain.SalesColumns, []domain.SalesRecord{
		{OrderID: "ord1", Price: 100, PurchaseYear: 2023, PurchaseMonth: 1, ProductCategoryName: "electronics", CustomerState: "SP", ReviewScore: intPtr(5), DeliveryDays: intPtr(3)},
		{OrderID: "ord1", Price: 50, PurchaseYear: 2023, PurchaseMonth: 1, ProductCategoryName: "books", CustomerState: "SP", ReviewScore: intPtr(5), DeliveryDays: intPtr(3)},
		{OrderID: "ord2", Price: 200, PurchaseYear: 2023, PurchaseMonth: 2, ProductCategoryName: "electronics", CustomerState: "RJ", ReviewScore: intPtr(4), DeliveryDays: intPtr(9)},
		{OrderID: "ord3", Price: 450, PurchaseYear: 2022, PurchaseMonth: 1, ProductCategoryName: "books", CustomerState: "MG"},
	})
}

func openWorkbook(t *testing.T, report *domain.Report) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteReportXLSX(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func rowsOf(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

// lookup returns the value next to label in a two-column metrics sheet
func lookup(rows [][]string, label string) string {
	for _, r := range rows {
		if len(r) >= 2 && r[0] == label {
			return r[1]
		}
	}
	return ""
}

func TestWriteReportXLSX(t *testing.T) {
	previous := 2022
	f := openWorkbook(t, sampleReport(t, reportDataset(), &previous))

	assert.Equal(t, ReportSheets, f.GetSheetList())

	summary := rowsOf(t, f, SheetSummary)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, "2023", lookup(summary, "Analysis Period"))
	assert.Equal(t, "350", lookup(summary, "Total Revenue"))
	assert.Equal(t, "2", lookup(summary, "Total Orders"))
	assert.Equal(t, "175", lookup(summary, "Average Order Value"))
	assert.Equal(t, "450", lookup(summary, "Previous Revenue"))
	assert.Equal(t, "-22.22%", lookup(summary, "Revenue Growth"))

	monthly := rowsOf(t, f, SheetMonthlyTrends)
	require.Len(t, monthly, 3)
	assert.Equal(t, []string{"Jan", "150", "1", "N/A"}, monthly[1])
	assert.Equal(t, []string{"Feb", "200", "1", "33.33%"}, monthly[2])

	categories := rowsOf(t, f, SheetCategories)
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"1", "electronics", "300", "2", "2", "85.71"}, categories[1])

	states := rowsOf(t, f, SheetStates)
	assert.Equal(t, "RJ", states[1][1])

	satisfaction := rowsOf(t, f, SheetSatisfaction)
	assert.Equal(t, "4.67", lookup(satisfaction, "Average Review Score"))

	delivery := rowsOf(t, f, SheetDelivery)
	assert.Equal(t, "3", lookup(delivery, "Median Delivery Days"))
	assert.Equal(t, "33.33", lookup(delivery, "Slow Delivery %"))

	reviews := rowsOf(t, f, SheetReviewScores)
	assert.Len(t, reviews, 6)

	speeds := rowsOf(t, f, SheetDeliveryReviews)
	require.Len(t, speeds, 3)
	assert.Equal(t, "1-3 days", speeds[1][0])
	assert.Equal(t, "8+ days", speeds[2][0])
}

func TestWriteReportXLSXUnavailableSections(t *testing.T) {
	cols := []string{domain.ColOrderID, domain.ColPrice, domain.ColPurchaseYear, domain.ColPurchaseMonth}
	report := sampleReport(t, domain.NewSalesDataset(cols, reportDataset().Rows), nil)

	f := openWorkbook(t, report)

	summary := rowsOf(t, f, SheetSummary)
	assert.Equal(t, "", lookup(summary, "Revenue Growth"), "no comparison rows without a previous year")

	for _, sheet := range []string{SheetCategories, SheetStates, SheetSatisfaction, SheetDelivery, SheetReviewScores, SheetDeliveryReviews} {
		rows := rowsOf(t, f, sheet)
		require.NotEmpty(t, rows, sheet)
		assert.Equal(t, unavailableLabel, rows[0][0], sheet)
		assert.Contains(t, rows[0][1], "column unavailable", sheet)
	}
}

func TestWriteReportXLSXNoReviews(t *testing.T) {
	report := sampleReport(t, domain.NewSalesDataset(domain.SalesColumns, nil), nil)

	f := openWorkbook(t, report)

	assert.Equal(t, "0", lookup(rowsOf(t, f, SheetSatisfaction), "Total Reviews"))
	assert.Equal(t, "0", lookup(rowsOf(t, f, SheetDelivery), "Total Deliveries"))
	assert.Len(t, rowsOf(t, f, SheetMonthlyTrends), 1, "header only")
}

func TestExportReportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "report_2023.xlsx")

	require.NoError(t, ExportReportXLSX(path, sampleReport(t, reportDataset(), nil)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetSummary, "B3")
	require.NoError(t, err)
	assert.Equal(t, "350", v)
}
