package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shopmetrics/internal/analytics"
	"shopmetrics/pkg/contracts/domain"
)

// Report workbook sheets, in order
const (
	SheetSummary         = "Summary"
	SheetMonthlyTrends   = "Monthly Trends"
	SheetCategories      = "Categories"
	SheetStates          = "States"
	SheetSatisfaction    = "Satisfaction"
	SheetDelivery        = "Delivery"
	SheetReviewScores    = "Review Scores"
	SheetDeliveryReviews = "Delivery vs Reviews"
)

// ReportSheets lists the workbook sheets in order
var ReportSheets = []string{
	SheetSummary, SheetMonthlyTrends, SheetCategories, SheetStates,
	SheetSatisfaction, SheetDelivery, SheetReviewScores, SheetDeliveryReviews,
}

const unavailableLabel = "Unavailable"

// workbook records the first failure so sheet builders stay linear
type workbook struct {
	f           *excelize.File
	headerStyle int
	err         error
}

// BuildReportWorkbook renders report with one sheet per section. Unavailable
// sections carry their reason instead of a table. Callers own the returned
// file and must Close it.
func BuildReportWorkbook(report *domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	wb := &workbook{f: f}

	wb.headerStyle, wb.err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if wb.err == nil {
		wb.err = f.SetSheetName("Sheet1", SheetSummary)
	}
	for _, name := range ReportSheets[1:] {
		if wb.err != nil {
			break
		}
		_, wb.err = f.NewSheet(name)
	}

	wb.summary(report)
	wb.monthly(report.MonthlyTrends)
	wb.categories(report.ProductPerformance)
	wb.states(report.GeographicPerformance)
	wb.satisfaction(report.CustomerSatisfaction)
	wb.delivery(report.DeliveryPerformance)
	wb.reviews(report.ReviewDistribution)
	wb.deliveryReviews(report.DeliverySatisfaction)

	if wb.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build report workbook: %w", wb.err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteReportXLSX streams the report workbook to out
func WriteReportXLSX(out io.Writer, report *domain.Report) error {
	f, err := BuildReportWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportReportXLSX saves the report workbook at path
func ExportReportXLSX(path string, report *domain.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := BuildReportWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// table writes a styled header row followed by rows, freezing the header
func (wb *workbook) table(sheet string, headers []string, rows [][]any) {
	if wb.err != nil {
		return
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if wb.err = wb.f.SetSheetRow(sheet, "A1", &header); wb.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		wb.err = err
		return
	}
	if wb.err = wb.f.SetCellStyle(sheet, "A1", last, wb.headerStyle); wb.err != nil {
		return
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			wb.err = err
			return
		}
		if wb.err = wb.f.SetSheetRow(sheet, cell, &row); wb.err != nil {
			return
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		wb.err = err
		return
	}
	if wb.err = wb.f.SetColWidth(sheet, "A", lastCol, 20); wb.err != nil {
		return
	}
	wb.err = wb.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (wb *workbook) unavailable(sheet, reason string) {
	if wb.err != nil {
		return
	}
	row := []any{unavailableLabel, reason}
	wb.err = wb.f.SetSheetRow(sheet, "A1", &row)
}

func (wb *workbook) metrics(sheet string, rows [][]any) {
	wb.table(sheet, []string{"Metric", "Value"}, rows)
}

func (wb *workbook) summary(report *domain.Report) {
	s := report.RevenueMetrics
	if !s.Available {
		wb.unavailable(SheetSummary, s.Reason)
		return
	}
	m := s.Value
	rows := [][]any{
		{"Analysis Period", m.Year},
		{"Total Revenue", m.TotalRevenue},
		{"Total Orders", m.TotalOrders},
		{"Items Sold", m.TotalItemsSold},
		{"Average Order Value", m.AverageOrderValue},
	}
	if c := m.Comparison; c != nil {
		rows = append(rows,
			[]any{"Comparison Period", c.PreviousYear},
			[]any{"Previous Revenue", c.PreviousRevenue},
			[]any{"Previous Orders", c.PreviousOrders},
			[]any{"Previous Items Sold", c.PreviousItemsSold},
			[]any{"Previous Average Order Value", c.PreviousAverageOrderValue},
			[]any{"Revenue Growth", c.RevenueGrowthRate.String()},
			[]any{"Order Growth", c.OrderGrowthRate.String()},
			[]any{"AOV Growth", c.AOVGrowthRate.String()},
		)
	}
	rows = append(rows, []any{"Generated At", report.GeneratedAt.Format(TimestampLayout)})
	wb.metrics(SheetSummary, rows)
}

func (wb *workbook) monthly(s domain.Section[[]domain.MonthlyTrend]) {
	if !s.Available {
		wb.unavailable(SheetMonthlyTrends, s.Reason)
		return
	}
	rows := make([][]any, 0, len(s.Value))
	for _, t := range s.Value {
		rows = append(rows, []any{analytics.MonthName(t.Month), t.Revenue, t.Orders, t.RevenueGrowth.String()})
	}
	wb.table(SheetMonthlyTrends, []string{"Month", "Revenue", "Orders", "Revenue Growth"}, rows)
}

func (wb *workbook) categories(s domain.Section[domain.ProductPerformance]) {
	if !s.Available {
		wb.unavailable(SheetCategories, s.Reason)
		return
	}
	rows := make([][]any, 0, len(s.Value.AllCategories))
	for i, c := range s.Value.AllCategories {
		rows = append(rows, []any{i + 1, c.Category, c.TotalRevenue, c.Orders, c.ItemsSold, round2(c.RevenueShare)})
	}
	wb.table(SheetCategories, []string{"Rank", "Category", "Revenue", "Orders", "Items Sold", "Revenue Share %"}, rows)
}

func (wb *workbook) states(s domain.Section[[]domain.StatePerformance]) {
	if !s.Available {
		wb.unavailable(SheetStates, s.Reason)
		return
	}
	rows := make([][]any, 0, len(s.Value))
	for i, st := range s.Value {
		rows = append(rows, []any{i + 1, st.State, st.Revenue, st.Orders})
	}
	wb.table(SheetStates, []string{"Rank", "State", "Revenue", "Orders"}, rows)
}

func (wb *workbook) satisfaction(s domain.Section[domain.CustomerSatisfaction]) {
	if !s.Available {
		wb.unavailable(SheetSatisfaction, s.Reason)
		return
	}
	v := s.Value
	if !v.HasData {
		wb.metrics(SheetSatisfaction, [][]any{{"Total Reviews", 0}})
		return
	}
	wb.metrics(SheetSatisfaction, [][]any{
		{"Average Review Score", round2(v.AvgReviewScore)},
		{"Total Reviews", v.TotalReviews},
		{"5 Star %", round2(v.Score5Percentage)},
		{"4+ Star %", round2(v.Score4PlusPercentage)},
		{"1-2 Star %", round2(v.Score1To2Percentage)},
	})
}

func (wb *workbook) delivery(s domain.Section[domain.DeliveryPerformance]) {
	if !s.Available {
		wb.unavailable(SheetDelivery, s.Reason)
		return
	}
	v := s.Value
	if !v.HasData {
		wb.metrics(SheetDelivery, [][]any{{"Total Deliveries", 0}})
		return
	}
	wb.metrics(SheetDelivery, [][]any{
		{"Average Delivery Days", round2(v.AvgDeliveryDays)},
		{"Median Delivery Days", v.MedianDeliveryDays},
		{"Fast Delivery %", round2(v.FastDeliveryPercentage)},
		{"Slow Delivery %", round2(v.SlowDeliveryPercentage)},
		{"Total Deliveries", v.TotalDeliveries},
	})
}

func (wb *workbook) reviews(s domain.Section[[]domain.ReviewScoreShare]) {
	if !s.Available {
		wb.unavailable(SheetReviewScores, s.Reason)
		return
	}
	rows := make([][]any, 0, len(s.Value))
	for _, r := range s.Value {
		rows = append(rows, []any{r.Score, r.Count, round2(r.Percentage)})
	}
	wb.table(SheetReviewScores, []string{"Review Score", "Count", "Percentage"}, rows)
}

func (wb *workbook) deliveryReviews(s domain.Section[[]domain.DeliverySatisfaction]) {
	if !s.Available {
		wb.unavailable(SheetDeliveryReviews, s.Reason)
		return
	}
	rows := make([][]any, 0, len(s.Value))
	for _, d := range s.Value {
		rows = append(rows, []any{d.DeliverySpeed, round2(d.AvgReviewScore), d.Reviews})
	}
	wb.table(SheetDeliveryReviews, []string{"Delivery Speed", "Avg Review Score", "Reviews"}, rows)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
