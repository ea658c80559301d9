package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"shopmetrics/internal/analytics"
	"shopmetrics/pkg/contracts/domain"
)

// writeText renders report as aligned plain-text sections
func writeText(w io.Writer, report *domain.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	title := fmt.Sprintf("Business Metrics Report %d", report.AnalysisPeriod)
	if report.ComparisonPeriod != nil {
		title += fmt.Sprintf(" vs %d", *report.ComparisonPeriod)
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintf(tw, "Generated %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	heading(tw, "Revenue")
	if s := report.RevenueMetrics; !s.Available {
		unavailable(tw, s.Reason)
	} else {
		m := s.Value
		row(tw, "Total revenue", analytics.FormatCurrencyPrecise(m.TotalRevenue), growth(m.Comparison, func(c *domain.RevenueComparison) domain.GrowthRate { return c.RevenueGrowthRate }))
		row(tw, "Total orders", analytics.FormatCount(m.TotalOrders), growth(m.Comparison, func(c *domain.RevenueComparison) domain.GrowthRate { return c.OrderGrowthRate }))
		row(tw, "Average order value", analytics.FormatCurrencyPrecise(m.AverageOrderValue), growth(m.Comparison, func(c *domain.RevenueComparison) domain.GrowthRate { return c.AOVGrowthRate }))
		row(tw, "Items sold", analytics.FormatCount(m.TotalItemsSold), "")
	}

	heading(tw, "Monthly trends")
	if s := report.MonthlyTrends; !s.Available {
		unavailable(tw, s.Reason)
	} else {
		for _, t := range s.Value {
			row(tw, analytics.MonthName(t.Month), analytics.FormatCurrencyPrecise(t.Revenue), t.RevenueGrowth.String())
		}
		revenueChart(tw, s.Value)
	}

	heading(tw, "Top categories")
	if s := report.ProductPerformance; !s.Available {
		unavailable(tw, s.Reason)
	} else {
		for _, c := range s.Value.TopCategories {
			row(tw, c.Category, analytics.FormatCurrencyPrecise(c.TotalRevenue), analytics.FormatPercentage(c.RevenueShare, 1))
		}
	}

	heading(tw, "Revenue by state")
	if s := report.GeographicPerformance; !s.Available {
		unavailable(tw, s.Reason)
	} else {
		for _, st := range s.Value {
			row(tw, st.State, analytics.FormatCurrencyPrecise(st.Revenue), analytics.FormatCount(st.Orders)+" orders")
		}
	}

	heading(tw, "Customer satisfaction")
	if s := report.CustomerSatisfaction; !s.Available {
		unavailable(tw, s.Reason)
	} else if !s.Value.HasData {
		unavailable(tw, "no reviews in period")
	} else {
		c := s.Value
		row(tw, "Average review score", strconv.FormatFloat(c.AvgReviewScore, 'f', 2, 64)+"/5", "")
		row(tw, "Reviews", analytics.FormatCount(c.TotalReviews), "")
		row(tw, "5 star", analytics.FormatPercentage(c.Score5Percentage, 1), "")
		row(tw, "4+ stars", analytics.FormatPercentage(c.Score4PlusPercentage, 1), "")
		row(tw, "1-2 stars", analytics.FormatPercentage(c.Score1To2Percentage, 1), "")
	}

	heading(tw, "Delivery")
	if s := report.DeliveryPerformance; !s.Available {
		unavailable(tw, s.Reason)
	} else if !s.Value.HasData {
		unavailable(tw, "no delivered orders in period")
	} else {
		d := s.Value
		row(tw, "Average delivery", strconv.FormatFloat(d.AvgDeliveryDays, 'f', 1, 64)+" days", "")
		row(tw, "Median delivery", strconv.FormatFloat(d.MedianDeliveryDays, 'f', 1, 64)+" days", "")
		row(tw, "Fast deliveries", analytics.FormatPercentage(d.FastDeliveryPercentage, 1), "")
		row(tw, "Slow deliveries", analytics.FormatPercentage(d.SlowDeliveryPercentage, 1), "")
	}

	return tw.Flush()
}

const chartWidth = 24

// revenueChart draws one bar per month scaled to the best month, above an
// axis labelled at zero, half and full scale.
func revenueChart(w io.Writer, trends []domain.MonthlyTrend) {
	peak := 0.0
	for _, t := range trends {
		peak = math.Max(peak, t.Revenue)
	}
	if peak <= 0 {
		return
	}
	fmt.Fprintln(w)
	for _, t := range trends {
		n := int(math.Round(t.Revenue / peak * chartWidth))
		fmt.Fprintf(w, "  %-3s |%s\n", analytics.MonthName(t.Month), strings.Repeat("#", max(n, 0)))
	}
	fmt.Fprintf(w, "      %s\n", axisLabels(peak))
}

func axisLabels(peak float64) string {
	lo, mid, hi := "$0", analytics.FormatCurrencyAxis(peak/2), analytics.FormatCurrencyAxis(peak)
	line := lo + strings.Repeat(" ", max(chartWidth/2-len(lo)-len(mid)/2, 1)) + mid
	return line + strings.Repeat(" ", max(chartWidth+1-len(line)-len(hi), 1)) + hi
}

func heading(w io.Writer, name string) {
	fmt.Fprintf(w, "\n%s\n", name)
}

func row(w io.Writer, label, value, extra string) {
	fmt.Fprintf(w, "  %s\t%s\t%s\n", label, value, extra)
}

func unavailable(w io.Writer, reason string) {
	fmt.Fprintf(w, "  unavailable: %s\n", reason)
}

func growth(c *domain.RevenueComparison, pick func(*domain.RevenueComparison) domain.GrowthRate) string {
	if c == nil {
		return ""
	}
	return "growth " + pick(c).String()
}
