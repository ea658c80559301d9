package analytics

import (
	"sort"

	"shopmetrics/pkg/contracts/domain"
)

// CalculateRevenueMetrics summarizes the current year and, when previous is
// set, compares it against that year. A nil current selects the latest year
// in the dataset. Growth against a zero base is reported as unavailable.
func (c *Calculator) CalculateRevenueMetrics(current, previous *int) (domain.RevenueMetrics, error) {
	year := c.resolveYear(current)
	cur := c.yearAggregate(year)

	metrics := domain.RevenueMetrics{
		Year:              year,
		TotalRevenue:      cur.Revenue(),
		TotalOrders:       cur.Orders(),
		TotalItemsSold:    cur.items,
		AverageOrderValue: cur.AverageOrderValue(),
	}

	if previous != nil {
		prev := c.yearAggregate(*previous)
		metrics.Comparison = &domain.RevenueComparison{
			PreviousYear:              *previous,
			PreviousRevenue:           prev.Revenue(),
			PreviousOrders:            prev.Orders(),
			PreviousItemsSold:         prev.items,
			PreviousAverageOrderValue: prev.AverageOrderValue(),
			RevenueGrowthRate:         domain.NewGrowthRate(cur.Revenue(), prev.Revenue()),
			OrderGrowthRate:           domain.NewGrowthRate(float64(cur.Orders()), float64(prev.Orders())),
			AOVGrowthRate:             domain.NewGrowthRate(cur.AverageOrderValue(), prev.AverageOrderValue()),
		}
	}

	return metrics, nil
}

func (c *Calculator) yearAggregate(year int) *aggregate {
	agg := newAggregate()
	for _, r := range c.data.Rows {
		if r.PurchaseYear == year {
			agg.add(r)
		}
	}
	return agg
}

// CalculateMonthlyTrends returns one row per month of year that has sales,
// in calendar order. Each row's growth is measured against the previous row
// of the result; the first row has no growth.
func (c *Calculator) CalculateMonthlyTrends(year int) ([]domain.MonthlyTrend, error) {
	byMonth := make(map[int]*aggregate)
	for _, r := range c.rowsForYear(year) {
		if r.PurchaseMonth < 1 || r.PurchaseMonth > 12 {
			continue
		}
		agg, ok := byMonth[r.PurchaseMonth]
		if !ok {
			agg = newAggregate()
			byMonth[r.PurchaseMonth] = agg
		}
		agg.add(r)
	}

	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Ints(months)

	trends := make([]domain.MonthlyTrend, 0, len(months))
	for i, m := range months {
		agg := byMonth[m]
		t := domain.MonthlyTrend{
			Month:   m,
			Revenue: agg.Revenue(),
			Orders:  agg.Orders(),
		}
		if i > 0 {
			t.RevenueGrowth = domain.NewGrowthRate(t.Revenue, trends[i-1].Revenue)
		}
		trends = append(trends, t)
	}
	return trends, nil
}
