package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"shopmetrics/pkg/contracts/domain"
)

// AnalyzeProductPerformance ranks product categories of year by revenue.
// Revenue share is measured against the whole year's revenue, including
// rows without a category, which are not ranked themselves. A non-positive
// topN falls back to the calculator's configured size.
func (c *Calculator) AnalyzeProductPerformance(year, topN int) (domain.ProductPerformance, error) {
	if err := c.requireColumn(domain.ColProductCategoryName); err != nil {
		return domain.ProductPerformance{}, err
	}
	if topN <= 0 {
		topN = c.topN
	}

	total := decimal.Zero
	byCategory := make(map[string]*aggregate)
	for _, r := range c.rowsForYear(year) {
		total = total.Add(decimal.NewFromFloat(r.Price))
		if r.ProductCategoryName == "" {
			continue
		}
		agg, ok := byCategory[r.ProductCategoryName]
		if !ok {
			agg = newAggregate()
			byCategory[r.ProductCategoryName] = agg
		}
		agg.add(r)
	}

	all := make([]domain.CategoryPerformance, 0, len(byCategory))
	for name, agg := range byCategory {
		share := 0.0
		if !total.IsZero() {
			share = agg.revenue.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		all = append(all, domain.CategoryPerformance{
			Category:     name,
			TotalRevenue: agg.Revenue(),
			Orders:       agg.Orders(),
			ItemsSold:    agg.items,
			RevenueShare: share,
		})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalRevenue != all[j].TotalRevenue {
			return all[i].TotalRevenue > all[j].TotalRevenue
		}
		return all[i].Category < all[j].Category
	})

	n := topN
	if n > len(all) {
		n = len(all)
	}
	top := make([]domain.CategoryPerformance, n)
	copy(top, all[:n])

	return domain.ProductPerformance{
		TopN:          topN,
		AllCategories: all,
		TopCategories: top,
	}, nil
}

// AnalyzeGeographicPerformance ranks customer states of year by revenue.
// Rows without a state are not ranked.
func (c *Calculator) AnalyzeGeographicPerformance(year int) ([]domain.StatePerformance, error) {
	if err := c.requireColumn(domain.ColCustomerState); err != nil {
		return nil, err
	}

	byState := make(map[string]*aggregate)
	for _, r := range c.rowsForYear(year) {
		if r.CustomerState == "" {
			continue
		}
		agg, ok := byState[r.CustomerState]
		if !ok {
			agg = newAggregate()
			byState[r.CustomerState] = agg
		}
		agg.add(r)
	}

	states := make([]domain.StatePerformance, 0, len(byState))
	for state, agg := range byState {
		states = append(states, domain.StatePerformance{
			State:   state,
			Revenue: agg.Revenue(),
			Orders:  agg.Orders(),
		})
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].Revenue != states[j].Revenue {
			return states[i].Revenue > states[j].Revenue
		}
		return states[i].State < states[j].State
	})
	return states, nil
}
