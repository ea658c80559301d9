package analytics

import (
	"log/slog"

	"github.com/shopspring/decimal"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/pkg/contracts/domain"
)

// MandatoryColumns must be present for any metric to be computed
var MandatoryColumns = []string{
	domain.ColOrderID, domain.ColPrice, domain.ColPurchaseYear, domain.ColPurchaseMonth,
}

// DefaultTopN is the category ranking size used when none is configured
const DefaultTopN = 10

// Config holds calculator options
type Config struct {
	TopN   int
	Logger *slog.Logger
}

// DefaultConfig returns the default calculator options
func DefaultConfig() Config {
	return Config{TopN: DefaultTopN}
}

// Calculator computes metrics over one immutable sales dataset
type Calculator struct {
	data   *domain.SalesDataset
	topN   int
	logger *slog.Logger
}

// NewCalculator validates that data carries the mandatory columns. A dataset
// with the columns but no rows is valid and yields zero-valued metrics.
func NewCalculator(data *domain.SalesDataset, cfg Config) (*Calculator, error) {
	if data == nil || data.Table == nil {
		return nil, apperrors.NewValidationError(MandatoryColumns)
	}
	if missing := data.MissingColumns(MandatoryColumns...); len(missing) > 0 {
		return nil, apperrors.NewValidationError(missing)
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Calculator{
		data:   data,
		topN:   cfg.TopN,
		logger: cfg.Logger.With(slog.String("component", "metrics_calculator")),
	}, nil
}

// Data returns the dataset the calculator reads
func (c *Calculator) Data() *domain.SalesDataset {
	return c.data
}

func (c *Calculator) requireColumn(col string) error {
	if !c.data.HasColumn(col) {
		return apperrors.NewColumnUnavailableError(col)
	}
	return nil
}

func (c *Calculator) rowsForYear(year int) []domain.SalesRecord {
	var out []domain.SalesRecord
	for _, r := range c.data.Rows {
		if r.PurchaseYear == year {
			out = append(out, r)
		}
	}
	return out
}

// resolveYear maps a nil year to the latest year in the dataset
func (c *Calculator) resolveYear(year *int) int {
	if year != nil {
		return *year
	}
	return c.data.DefaultYear(0)
}

// aggregate accumulates revenue, items and distinct orders. Revenue is
// summed as decimals so totals of cent prices stay exact.
type aggregate struct {
	revenue decimal.Decimal
	items   int
	orders  map[string]struct{}
}

func newAggregate() *aggregate {
	return &aggregate{orders: make(map[string]struct{})}
}

func (a *aggregate) add(r domain.SalesRecord) {
	a.revenue = a.revenue.Add(decimal.NewFromFloat(r.Price))
	a.items++
	a.orders[r.OrderID] = struct{}{}
}

func (a *aggregate) Revenue() float64 {
	return a.revenue.InexactFloat64()
}

func (a *aggregate) Orders() int {
	return len(a.orders)
}

// AverageOrderValue is the mean of the per-order totals
func (a *aggregate) AverageOrderValue() float64 {
	if len(a.orders) == 0 {
		return 0
	}
	return a.revenue.Div(decimal.NewFromInt(int64(len(a.orders)))).InexactFloat64()
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
