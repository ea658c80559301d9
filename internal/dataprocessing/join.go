package dataprocessing

import (
	"log/slog"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/pkg/contracts/domain"
)

// SalesFilter restricts the sales dataset. Nil fields do not filter; set
// fields combine conjunctively. Status matching is exact and case-sensitive.
type SalesFilter struct {
	Year   *int
	Month  *int
	Status *string
}

func (f SalesFilter) matches(r *domain.SalesRecord) bool {
	if f.Year != nil && r.PurchaseYear != *f.Year {
		return false
	}
	if f.Month != nil && r.PurchaseMonth != *f.Month {
		return false
	}
	if f.Status != nil && r.OrderStatus != *f.Status {
		return false
	}
	return true
}

func (f SalesFilter) logAttrs() []any {
	var attrs []any
	if f.Year != nil {
		attrs = append(attrs, slog.Int("year", *f.Year))
	}
	if f.Month != nil {
		attrs = append(attrs, slog.Int("month", *f.Month))
	}
	if f.Status != nil {
		attrs = append(attrs, slog.String("status", *f.Status))
	}
	return attrs
}

// CreateSalesDataset left-joins order items with their order, product,
// customer and first review. Every order item yields at most one row; rows
// are removed only by the filter. Enrichment tables that were not processed
// leave their columns out of the dataset schema.
func (l *Loader) CreateSalesDataset(filter SalesFilter) (*domain.SalesDataset, error) {
	p := l.processed
	if p == nil || p.Orders == nil || p.OrderItems == nil {
		return nil, apperrors.NewNotLoadedError("processed data")
	}

	orders := indexFirst(p.Orders, func(o domain.Order) string { return o.OrderID })
	products := indexFirst(p.Products, func(x domain.Product) string { return x.ProductID })
	customers := indexFirst(p.Customers, func(c domain.Customer) string { return c.CustomerID })
	reviews := indexFirst(p.Reviews, func(r domain.Review) string { return r.OrderID })

	rows := make([]domain.SalesRecord, 0, p.OrderItems.Len())
	for _, item := range p.OrderItems.Rows {
		rec := domain.SalesRecord{
			OrderID:        item.OrderID,
			OrderItemID:    item.OrderItemID,
			ProductID:      item.ProductID,
			SellerID:       item.SellerID,
			Price:          item.Price,
			FreightValue:   item.FreightValue,
			TotalItemValue: item.TotalItemValue,
		}
		if o, ok := orders[item.OrderID]; ok {
			rec.CustomerID = o.CustomerID
			rec.OrderStatus = o.Status
			rec.PurchaseTimestamp = o.PurchaseTimestamp
			rec.DeliveredCustomerDate = o.DeliveredCustomerDate
			rec.PurchaseYear = o.PurchaseYear
			rec.PurchaseMonth = o.PurchaseMonth
			rec.DeliveryDays = o.DeliveryDays
		}
		if prod, ok := products[item.ProductID]; ok {
			rec.ProductCategoryName = prod.CategoryName
		}
		if c, ok := customers[rec.CustomerID]; ok && rec.CustomerID != "" {
			rec.CustomerState = c.State
			rec.CustomerCity = c.City
		}
		if r, ok := reviews[item.OrderID]; ok {
			rec.ReviewScore = r.Score
		}

		if filter.matches(&rec) {
			rows = append(rows, rec)
		}
	}

	ds := domain.NewSalesDataset(salesColumns(p), rows)
	l.logger.Debug("sales dataset created", append(filter.logAttrs(), slog.Int("rows", ds.Len()))...)
	return ds, nil
}

// indexFirst maps each key to the first row carrying it
func indexFirst[T any](t *domain.Table[T], key func(T) string) map[string]T {
	if t == nil {
		return nil
	}
	out := make(map[string]T, t.Len())
	for _, r := range t.Rows {
		k := key(r)
		if _, seen := out[k]; !seen {
			out[k] = r
		}
	}
	return out
}

// salesColumns lists the schema the joined dataset carries given which
// enrichment tables and optional columns were processed
func salesColumns(p *ProcessedTables) []string {
	cols := []string{domain.ColOrderID, domain.ColOrderItemID, domain.ColProductID}
	if p.OrderItems.HasColumn(domain.ColSellerID) {
		cols = append(cols, domain.ColSellerID)
	}
	cols = append(cols,
		domain.ColPrice, domain.ColFreightValue, domain.ColTotalItemValue,
		domain.ColCustomerID, domain.ColOrderStatus, domain.ColPurchaseTimestamp,
		domain.ColDeliveredCustomerDate, domain.ColPurchaseYear, domain.ColPurchaseMonth,
		domain.ColDeliveryDays,
	)
	if p.Products.HasColumn(domain.ColProductCategoryName) {
		cols = append(cols, domain.ColProductCategoryName)
	}
	if p.Customers.HasColumn(domain.ColCustomerState) {
		cols = append(cols, domain.ColCustomerState)
	}
	if p.Customers.HasColumn(domain.ColCustomerCity) {
		cols = append(cols, domain.ColCustomerCity)
	}
	if p.Reviews.HasColumn(domain.ColReviewScore) {
		cols = append(cols, domain.ColReviewScore)
	}
	return cols
}
