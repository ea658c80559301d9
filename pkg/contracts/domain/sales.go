package domain

import (
	"sort"
	"time"
)

// SalesColumns is the full schema of a sales dataset built by joining the cleaned tables
var SalesColumns = []string{
	ColOrderID, ColOrderItemID, ColProductID, ColSellerID,
	ColPrice, ColFreightValue, ColTotalItemValue,
	ColCustomerID, ColOrderStatus, ColPurchaseTimestamp, ColDeliveredCustomerDate,
	ColPurchaseYear, ColPurchaseMonth, ColDeliveryDays,
	ColProductCategoryName, ColCustomerState, ColCustomerCity,
	ColReviewScore,
}

// SalesRecord is one order line item enriched with its order, product,
// customer and review. Empty strings and nil pointers mean the join partner
// or the source value was missing.
type SalesRecord struct {
	OrderID        string  `json:"order_id"`
	OrderItemID    int     `json:"order_item_id"`
	ProductID      string  `json:"product_id"`
	SellerID       string  `json:"seller_id,omitempty"`
	Price          float64 `json:"price"`
	FreightValue   float64 `json:"freight_value"`
	TotalItemValue float64 `json:"total_item_value"`

	CustomerID            string     `json:"customer_id"`
	OrderStatus           string     `json:"order_status"`
	PurchaseTimestamp     *time.Time `json:"order_purchase_timestamp"`
	DeliveredCustomerDate *time.Time `json:"order_delivered_customer_date"`
	PurchaseYear          int        `json:"purchase_year"`
	PurchaseMonth         int        `json:"purchase_month"`
	DeliveryDays          *int       `json:"delivery_days"`

	ProductCategoryName string `json:"product_category_name"`
	CustomerState       string `json:"customer_state"`
	CustomerCity        string `json:"customer_city,omitempty"`

	ReviewScore *int `json:"review_score"`
}

// SalesDataset is the denormalized table the metrics calculator consumes
type SalesDataset struct {
	*Table[SalesRecord]
}

// NewSalesDataset wraps rows carrying the given columns
func NewSalesDataset(columns []string, rows []SalesRecord) *SalesDataset {
	return &SalesDataset{Table: NewTable(TableSales, columns, rows)}
}

// TableSales names the joined dataset
const TableSales = "sales"

// Where returns the subset of rows keep accepts, keeping the schema
func (d *SalesDataset) Where(keep func(SalesRecord) bool) *SalesDataset {
	return &SalesDataset{Table: d.Table.Filter(keep)}
}

// ForYear returns the rows purchased in year
func (d *SalesDataset) ForYear(year int) *SalesDataset {
	return d.Where(func(r SalesRecord) bool { return r.PurchaseYear == year })
}

// AvailableYears lists the distinct known purchase years in ascending order
func (d *SalesDataset) AvailableYears() []int {
	seen := make(map[int]struct{})
	for _, r := range d.Rows {
		if r.PurchaseYear > 0 {
			seen[r.PurchaseYear] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// AvailableMonths lists the months of year that have at least one row
func (d *SalesDataset) AvailableMonths(year int) []int {
	seen := make(map[int]struct{})
	for _, r := range d.Rows {
		if r.PurchaseYear == year && r.PurchaseMonth >= 1 && r.PurchaseMonth <= 12 {
			seen[r.PurchaseMonth] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// AvailableStatuses lists the distinct order statuses present, sorted
func (d *SalesDataset) AvailableStatuses() []string {
	seen := make(map[string]struct{})
	for _, r := range d.Rows {
		if r.OrderStatus != "" {
			seen[r.OrderStatus] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// DefaultYear returns preferred when the dataset has rows for it, otherwise
// the latest year present. Zero means the dataset has no dated rows.
func (d *SalesDataset) DefaultYear(preferred int) int {
	years := d.AvailableYears()
	if len(years) == 0 {
		return 0
	}
	for _, y := range years {
		if y == preferred {
			return y
		}
	}
	return years[len(years)-1]
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
