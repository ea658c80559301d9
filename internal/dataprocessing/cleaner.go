package dataprocessing

import (
	"log/slog"
	"strings"
	"time"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/pkg/contracts/domain"
)

// ProcessedTables holds the cleaned tables. Payments is nil when the raw
// payments table was never loaded.
type ProcessedTables struct {
	Orders     *domain.Table[domain.Order]
	OrderItems *domain.Table[domain.OrderItem]
	Products   *domain.Table[domain.Product]
	Customers  *domain.Table[domain.Customer]
	Reviews    *domain.Table[domain.Review]
	Payments   *domain.Table[domain.Payment]
}

// Counts returns the row count per processed table
func (t *ProcessedTables) Counts() map[string]int {
	out := make(map[string]int, 6)
	addCount(out, domain.TableOrders, t.Orders)
	addCount(out, domain.TableOrderItems, t.OrderItems)
	addCount(out, domain.TableProducts, t.Products)
	addCount(out, domain.TableCustomers, t.Customers)
	addCount(out, domain.TableReviews, t.Reviews)
	addCount(out, domain.TablePayments, t.Payments)
	return out
}

// The Clean methods derive a fresh table from the raw input on every call
// and leave the loader's state untouched, so repeated calls return equal results.

// CleanOrders parses the order timestamps and derives purchase year, month
// and whole delivery days
func (l *Loader) CleanOrders() (*domain.Table[domain.Order], error) {
	if l.raw == nil || l.raw.Orders == nil {
		return nil, apperrors.NewNotLoadedError(domain.TableOrders)
	}
	raw := l.raw.Orders
	ts := &timestampCounter{}

	rows := make([]domain.Order, 0, raw.Len())
	for _, r := range raw.Rows {
		o := domain.Order{
			OrderID:               r.OrderID,
			CustomerID:            r.CustomerID,
			Status:                r.Status,
			PurchaseTimestamp:     ts.parse(r.PurchaseTimestamp),
			ApprovedAt:            ts.parse(r.ApprovedAt),
			DeliveredCarrierDate:  ts.parse(r.DeliveredCarrierDate),
			DeliveredCustomerDate: ts.parse(r.DeliveredCustomerDate),
			EstimatedDeliveryDate: ts.parse(r.EstimatedDeliveryDate),
		}
		if o.PurchaseTimestamp != nil {
			o.PurchaseYear = o.PurchaseTimestamp.Year()
			o.PurchaseMonth = int(o.PurchaseTimestamp.Month())
			if o.DeliveredCustomerDate != nil {
				days := wholeDays(*o.PurchaseTimestamp, *o.DeliveredCustomerDate)
				o.DeliveryDays = &days
			}
		}
		rows = append(rows, o)
	}

	ts.log(l.logger, domain.TableOrders)
	columns := append(raw.Columns(), domain.ColPurchaseYear, domain.ColPurchaseMonth, domain.ColDeliveryDays)
	return domain.NewTable(domain.TableOrders, columns, rows), nil
}

// CleanOrderItems parses the shipping limit and derives total_item_value
func (l *Loader) CleanOrderItems() (*domain.Table[domain.OrderItem], error) {
	if l.raw == nil || l.raw.OrderItems == nil {
		return nil, apperrors.NewNotLoadedError(domain.TableOrderItems)
	}
	raw := l.raw.OrderItems
	ts := &timestampCounter{}

	rows := make([]domain.OrderItem, 0, raw.Len())
	for _, r := range raw.Rows {
		rows = append(rows, domain.OrderItem{
			OrderID:           r.OrderID,
			OrderItemID:       r.OrderItemID,
			ProductID:         r.ProductID,
			SellerID:          r.SellerID,
			ShippingLimitDate: ts.parse(r.ShippingLimitDate),
			Price:             r.Price,
			FreightValue:      r.FreightValue,
			TotalItemValue:    r.Price + r.FreightValue,
		})
	}

	ts.log(l.logger, domain.TableOrderItems)
	return domain.NewTable(domain.TableOrderItems, append(raw.Columns(), domain.ColTotalItemValue), rows), nil
}

// CleanProducts trims category names; blank categories stay empty
func (l *Loader) CleanProducts() (*domain.Table[domain.Product], error) {
	if l.raw == nil || l.raw.Products == nil {
		return nil, apperrors.NewNotLoadedError(domain.TableProducts)
	}
	raw := l.raw.Products

	rows := make([]domain.Product, 0, raw.Len())
	for _, r := range raw.Rows {
		rows = append(rows, domain.Product{
			ProductID:    strings.TrimSpace(r.ProductID),
			CategoryName: strings.TrimSpace(r.CategoryName),
		})
	}
	return domain.NewTable(domain.TableProducts, raw.Columns(), rows), nil
}

// CleanCustomers normalizes state codes to upper case
func (l *Loader) CleanCustomers() (*domain.Table[domain.Customer], error) {
	if l.raw == nil || l.raw.Customers == nil {
		return nil, apperrors.NewNotLoadedError(domain.TableCustomers)
	}
	raw := l.raw.Customers

	rows := make([]domain.Customer, 0, raw.Len())
	for _, r := range raw.Rows {
		c := r
		c.State = strings.ToUpper(strings.TrimSpace(r.State))
		c.City = strings.TrimSpace(r.City)
		rows = append(rows, c)
	}
	return domain.NewTable(domain.TableCustomers, raw.Columns(), rows), nil
}

// CleanReviews parses creation dates. Scores outside 1..5 are dropped to nil.
func (l *Loader) CleanReviews() (*domain.Table[domain.Review], error) {
	if l.raw == nil || l.raw.Reviews == nil {
		return nil, apperrors.NewNotLoadedError(domain.TableReviews)
	}
	raw := l.raw.Reviews
	ts := &timestampCounter{}
	outOfRange := 0

	rows := make([]domain.Review, 0, raw.Len())
	for _, r := range raw.Rows {
		review := domain.Review{
			ReviewID:     r.ReviewID,
			OrderID:      r.OrderID,
			CreationDate: ts.parse(r.CreationDate),
		}
		if r.Score != nil {
			if *r.Score >= 1 && *r.Score <= 5 {
				score := *r.Score
				review.Score = &score
			} else {
				outOfRange++
			}
		}
		rows = append(rows, review)
	}

	ts.log(l.logger, domain.TableReviews)
	if outOfRange > 0 {
		l.logger.Debug("review scores out of range", slog.Int("count", outOfRange))
	}
	return domain.NewTable(domain.TableReviews, raw.Columns(), rows), nil
}

// CleanPayments normalizes payment types to lower case
func (l *Loader) CleanPayments() (*domain.Table[domain.Payment], error) {
	if l.raw == nil || l.raw.Payments == nil {
		return nil, apperrors.NewNotLoadedError(domain.TablePayments)
	}
	raw := l.raw.Payments

	rows := make([]domain.Payment, 0, raw.Len())
	for _, r := range raw.Rows {
		p := r
		p.Type = strings.ToLower(strings.TrimSpace(r.Type))
		rows = append(rows, p)
	}
	return domain.NewTable(domain.TablePayments, raw.Columns(), rows), nil
}

// timestampCounter parses timestamps and counts the values it could not read
type timestampCounter struct {
	unparsed int
	sample   string
}

func (c *timestampCounter) parse(s string) *time.Time {
	t, ok := parseTimestamp(s)
	if !ok {
		c.unparsed++
		if c.sample == "" {
			c.sample = s
		}
	}
	return t
}

func (c *timestampCounter) log(logger *slog.Logger, table string) {
	if c.unparsed == 0 {
		return
	}
	logger.Debug("unparseable timestamps set to null",
		slog.String("table", table),
		slog.Int("count", c.unparsed),
		slog.String("sample", c.sample))
}
