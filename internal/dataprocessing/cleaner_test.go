package dataprocessing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/internal/shared/testutil"
	"shopmetrics/pkg/contracts/domain"
)

func intPtr(v int) *int { return &v }

func rawOrders(rows ...domain.RawOrder) *domain.Table[domain.RawOrder] {
	return domain.NewTable(domain.TableOrders, domain.OrdersRequiredColumns, rows)
}

func TestCleanOrders(t *testing.T) {
	tests := []struct {
		name      string
		raw       domain.RawOrder
		wantYear  int
		wantMonth int
		wantDays  *int
	}{
		{
			name:      "delivered order",
			raw:       domain.RawOrder{OrderID: "ord1", PurchaseTimestamp: "2023-01-01 10:00:00", DeliveredCustomerDate: "2023-01-05 10:00:00"},
			wantYear:  2023,
			wantMonth: 1,
			wantDays:  intPtr(4),
		},
		{
			name:      "partial day floors",
			raw:       domain.RawOrder{OrderID: "ord2", PurchaseTimestamp: "2023-02-01 11:00:00", DeliveredCustomerDate: "2023-02-08 10:59:59"},
			wantYear:  2023,
			wantMonth: 2,
			wantDays:  intPtr(6),
		},
		{
			name:      "not delivered",
			raw:       domain.RawOrder{OrderID: "ord3", PurchaseTimestamp: "2023-03-01T12:00:00"},
			wantYear:  2023,
			wantMonth: 3,
		},
		{
			name:      "date only layout",
			raw:       domain.RawOrder{OrderID: "ord4", PurchaseTimestamp: "2022-12-31", DeliveredCustomerDate: "2023-01-02T00:00:00Z"},
			wantYear:  2022,
			wantMonth: 12,
			wantDays:  intPtr(2),
		},
		{
			name: "unparseable purchase timestamp",
			raw:  domain.RawOrder{OrderID: "ord5", PurchaseTimestamp: "yesterday", DeliveredCustomerDate: "2023-01-05 10:00:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader("", nil)
			loader.SetRawData(RawTables{Orders: rawOrders(tt.raw)})

			cleaned, err := loader.CleanOrders()
			require.NoError(t, err)
			require.Equal(t, 1, cleaned.Len())

			o := cleaned.Rows[0]
			assert.Equal(t, tt.wantYear, o.PurchaseYear)
			assert.Equal(t, tt.wantMonth, o.PurchaseMonth)
			assert.Equal(t, tt.wantDays, o.DeliveryDays)
			for _, col := range []string{domain.ColPurchaseYear, domain.ColPurchaseMonth, domain.ColDeliveryDays} {
				assert.True(t, cleaned.HasColumn(col), col)
			}
		})
	}
}

func TestCleanOrdersLogsUnparseableTimestamps(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	loader := NewLoader("", logger)
	loader.SetRawData(RawTables{Orders: rawOrders(
		domain.RawOrder{OrderID: "a", PurchaseTimestamp: "not a date"},
		domain.RawOrder{OrderID: "b", PurchaseTimestamp: "2023-01-01 00:00:00", DeliveredCustomerDate: "31/01/2023"},
	)})

	cleaned, err := loader.CleanOrders()
	require.NoError(t, err)

	assert.Nil(t, cleaned.Rows[0].PurchaseTimestamp)
	assert.Nil(t, cleaned.Rows[1].DeliveredCustomerDate)
	testutil.AssertLogContains(t, logs, slog.LevelDebug, "unparseable timestamps")
	testutil.AssertLogAttr(t, logs, "count", int64(2))
}

func TestCleanOrdersIdempotent(t *testing.T) {
	loader := NewLoader("", nil)
	loader.SetRawData(RawTables{Orders: rawOrders(
		domain.RawOrder{OrderID: "ord1", PurchaseTimestamp: "2023-01-01 10:00:00", DeliveredCustomerDate: "2023-01-05 10:00:00"},
	)})

	first, err := loader.CleanOrders()
	require.NoError(t, err)
	second, err := loader.CleanOrders()
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.Columns(), second.Columns())
}

func TestCleanOrderItems(t *testing.T) {
	loader := NewLoader("", nil)
	loader.SetRawData(RawTables{OrderItems: domain.NewTable(domain.TableOrderItems, domain.OrderItemsRequiredColumns,
		[]domain.RawOrderItem{
			{OrderID: "ord1", OrderItemID: 1, ProductID: "prod1", Price: 100, FreightValue: 10, ShippingLimitDate: "2023-01-03 10:00:00"},
			{OrderID: "ord2", OrderItemID: 1, ProductID: "prod2", Price: 200},
		})})

	cleaned, err := loader.CleanOrderItems()
	require.NoError(t, err)

	assert.Equal(t, 110.0, cleaned.Rows[0].TotalItemValue)
	assert.Equal(t, 200.0, cleaned.Rows[1].TotalItemValue)
	require.NotNil(t, cleaned.Rows[0].ShippingLimitDate)
	assert.Equal(t, time.Date(2023, 1, 3, 10, 0, 0, 0, time.UTC), *cleaned.Rows[0].ShippingLimitDate)
	assert.Nil(t, cleaned.Rows[1].ShippingLimitDate)
}

func TestCleanReviewsDropsOutOfRangeScores(t *testing.T) {
	loader := NewLoader("", nil)
	loader.SetRawData(RawTables{Reviews: domain.NewTable(domain.TableReviews, domain.ReviewsRequiredColumns,
		[]domain.RawReview{
			{OrderID: "ord1", Score: intPtr(5)},
			{OrderID: "ord2", Score: intPtr(9)},
			{OrderID: "ord3"},
		})})

	cleaned, err := loader.CleanReviews()
	require.NoError(t, err)

	assert.Equal(t, intPtr(5), cleaned.Rows[0].Score)
	assert.Nil(t, cleaned.Rows[1].Score)
	assert.Nil(t, cleaned.Rows[2].Score)
}

func TestCleanCustomersAndPayments(t *testing.T) {
	loader := NewLoader("", nil)
	loader.SetRawData(RawTables{
		Customers: domain.NewTable(domain.TableCustomers, domain.CustomersRequiredColumns,
			[]domain.Customer{{CustomerID: "c1", State: " sp "}}),
		Payments: domain.NewTable(domain.TablePayments, domain.PaymentsRequiredColumns,
			[]domain.Payment{{OrderID: "o1", Type: "Credit_Card", Value: 10}}),
	})

	customers, err := loader.CleanCustomers()
	require.NoError(t, err)
	assert.Equal(t, "SP", customers.Rows[0].State)

	payments, err := loader.CleanPayments()
	require.NoError(t, err)
	assert.Equal(t, "credit_card", payments.Rows[0].Type)
}

func TestCleanersRequireRawData(t *testing.T) {
	loader := NewLoader("", nil)
	loader.SetRawData(RawTables{Orders: rawOrders()})

	cleaners := map[string]func() error{
		"order_items": func() error { _, err := loader.CleanOrderItems(); return err },
		"products":    func() error { _, err := loader.CleanProducts(); return err },
		"customers":   func() error { _, err := loader.CleanCustomers(); return err },
		"reviews":     func() error { _, err := loader.CleanReviews(); return err },
		"payments":    func() error { _, err := loader.CleanPayments(); return err },
	}
	for name, clean := range cleaners {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, clean(), apperrors.ErrNotLoaded)
		})
	}

	_, err := NewLoader("", nil).CleanOrders()
	assert.ErrorIs(t, err, apperrors.ErrNotLoaded)
}
