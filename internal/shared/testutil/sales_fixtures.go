package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"shopmetrics/pkg/contracts/domain"
)

// SalesFixture is a set of raw CSV files keyed by file name. The default
// fixture covers two years (2022 and 2023) so period comparisons can be
// exercised without the real dataset:
//
//	2023: ord1 (two items, 150), ord2 (200)  -> revenue 350, 2 orders, 3 items
//	2022: ord3 (300), ord4 (150, shipped)    -> revenue 450, 2 orders, 2 items
//
// ord5 is canceled and has no items, so it never reaches the sales dataset.
type SalesFixture map[string]string

const fixtureOrders = `order_id,customer_id,order_status,order_purchase_timestamp,order_approved_at,order_delivered_carrier_date,order_delivered_customer_date,order_estimated_delivery_date
ord1,cust1,delivered,2023-01-15 10:00:00,2023-01-15 11:00:00,2023-01-16 09:00:00,2023-01-18 10:00:00,2023-01-25 00:00:00
ord2,cust2,delivered,2023-02-10 14:30:00,2023-02-10 15:00:00,2023-02-12 08:00:00,2023-02-20 09:00:00,2023-02-25 00:00:00
ord3,cust3,delivered,2022-01-05 08:00:00,2022-01-05 09:00:00,2022-01-06 10:00:00,2022-01-10 08:00:00,2022-01-20 00:00:00
ord4,cust1,shipped,2022-02-01 12:00:00,2022-02-01 13:00:00,2022-02-02 09:00:00,,2022-02-15 00:00:00
ord5,cust4,canceled,2023-03-03 10:00:00,,,,2023-03-20 00:00:00
`

const fixtureOrderItems = `order_id,order_item_id,product_id,seller_id,shipping_limit_date,price,freight_value
ord1,1,prod1,sel1,2023-01-17 10:00:00,100.00,10.00
ord1,2,prod2,sel1,2023-01-17 10:00:00,50.00,5.00
ord2,1,prod1,sel2,2023-02-12 14:30:00,200.00,20.00
ord3,1,prod3,sel2,2022-01-07 08:00:00,300.00,15.00
ord4,1,prod4,sel1,2022-02-03 12:00:00,150.00,12.50
`

const fixtureProducts = `product_id,product_category_name,product_weight_g
prod1,electronics,500
prod2,books,200
prod3,electronics,800
prod4,,300
`

const fixtureCustomers = `customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state
cust1,u1,01000,sao paulo,SP
cust2,u2,20000,rio de janeiro,RJ
cust3,u3,30000,belo horizonte,MG
cust4,u4,01001,sao paulo,SP
`

const fixtureReviews = `review_id,order_id,review_score,review_creation_date
rev1,ord1,5,2023-01-19 00:00:00
rev2,ord2,4,2023-02-21 00:00:00
rev3,ord3,3,2022-01-11 00:00:00
rev4,ord1,1,2023-01-20 00:00:00
`

const fixturePayments = `order_id,payment_sequential,payment_type,payment_installments,payment_value
ord1,1,credit_card,3,165.00
ord2,1,boleto,1,220.00
ord3,1,credit_card,2,315.00
ord4,1,voucher,1,162.50
`

// DefaultSalesFixture returns a fresh copy of the default fixture
func DefaultSalesFixture() SalesFixture {
	return SalesFixture{
		domain.FileOrders:     fixtureOrders,
		domain.FileOrderItems: fixtureOrderItems,
		domain.FileProducts:   fixtureProducts,
		domain.FileCustomers:  fixtureCustomers,
		domain.FileReviews:    fixtureReviews,
		domain.FilePayments:   fixturePayments,
	}
}

// Without returns a copy of the fixture lacking the named files
func (f SalesFixture) Without(files ...string) SalesFixture {
	out := f.clone()
	for _, name := range files {
		delete(out, name)
	}
	return out
}

// With returns a copy of the fixture with file replaced by content
func (f SalesFixture) With(file, content string) SalesFixture {
	out := f.clone()
	out[file] = content
	return out
}

func (f SalesFixture) clone() SalesFixture {
	out := make(SalesFixture, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Write materializes the fixture in a fresh temp directory and returns it
func (f SalesFixture) Write(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range f {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	return dir
}

// WriteSalesFixture writes the default fixture and returns its directory
func WriteSalesFixture(t testing.TB) string {
	t.Helper()
	return DefaultSalesFixture().Write(t)
}
