package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shopmetrics/internal/errors"
	"shopmetrics/internal/shared/testutil"
	"shopmetrics/pkg/contracts/domain"
)

func strPtr(s string) *string { return &s }

func processedFixtureLoader(t *testing.T) *Loader {
	t.Helper()
	loader, _, err := LoadAndProcessData(context.Background(), testutil.WriteSalesFixture(t), nil)
	require.NoError(t, err)
	return loader
}

func TestCreateSalesDatasetFilters(t *testing.T) {
	loader := processedFixtureLoader(t)

	tests := []struct {
		name      string
		filter    SalesFilter
		wantRows  int
		wantOrder []string
	}{
		{"no filter keeps every item", SalesFilter{}, 5, []string{"ord1", "ord1", "ord2", "ord3", "ord4"}},
		{"year", SalesFilter{Year: intPtr(2023)}, 3, []string{"ord1", "ord1", "ord2"}},
		{"year and month", SalesFilter{Year: intPtr(2023), Month: intPtr(2)}, 1, []string{"ord2"}},
		{"year and status", SalesFilter{Year: intPtr(2022), Status: strPtr("delivered")}, 1, []string{"ord3"}},
		{"status is case sensitive", SalesFilter{Status: strPtr("Delivered")}, 0, []string{}},
		{"year without data", SalesFilter{Year: intPtr(2019)}, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := loader.CreateSalesDataset(tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.wantRows, ds.Len())
			ids := make([]string, 0, ds.Len())
			for _, r := range ds.Rows {
				ids = append(ids, r.OrderID)
			}
			assert.Equal(t, tt.wantOrder, ids)
		})
	}
}

func TestCreateSalesDatasetEnrichment(t *testing.T) {
	ds, err := processedFixtureLoader(t).CreateSalesDataset(SalesFilter{})
	require.NoError(t, err)

	first := ds.Rows[0]
	assert.Equal(t, "electronics", first.ProductCategoryName)
	assert.Equal(t, "SP", first.CustomerState)
	assert.Equal(t, "sao paulo", first.CustomerCity)
	assert.Equal(t, 110.0, first.TotalItemValue)
	assert.Equal(t, 2023, first.PurchaseYear)
	assert.Equal(t, 1, first.PurchaseMonth)
	assert.Equal(t, intPtr(3), first.DeliveryDays)
	assert.Equal(t, intPtr(5), first.ReviewScore, "first review per order wins")
	assert.Equal(t, intPtr(5), ds.Rows[1].ReviewScore)

	ord2 := ds.Rows[2]
	assert.Equal(t, intPtr(9), ord2.DeliveryDays)
	assert.Equal(t, intPtr(4), ord2.ReviewScore)

	ord4 := ds.Rows[4]
	assert.Equal(t, "", ord4.ProductCategoryName, "blank category stays empty")
	assert.Nil(t, ord4.DeliveryDays)
	assert.Nil(t, ord4.ReviewScore)

	for _, col := range []string{domain.ColOrderID, domain.ColPrice, domain.ColPurchaseYear, domain.ColReviewScore, domain.ColCustomerState} {
		assert.True(t, ds.HasColumn(col), col)
	}
}

func TestCreateSalesDatasetNeverMultipliesRows(t *testing.T) {
	fixture := testutil.DefaultSalesFixture().
		With(domain.FileReviews, "order_id,review_score\nord1,5\nord1,4\nord1,3\nord2,1\n").
		With(domain.FileProducts, "product_id,product_category_name\nprod1,a\nprod1,b\nprod2,c\nprod3,d\nprod4,e\n")
	loader, _, err := LoadAndProcessData(context.Background(), fixture.Write(t), nil)
	require.NoError(t, err)

	ds, err := loader.CreateSalesDataset(SalesFilter{})
	require.NoError(t, err)

	assert.Equal(t, loader.ProcessedData().OrderItems.Len(), ds.Len())
	assert.Equal(t, "a", ds.Rows[0].ProductCategoryName)
}

func TestCreateSalesDatasetMissingPartners(t *testing.T) {
	fixture := testutil.DefaultSalesFixture().
		With(domain.FileCustomers, "customer_id,customer_state\ncust9,RJ\n").
		With(domain.FileOrderItems, "order_id,order_item_id,product_id,price,freight_value\nghost,1,nope,10,1\nord1,1,prod1,100,10\n")
	loader, _, err := LoadAndProcessData(context.Background(), fixture.Write(t), nil)
	require.NoError(t, err)

	ds, err := loader.CreateSalesDataset(SalesFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	ghost := ds.Rows[0]
	assert.Equal(t, "ghost", ghost.OrderID)
	assert.Equal(t, 0, ghost.PurchaseYear)
	assert.Equal(t, "", ghost.CustomerState)
	assert.Equal(t, "", ds.Rows[1].CustomerState)
	assert.False(t, ds.HasColumn(domain.ColCustomerCity), "customers file without city drops the column")
	assert.False(t, ds.HasColumn(domain.ColSellerID))
}

func TestCreateSalesDatasetRequiresProcessing(t *testing.T) {
	loader := NewLoader(testutil.WriteSalesFixture(t), nil)
	_, err := loader.CreateSalesDataset(SalesFilter{})
	assert.ErrorIs(t, err, apperrors.ErrNotLoaded)

	_, err = loader.LoadRawData(context.Background())
	require.NoError(t, err)
	_, err = loader.CreateSalesDataset(SalesFilter{})
	assert.ErrorIs(t, err, apperrors.ErrNotLoaded, "loading alone does not process")
}
