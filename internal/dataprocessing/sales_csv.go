package dataprocessing

import (
	"io"

	"shopmetrics/pkg/contracts/domain"
)

// ReadSalesCSV reads an already denormalized sales table. The header decides
// which columns the dataset carries; unknown columns are ignored. When the
// purchase timestamp is present but the year and month are not, they are
// derived, and total_item_value is derived from price and freight likewise.
func ReadSalesCSV(r io.Reader) (*domain.SalesDataset, error) {
	src, err := readCSV(r, domain.TableSales)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(domain.SalesColumns))
	for _, c := range domain.SalesColumns {
		known[c] = struct{}{}
	}
	var columns []string
	for _, c := range src.columns {
		if _, ok := known[c]; ok {
			columns = append(columns, c)
		}
	}

	derivePeriod := src.has(domain.ColPurchaseTimestamp) && !src.has(domain.ColPurchaseYear)
	if derivePeriod {
		columns = append(columns, domain.ColPurchaseYear, domain.ColPurchaseMonth)
	}
	deriveTotal := src.has(domain.ColPrice) && !src.has(domain.ColTotalItemValue)
	if deriveTotal {
		columns = append(columns, domain.ColTotalItemValue)
	}

	rows := make([]domain.SalesRecord, 0, len(src.records))
	for i, rec := range src.records {
		row, err := parseSalesRecord(src, rec, i)
		if err != nil {
			return nil, err
		}
		if derivePeriod && row.PurchaseTimestamp != nil {
			row.PurchaseYear = row.PurchaseTimestamp.Year()
			row.PurchaseMonth = int(row.PurchaseTimestamp.Month())
		}
		if deriveTotal {
			row.TotalItemValue = row.Price + row.FreightValue
		}
		rows = append(rows, row)
	}

	return domain.NewSalesDataset(columns, rows), nil
}

func parseSalesRecord(src *csvSource, rec []string, row int) (domain.SalesRecord, error) {
	out := domain.SalesRecord{
		OrderID:             src.value(rec, domain.ColOrderID),
		ProductID:           src.value(rec, domain.ColProductID),
		SellerID:            src.value(rec, domain.ColSellerID),
		CustomerID:          src.value(rec, domain.ColCustomerID),
		OrderStatus:         src.value(rec, domain.ColOrderStatus),
		ProductCategoryName: src.value(rec, domain.ColProductCategoryName),
		CustomerState:       src.value(rec, domain.ColCustomerState),
		CustomerCity:        src.value(rec, domain.ColCustomerCity),
	}
	out.PurchaseTimestamp, _ = parseTimestamp(src.value(rec, domain.ColPurchaseTimestamp))
	out.DeliveredCustomerDate, _ = parseTimestamp(src.value(rec, domain.ColDeliveredCustomerDate))

	ints := []struct {
		col string
		dst *int
	}{
		{domain.ColOrderItemID, &out.OrderItemID},
		{domain.ColPurchaseYear, &out.PurchaseYear},
		{domain.ColPurchaseMonth, &out.PurchaseMonth},
	}
	for _, f := range ints {
		v, err := parseInt(src.value(rec, f.col))
		if err != nil {
			return out, src.cellError(row, f.col, err)
		}
		*f.dst = v
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{domain.ColPrice, &out.Price},
		{domain.ColFreightValue, &out.FreightValue},
		{domain.ColTotalItemValue, &out.TotalItemValue},
	}
	for _, f := range floats {
		v, err := parseFloat(src.value(rec, f.col))
		if err != nil {
			return out, src.cellError(row, f.col, err)
		}
		*f.dst = v
	}

	var err error
	if out.DeliveryDays, err = parseOptionalInt(src.value(rec, domain.ColDeliveryDays)); err != nil {
		return out, src.cellError(row, domain.ColDeliveryDays, err)
	}
	if out.ReviewScore, err = parseOptionalInt(src.value(rec, domain.ColReviewScore)); err != nil {
		return out, src.cellError(row, domain.ColReviewScore, err)
	}
	return out, nil
}
