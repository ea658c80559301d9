package dataprocessing

import (
	"shopmetrics/pkg/contracts/domain"
)

// RawTables holds the source tables as read from disk. A nil table was
// never loaded.
type RawTables struct {
	Orders     *domain.Table[domain.RawOrder]
	OrderItems *domain.Table[domain.RawOrderItem]
	Products   *domain.Table[domain.Product]
	Customers  *domain.Table[domain.Customer]
	Reviews    *domain.Table[domain.RawReview]
	Payments   *domain.Table[domain.Payment]
}

// Counts returns the row count per loaded table
func (t *RawTables) Counts() map[string]int {
	out := make(map[string]int, 6)
	addCount(out, domain.TableOrders, t.Orders)
	addCount(out, domain.TableOrderItems, t.OrderItems)
	addCount(out, domain.TableProducts, t.Products)
	addCount(out, domain.TableCustomers, t.Customers)
	addCount(out, domain.TableReviews, t.Reviews)
	addCount(out, domain.TablePayments, t.Payments)
	return out
}

func addCount[T any](out map[string]int, name string, t *domain.Table[T]) {
	if t != nil {
		out[name] = t.Len()
	}
}

type rowParser[T any] func(src *csvSource, rec []string, row int) (T, error)

func readTable[T any](path, name string, required []string, parse rowParser[T]) (*domain.Table[T], error) {
	src, err := openCSV(path, name)
	if err != nil {
		return nil, err
	}
	return buildTable(src, required, parse)
}

func buildTable[T any](src *csvSource, required []string, parse rowParser[T]) (*domain.Table[T], error) {
	if err := src.requireColumns(required); err != nil {
		return nil, err
	}
	rows := make([]T, 0, len(src.records))
	for i, rec := range src.records {
		r, err := parse(src, rec, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return domain.NewTable(src.table, src.columns, rows), nil
}

func parseRawOrder(src *csvSource, rec []string, _ int) (domain.RawOrder, error) {
	return domain.RawOrder{
		OrderID:               src.value(rec, domain.ColOrderID),
		CustomerID:            src.value(rec, domain.ColCustomerID),
		Status:                src.value(rec, domain.ColOrderStatus),
		PurchaseTimestamp:     src.value(rec, domain.ColPurchaseTimestamp),
		ApprovedAt:            src.value(rec, domain.ColApprovedAt),
		DeliveredCarrierDate:  src.value(rec, domain.ColDeliveredCarrierDate),
		DeliveredCustomerDate: src.value(rec, domain.ColDeliveredCustomerDate),
		EstimatedDeliveryDate: src.value(rec, domain.ColEstimatedDeliveryDate),
	}, nil
}

func parseRawOrderItem(src *csvSource, rec []string, row int) (domain.RawOrderItem, error) {
	item := domain.RawOrderItem{
		OrderID:           src.value(rec, domain.ColOrderID),
		ProductID:         src.value(rec, domain.ColProductID),
		SellerID:          src.value(rec, domain.ColSellerID),
		ShippingLimitDate: src.value(rec, domain.ColShippingLimitDate),
	}

	var err error
	if item.OrderItemID, err = parseInt(src.value(rec, domain.ColOrderItemID)); err != nil {
		return item, src.cellError(row, domain.ColOrderItemID, err)
	}
	if item.Price, err = parseFloat(src.value(rec, domain.ColPrice)); err != nil {
		return item, src.cellError(row, domain.ColPrice, err)
	}
	if item.FreightValue, err = parseFloat(src.value(rec, domain.ColFreightValue)); err != nil {
		return item, src.cellError(row, domain.ColFreightValue, err)
	}
	return item, nil
}

func parseProduct(src *csvSource, rec []string, _ int) (domain.Product, error) {
	return domain.Product{
		ProductID:    src.value(rec, domain.ColProductID),
		CategoryName: src.value(rec, domain.ColProductCategoryName),
	}, nil
}

func parseCustomer(src *csvSource, rec []string, _ int) (domain.Customer, error) {
	return domain.Customer{
		CustomerID:    src.value(rec, domain.ColCustomerID),
		UniqueID:      src.value(rec, domain.ColCustomerUniqueID),
		ZipCodePrefix: src.value(rec, domain.ColCustomerZipCode),
		City:          src.value(rec, domain.ColCustomerCity),
		State:         src.value(rec, domain.ColCustomerState),
	}, nil
}

func parseRawReview(src *csvSource, rec []string, row int) (domain.RawReview, error) {
	review := domain.RawReview{
		ReviewID:     src.value(rec, domain.ColReviewID),
		OrderID:      src.value(rec, domain.ColOrderID),
		CreationDate: src.value(rec, domain.ColReviewCreationDate),
	}
	score, err := parseOptionalInt(src.value(rec, domain.ColReviewScore))
	if err != nil {
		return review, src.cellError(row, domain.ColReviewScore, err)
	}
	review.Score = score
	return review, nil
}

func parsePayment(src *csvSource, rec []string, row int) (domain.Payment, error) {
	p := domain.Payment{
		OrderID: src.value(rec, domain.ColOrderID),
		Type:    src.value(rec, domain.ColPaymentType),
	}

	var err error
	if p.Sequential, err = parseInt(src.value(rec, domain.ColPaymentSequential)); err != nil {
		return p, src.cellError(row, domain.ColPaymentSequential, err)
	}
	if p.Installments, err = parseInt(src.value(rec, domain.ColPaymentInstallments)); err != nil {
		return p, src.cellError(row, domain.ColPaymentInstallments, err)
	}
	if p.Value, err = parseFloat(src.value(rec, domain.ColPaymentValue)); err != nil {
		return p, src.cellError(row, domain.ColPaymentValue, err)
	}
	return p, nil
}
