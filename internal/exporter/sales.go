package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"shopmetrics/pkg/contracts/domain"
)

// SalesExporter writes sales datasets as CSV, one row per order item
type SalesExporter struct {
	csvWriter *CSVWriter
}

// NewSalesExporter creates a sales exporter writing through csvWriter
func NewSalesExporter(csvWriter *CSVWriter) *SalesExporter {
	return &SalesExporter{csvWriter: csvWriter}
}

// ExportSales writes ds to filePath, resolved against the export directory
func (e *SalesExporter) ExportSales(filePath string, ds *domain.SalesDataset) error {
	cols := ds.Columns()
	stream, err := e.csvWriter.Create(filePath, cols)
	if err != nil {
		return err
	}
	if err := writeSalesRows(stream, cols, ds.Rows); err != nil {
		stream.Abort()
		return err
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filePath, err)
	}

	e.csvWriter.logger.Info("sales exported",
		slog.String("file_path", filePath),
		slog.Int("rows", ds.Len()))
	return nil
}

// WriteSales streams ds to out. The file can be read back with
// dataprocessing.ReadSalesCSV.
func WriteSales(out io.Writer, ds *domain.SalesDataset, bom bool) error {
	cols := ds.Columns()
	stream, err := NewStreamWriter(out, cols, bom)
	if err != nil {
		return err
	}
	if err := writeSalesRows(stream, cols, ds.Rows); err != nil {
		return err
	}
	return stream.Close()
}

func writeSalesRows(stream *StreamWriter, cols []string, rows []domain.SalesRecord) error {
	record := make([]string, len(cols))
	for i, r := range rows {
		for j, col := range cols {
			record[j] = SalesCell(r, col)
		}
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

// SalesCell renders one column of r. Null values are empty cells.
func SalesCell(r domain.SalesRecord, col string) string {
	switch col {
	case domain.ColOrderID:
		return r.OrderID
	case domain.ColOrderItemID:
		return formatInt(r.OrderItemID)
	case domain.ColProductID:
		return r.ProductID
	case domain.ColSellerID:
		return r.SellerID
	case domain.ColPrice:
		return formatFloat(r.Price)
	case domain.ColFreightValue:
		return formatFloat(r.FreightValue)
	case domain.ColTotalItemValue:
		return formatFloat(r.TotalItemValue)
	case domain.ColCustomerID:
		return r.CustomerID
	case domain.ColOrderStatus:
		return r.OrderStatus
	case domain.ColPurchaseTimestamp:
		return formatTime(r.PurchaseTimestamp)
	case domain.ColDeliveredCustomerDate:
		return formatTime(r.DeliveredCustomerDate)
	case domain.ColPurchaseYear:
		return formatInt(r.PurchaseYear)
	case domain.ColPurchaseMonth:
		return formatInt(r.PurchaseMonth)
	case domain.ColDeliveryDays:
		return formatOptionalInt(r.DeliveryDays)
	case domain.ColProductCategoryName:
		return r.ProductCategoryName
	case domain.ColCustomerState:
		return r.CustomerState
	case domain.ColCustomerCity:
		return r.CustomerCity
	case domain.ColReviewScore:
		return formatOptionalInt(r.ReviewScore)
	default:
		return ""
	}
}
