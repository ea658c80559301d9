// Package exporter writes sales datasets and metrics reports to files and
// HTTP responses.
//
// CSVWriter streams BOM-prefixed CSV into a temporary file that replaces the
// target only once every row is written. SalesExporter
// renders a SalesDataset row per order item using the dataset's own columns.
// WriteReportXLSX renders a Report as a workbook with one sheet per section.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter("reports", logger)
//	sales := exporter.NewSalesExporter(csvWriter)
//	err := sales.ExportSales("sales_2023.csv", dataset)
//
//	err = exporter.ExportReportXLSX("reports/report_2023.xlsx", report)
package exporter
