package report

import (
	"context"
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

var salesHeaders = []string{"ID", "Date", "Medicine ID", "Quantity", "Total Price", "Payment Method", "Customer"}

// ExportSales writes the filtered sales history as an xlsx workbook.
func (s *Service) ExportSales(ctx context.Context, q Query, w io.Writer) error {
	report, err := s.Sales(ctx, q)
	if err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range salesHeaders {
		header.AddCell().SetValue(h)
	}
	for _, sale := range report.History {
		row := sheet.AddRow()
		row.AddCell().SetValue(sale.ID)
		row.AddCell().SetValue(sale.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(sale.MedicineID)
		row.AddCell().SetValue(sale.Quantity)
		row.AddCell().SetValue(sale.TotalPrice.String())
		row.AddCell().SetValue(sale.PaymentMethod)
		row.AddCell().SetValue(sale.CustomerName)
	}

	total := sheet.AddRow()
	total.AddCell().SetValue("Total")
	for i := 0; i < 3; i++ {
		total.AddCell()
	}
	total.AddCell().SetValue(report.Revenue.String())

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	s.logger.Printf("report: exported sales rows=%d", len(report.History))
	return nil
}
