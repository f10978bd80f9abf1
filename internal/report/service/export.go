package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rosario027/finalerp/internal/report/domain"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	salesSheet      = "Sales"
	summarySheet    = "Summary"
)

var salesHeadings = []string{
	"Invoice Number", "Date", "Type", "Customer", "Customer GSTIN",
	"Payment Mode", "Taxable Value", "GST", "Grand Total",
}

// ExportSales writes the sales report as an xlsx workbook with a row sheet and a totals sheet.
func (s *Service) ExportSales(ctx context.Context, req domain.RangeRequest) (*domain.Document, error) {
	report, err := s.Sales(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	for i, heading := range salesHeadings {
		if err := setCell(f, salesSheet, i, 1, heading); err != nil {
			return nil, err
		}
	}
	for r, row := range report.Rows {
		gstin := ""
		if row.CustomerGST != nil {
			gstin = *row.CustomerGST
		}
		values := []any{
			row.InvoiceNumber,
			row.CreatedAt.Format("02-01-2006 15:04"),
			row.InvoiceType,
			row.CustomerName,
			gstin,
			row.PaymentMode,
			numeric(row.Subtotal),
			numeric(row.GSTAmount),
			numeric(row.GrandTotal),
		}
		for c, value := range values {
			if err := setCell(f, salesSheet, c, r+2, value); err != nil {
				return nil, err
			}
		}
	}

	summary := [][]any{
		{"From", report.StartDate},
		{"To", report.EndDate},
		{"Invoices", report.Totals.InvoiceCount},
		{"Total Sales", numeric(report.Totals.TotalSales)},
		{"B2B Sales", numeric(report.Totals.B2BSales)},
		{"B2C Sales", numeric(report.Totals.B2CSales)},
		{"Cash Sales", numeric(report.Totals.CashSales)},
		{"Online Sales", numeric(report.Totals.OnlineSales)},
		{"Taxable Value", numeric(report.Totals.Taxable)},
		{"GST Collected", numeric(report.Totals.GSTCollected)},
	}
	for r, line := range summary {
		for c, value := range line {
			if err := setCell(f, summarySheet, c, r+1, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(strings.Join([]string{"sales report", report.StartDate, report.EndDate}, " "))
	return &domain.Document{
		Filename:    slug.Make(name) + ".xlsx",
		ContentType: xlsxContentType,
		Body:        buf.Bytes(),
	}, nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return fmt.Errorf("cell %d,%d: %w", col, row, err)
	}
	return f.SetCellValue(sheet, cell, value)
}

// numeric keeps money cells summable in spreadsheet tools.
func numeric(v string) any {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return f
}
