package service

import (
	"context"
	"errors"

	"github.com/Rosario027/finalerp/internal/invoice/domain"
	"github.com/Rosario027/finalerp/internal/providers/pdf"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const (
	pdfContentType  = "application/pdf"
	issueDateLayout = "02-01-2006"
)

var errRendererUnavailable = errors.New("pdf renderer not configured")

// Print renders the full GST tax invoice. Soft-deleted invoices print as cancelled.
func (s *Service) Print(ctx context.Context, id string) (*domain.Document, error) {
	return s.render(ctx, id, "", func(data pdf.InvoiceData) ([]byte, error) {
		return s.pdf.GenerateInvoice(ctx, data)
	})
}

// Receipt renders the short counter receipt.
func (s *Service) Receipt(ctx context.Context, id string) (*domain.Document, error) {
	return s.render(ctx, id, "receipt", func(data pdf.InvoiceData) ([]byte, error) {
		return s.pdf.GenerateReceipt(ctx, data)
	})
}

func (s *Service) render(ctx context.Context, id, suffix string, generate func(pdf.InvoiceData) ([]byte, error)) (*domain.Document, error) {
	if s.pdf == nil {
		return nil, errRendererUnavailable
	}

	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, items, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	body, err := generate(s.renderData(invoice, items))
	if err != nil {
		return nil, err
	}

	name := invoice.InvoiceNumber
	if suffix != "" {
		name += " " + suffix
	}
	return &domain.Document{
		Filename:    slug.Make(name) + ".pdf",
		ContentType: pdfContentType,
		Body:        body,
	}, nil
}

func (s *Service) renderData(invoice *domain.Invoice, items []domain.InvoiceItem) pdf.InvoiceData {
	profile := s.business.Get()
	loc := s.clock.Now().Location()

	cgst := decimal.Zero
	sgst := decimal.Zero
	rows := make([]pdf.InvoiceItem, 0, len(items))
	for _, item := range items {
		cgst = cgst.Add(item.CGSTAmount)
		sgst = sgst.Add(item.SGSTAmount)

		var hsn string
		if item.HSNCode != nil {
			hsn = *item.HSNCode
		}
		rows = append(rows, pdf.InvoiceItem{
			Description: item.ItemName,
			HSNCode:     hsn,
			Qty:         item.Quantity,
			Rate:        money(item.Rate),
			Taxable:     money(item.TaxableValue),
			CGSTRate:    tax.FormatPercent(item.CGSTPercentage),
			CGSTAmount:  money(item.CGSTAmount),
			SGSTRate:    tax.FormatPercent(item.SGSTPercentage),
			SGSTAmount:  money(item.SGSTAmount),
			Total:       money(item.Total),
		})
	}

	data := pdf.InvoiceData{
		Seller: pdf.Seller{
			Name:      profile.LegalName,
			Address:   profile.Address,
			State:     profile.State,
			StateCode: profile.StateCode,
			GSTIN:     profile.GSTIN,
			Phone:     profile.Phone,
			Email:     profile.Email,
			Footer:    profile.Footer,
		},
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.CreatedAt.In(loc).Format(issueDateLayout),
		InvoiceType:   string(invoice.InvoiceType),
		PaymentMode:   string(invoice.PaymentMode),
		GSTMode:       string(invoice.GSTMode),
		Cancelled:     invoice.IsDeleted(),
		CustomerName:  invoice.CustomerName,
		Items:         rows,
		Subtotal:      money(invoice.Subtotal),
		CGSTTotal:     money(cgst),
		SGSTTotal:     money(sgst),
		GSTTotal:      money(invoice.GSTAmount),
		GrandTotal:    money(invoice.GrandTotal),
		AmountInWords: pdf.RupeesInWords(invoice.GrandTotal),
	}
	if invoice.CustomerPhone != nil {
		data.CustomerPhone = *invoice.CustomerPhone
	}
	if invoice.CustomerGST != nil {
		data.CustomerGST = *invoice.CustomerGST
	}
	return data
}
