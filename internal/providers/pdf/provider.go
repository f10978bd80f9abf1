package pdf

import (
	"context"

	"go.uber.org/fx"
)

// Provider renders invoices to PDF bytes.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
	GenerateReceipt(ctx context.Context, data InvoiceData) ([]byte, error)
}

var Module = fx.Module("pdf.provider",
	fx.Provide(New),
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
