package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Thermal roll paper, in millimetres.
const (
	receiptWidth  = 80
	receiptHeight = 297
	receiptMargin = 4
)

// GenerateReceipt renders a compact counter receipt for 80mm printers.
func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt InvoiceData) ([]byte, error) {
	if strings.TrimSpace(receipt.InvoiceNumber) == "" {
		return nil, fmt.Errorf("invoice number is required")
	}

	cfg := config.NewBuilder().
		WithDimensions(receiptWidth, receiptHeight).
		WithLeftMargin(receiptMargin).
		WithRightMargin(receiptMargin).
		WithTopMargin(receiptMargin).
		Build()

	m := maroto.New(cfg)

	centered := props.Text{Size: 7, Align: align.Center}
	m.AddRow(6,
		text.NewCol(12, receipt.Seller.Name, props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Center}),
	)
	for _, line := range []string{
		receipt.Seller.Address,
		prefixed("Phone: ", receipt.Seller.Phone),
		prefixed("GST: ", receipt.Seller.GSTIN),
	} {
		if line == "" {
			continue
		}
		m.AddRow(4, text.NewCol(12, line, centered))
	}

	m.AddRow(10,
		col.New(12).Add(
			text.New("Bill: "+receipt.InvoiceNumber, props.Text{Size: 7, Top: 2}),
			text.New("Date: "+receipt.IssueDate, props.Text{Size: 7, Top: 6}),
		),
	)
	m.AddRow(8,
		col.New(12).Add(
			text.New("Customer: "+receipt.CustomerName, props.Text{Size: 7}),
			text.New(prefixed("Phone: ", receipt.CustomerPhone), props.Text{Size: 7, Top: 4}),
		),
	)

	m.AddRow(5,
		text.NewCol(6, "Item", props.Text{Size: 7, Style: fontstyle.Bold}),
		text.NewCol(2, "Qty", props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(4, "Amount", props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, item := range receipt.Items {
		m.AddRow(5,
			text.NewCol(6, item.Description, props.Text{Size: 7}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 7, Align: align.Right}),
			text.NewCol(4, item.Total, props.Text{Size: 7, Align: align.Right}),
		)
	}

	m.AddRow(5,
		text.NewCol(8, "Taxable", props.Text{Size: 7, Top: 1}),
		text.NewCol(4, receipt.Subtotal, props.Text{Size: 7, Top: 1, Align: align.Right}),
	)
	m.AddRow(5,
		text.NewCol(8, "GST", props.Text{Size: 7}),
		text.NewCol(4, receipt.GSTTotal, props.Text{Size: 7, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, "Total", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(4, receipt.GrandTotal, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)

	footer := receipt.Seller.Footer
	if footer == "" {
		footer = "Thank you for shopping with us"
	}
	m.AddRow(8, text.NewCol(12, footer, props.Text{Size: 7, Top: 3, Align: align.Center}))

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
