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

// Seller is the issuing business as printed on the invoice.
type Seller struct {
	Name      string
	Address   string
	State     string
	StateCode string
	GSTIN     string
	Phone     string
	Email     string
	Footer    string
}

// InvoiceData carries display-ready strings; amounts are already formatted.
type InvoiceData struct {
	Seller Seller

	InvoiceNumber string
	IssueDate     string
	InvoiceType   string
	PaymentMode   string
	GSTMode       string
	Cancelled     bool

	CustomerName  string
	CustomerPhone string
	CustomerGST   string

	Items []InvoiceItem

	Subtotal   string
	CGSTTotal  string
	SGSTTotal  string
	GSTTotal   string
	GrandTotal string
	// AmountInWords is the grand total spelled out in rupees.
	AmountInWords string
}

type InvoiceItem struct {
	Description string
	HSNCode     string
	Qty         int64
	Rate        string
	Taxable     string
	CGSTRate    string
	CGSTAmount  string
	SGSTRate    string
	SGSTAmount  string
	Total       string
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) ([]byte, error) {
	if strings.TrimSpace(invoice.InvoiceNumber) == "" {
		return nil, fmt.Errorf("invoice number is required")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	title := "Tax Invoice"
	if invoice.Cancelled {
		title = "Tax Invoice (CANCELLED)"
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	seller := invoice.Seller
	m.AddRow(28,
		col.New(7).Add(
			text.New(seller.Name, props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New(seller.Address, props.Text{Top: 6, Size: 9}),
			text.New(joinNonEmpty(" | ", prefixed("Phone: ", seller.Phone), prefixed("Email: ", seller.Email)), props.Text{Top: 15, Size: 9}),
			text.New(joinNonEmpty(" | ", prefixed("GSTIN: ", seller.GSTIN), stateLine(seller)), props.Text{Top: 20, Size: 9}),
		),
		col.New(5).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Date: "+invoice.IssueDate, props.Text{Top: 5, Size: 9, Align: align.Right}),
			text.New("Type: "+invoice.InvoiceType, props.Text{Top: 10, Size: 9, Align: align.Right}),
			text.New("Payment: "+invoice.PaymentMode, props.Text{Top: 15, Size: 9, Align: align.Right}),
			text.New("Prices: GST "+invoice.GSTMode, props.Text{Top: 20, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(20,
		col.New(12).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 10}),
			text.New(invoice.CustomerName, props.Text{Top: 5, Size: 9}),
			text.New(prefixed("Phone: ", invoice.CustomerPhone), props.Text{Top: 10, Size: 9}),
			text.New(prefixed("GSTIN: ", invoice.CustomerGST), props.Text{Top: 15, Size: 9}),
		),
	)

	header := props.Text{Style: fontstyle.Bold, Size: 8}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right}
	m.AddRow(8,
		text.NewCol(3, "Item", header),
		text.NewCol(1, "HSN", header),
		text.NewCol(1, "Qty", headerRight),
		text.NewCol(1, "Rate", headerRight),
		text.NewCol(2, "Taxable", headerRight),
		text.NewCol(1, "CGST", headerRight),
		text.NewCol(1, "SGST", headerRight),
		text.NewCol(2, "Total", headerRight),
	)

	cell := props.Text{Size: 8}
	cellRight := props.Text{Size: 8, Align: align.Right}
	for _, item := range invoice.Items {
		m.AddRow(10,
			text.NewCol(3, item.Description, cell),
			text.NewCol(1, item.HSNCode, cell),
			text.NewCol(1, fmt.Sprintf("%d", item.Qty), cellRight),
			text.NewCol(1, item.Rate, cellRight),
			text.NewCol(2, item.Taxable, cellRight),
			col.New(1).Add(
				text.New(item.CGSTAmount, cellRight),
				text.New("@"+item.CGSTRate+"%", props.Text{Top: 4, Size: 6, Align: align.Right}),
			),
			col.New(1).Add(
				text.New(item.SGSTAmount, cellRight),
				text.New("@"+item.SGSTRate+"%", props.Text{Top: 4, Size: 6, Align: align.Right}),
			),
			text.NewCol(2, item.Total, cellRight),
		)
	}

	totalRow := func(label, value string, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(7),
			text.NewCol(3, label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
	totalRow("Taxable value", invoice.Subtotal, false)
	totalRow("CGST", invoice.CGSTTotal, false)
	totalRow("SGST", invoice.SGSTTotal, false)
	totalRow("Total GST", invoice.GSTTotal, false)
	totalRow("Grand total", invoice.GrandTotal, true)

	if invoice.AmountInWords != "" {
		m.AddRow(10,
			text.NewCol(12, "Amount in words: "+invoice.AmountInWords, props.Text{Size: 9, Top: 3}),
		)
	}
	if seller.Footer != "" {
		m.AddRow(12,
			text.NewCol(12, seller.Footer, props.Text{Size: 8, Top: 4, Align: align.Center}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func stateLine(s Seller) string {
	switch {
	case s.State != "" && s.StateCode != "":
		return fmt.Sprintf("State: %s (%s)", s.State, s.StateCode)
	case s.State != "":
		return "State: " + s.State
	default:
		return ""
	}
}

func prefixed(prefix, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return prefix + value
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}
