package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Rosario027/finalerp/internal/clock"
	expensedomain "github.com/Rosario027/finalerp/internal/expense/domain"
	invoicedomain "github.com/Rosario027/finalerp/internal/invoice/domain"
	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/report/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/Rosario027/finalerp/pkg/db/dbtest"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ist = time.FixedZone("IST", 19800)

type fixture struct {
	db     *gorm.DB
	clock  *clock.FakeClock
	svc    domain.Service
	nextID int64
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t,
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&productdomain.Product{},
		&expensedomain.Expense{},
	)
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 18, 0, 0, 0, ist))
	return &fixture{
		db:    db,
		clock: fake,
		svc:   NewService(Params{DB: db, Log: zap.NewNop(), Clock: fake}),
	}
}

func (f *fixture) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fixture) product(t *testing.T, name string, stock int64) int64 {
	t.Helper()
	now := f.clock.Now().UTC()
	p := &productdomain.Product{
		ID:            f.id(),
		Name:          name,
		Rate:          decimal.NewFromInt(100),
		GSTPercentage: decimal.NewFromInt(18),
		Quantity:      stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p.ID
}

type sale struct {
	at          time.Time
	invoiceType invoicedomain.InvoiceType
	payment     invoicedomain.PaymentMode
	subtotal    string
	gst         string
	productID   int64
	quantity    int64
	deleted     bool
}

func (f *fixture) invoice(t *testing.T, s sale) {
	t.Helper()
	subtotal := decimal.RequireFromString(s.subtotal)
	gst := decimal.RequireFromString(s.gst)
	inv := &invoicedomain.Invoice{
		ID:            snowflake.ID(f.id()),
		InvoiceNumber: "FY25-26/" + snowflake.ID(f.nextID).String(),
		InvoiceType:   s.invoiceType,
		CustomerName:  "Customer",
		PaymentMode:   s.payment,
		GSTMode:       tax.GSTModeExclusive,
		Subtotal:      subtotal,
		GSTAmount:     gst,
		GrandTotal:    subtotal.Add(gst),
		CreatedAt:     s.at.UTC(),
		UpdatedAt:     s.at.UTC(),
	}
	if s.deleted {
		at := s.at.UTC()
		inv.DeletedAt = &at
	}
	require.NoError(t, f.db.Omit("Items").Create(inv).Error)

	if s.productID == 0 {
		return
	}
	productID := snowflake.ID(s.productID)
	require.NoError(t, f.db.Create(&invoicedomain.InvoiceItem{
		ID:            snowflake.ID(f.id()),
		InvoiceID:     inv.ID,
		ProductID:     &productID,
		ItemName:      "item",
		Rate:          subtotal,
		Quantity:      s.quantity,
		GSTPercentage: decimal.NewFromInt(18),
		TaxableValue:  subtotal,
		Total:         inv.GrandTotal,
		CreatedAt:     s.at.UTC(),
	}).Error)
}

func (f *fixture) expense(t *testing.T, at time.Time, amount string) {
	t.Helper()
	require.NoError(t, f.db.Create(&expensedomain.Expense{
		ID:          f.id(),
		Description: "expense",
		Amount:      decimal.RequireFromString(amount),
		CreatedAt:   at.UTC(),
		UpdatedAt:   at.UTC(),
	}).Error)
}

func TestStats_WindowsAndDeletedInvoices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	today := time.Date(2025, 6, 15, 9, 0, 0, 0, ist)
	threeDaysAgo := time.Date(2025, 6, 12, 9, 0, 0, 0, ist)
	earlyMonth := time.Date(2025, 6, 2, 9, 0, 0, 0, ist)
	lastMonth := time.Date(2025, 5, 30, 9, 0, 0, 0, ist)

	f.invoice(t, sale{at: today, invoiceType: "B2C", payment: "Cash", subtotal: "100", gst: "18"})
	f.invoice(t, sale{at: today, invoiceType: "B2C", payment: "Cash", subtotal: "500", gst: "90", deleted: true})
	f.invoice(t, sale{at: threeDaysAgo, invoiceType: "B2B", payment: "Online", subtotal: "200", gst: "36"})
	f.invoice(t, sale{at: earlyMonth, invoiceType: "B2C", payment: "Cash", subtotal: "50", gst: "2.50"})
	f.invoice(t, sale{at: lastMonth, invoiceType: "B2C", payment: "Cash", subtotal: "1000", gst: "180"})
	f.expense(t, today, "40")
	f.expense(t, earlyMonth, "10.50")

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.PeriodStats{Sales: "118.00", Expenses: "40.00", InvoiceCount: 1}, stats.Today)
	assert.Equal(t, domain.PeriodStats{Sales: "354.00", Expenses: "40.00", InvoiceCount: 2}, stats.Week)
	assert.Equal(t, domain.PeriodStats{Sales: "406.50", Expenses: "50.50", InvoiceCount: 3}, stats.Month)
}

func TestSales_TotalsAndRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := time.Date(2025, 6, 10, 11, 0, 0, 0, ist)
	f.invoice(t, sale{at: day, invoiceType: "B2B", payment: "Online", subtotal: "200", gst: "36"})
	f.invoice(t, sale{at: day.Add(time.Hour), invoiceType: "B2C", payment: "Cash", subtotal: "100", gst: "18"})
	f.invoice(t, sale{at: day.Add(2 * time.Hour), invoiceType: "B2C", payment: "Cash", subtotal: "999", gst: "1", deleted: true})
	f.invoice(t, sale{at: day.AddDate(0, 0, 1), invoiceType: "B2C", payment: "Cash", subtotal: "10", gst: "0.50"})

	report, err := f.svc.Sales(ctx, domain.RangeRequest{StartDate: "2025-06-10", EndDate: "2025-06-10"})
	require.NoError(t, err)

	assert.Equal(t, domain.SalesTotals{
		TotalSales:   "354.00",
		B2BSales:     "236.00",
		B2CSales:     "118.00",
		Taxable:      "300.00",
		GSTCollected: "54.00",
		CashSales:    "118.00",
		OnlineSales:  "236.00",
		InvoiceCount: 2,
	}, report.Totals)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "B2B", report.Rows[0].InvoiceType)
	assert.Equal(t, "236.00", report.Rows[0].GrandTotal)

	_, err = f.svc.Sales(ctx, domain.RangeRequest{StartDate: "2025-06-11", EndDate: "2025-06-10"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestExportSales_WritesWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.invoice(t, sale{at: time.Date(2025, 6, 10, 11, 0, 0, 0, ist), invoiceType: "B2C", payment: "Cash", subtotal: "100", gst: "18"})

	doc, err := f.svc.ExportSales(ctx, domain.RangeRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "sales-report-2025-06-01-2025-06-30.xlsx", doc.Filename)
	assert.Equal(t, xlsxContentType, doc.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(doc.Body))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(salesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "118", rows[1][8])

	total, err := book.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "118", total)
}

func TestStock_CountsLiveSalesInRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pen := f.product(t, "Pen", 40)
	book := f.product(t, "Book", 12)
	archived := f.product(t, "Old stock", 3)
	require.NoError(t, f.db.Model(&productdomain.Product{}).Where("id = ?", archived).
		Update("deleted_at", f.clock.Now().UTC()).Error)

	june := time.Date(2025, 6, 10, 11, 0, 0, 0, ist)
	f.invoice(t, sale{at: june, invoiceType: "B2C", payment: "Cash", subtotal: "10", gst: "1", productID: pen, quantity: 3})
	f.invoice(t, sale{at: june, invoiceType: "B2C", payment: "Cash", subtotal: "10", gst: "1", productID: pen, quantity: 2})
	f.invoice(t, sale{at: june, invoiceType: "B2C", payment: "Cash", subtotal: "10", gst: "1", productID: pen, quantity: 50, deleted: true})
	f.invoice(t, sale{at: june.AddDate(0, -1, 0), invoiceType: "B2C", payment: "Cash", subtotal: "10", gst: "1", productID: book, quantity: 4})

	rows, err := f.svc.Stock(ctx, domain.RangeRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Book", rows[0].Name)
	assert.Equal(t, int64(12), rows[0].QuantityOnHand)
	assert.Equal(t, int64(0), rows[0].QuantitySold)
	assert.Equal(t, "Pen", rows[1].Name)
	assert.Equal(t, int64(5), rows[1].QuantitySold)

	all, err := f.svc.Stock(ctx, domain.RangeRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all[0].QuantitySold)
}
