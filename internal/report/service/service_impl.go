package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/report/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	invoiceTypeB2B    = "B2B"
	invoiceTypeB2C    = "B2C"
	paymentModeCash   = "cash"
	paymentModeOnline = "online"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
	}
}

type periodRow struct {
	Total decimal.Decimal `gorm:"column:total"`
	Count int64           `gorm:"column:count"`
}

func (s *Service) Stats(ctx context.Context) (*domain.StatsResponse, error) {
	now := s.clock.Now()
	windows := []time.Time{
		clock.StartOfDay(now).UTC(),
		now.Add(-7 * 24 * time.Hour).UTC(),
		clock.StartOfMonth(now).UTC(),
	}

	out := make([]domain.PeriodStats, 0, len(windows))
	for _, since := range windows {
		var sales periodRow
		err := s.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(grand_total), 0) AS total, COUNT(*) AS count
			FROM invoices
			WHERE deleted_at IS NULL AND created_at >= ?`,
			since,
		).Scan(&sales).Error
		if err != nil {
			return nil, err
		}

		var expenses periodRow
		err = s.db.WithContext(ctx).Raw(`
			SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
			FROM expenses
			WHERE created_at >= ?`,
			since,
		).Scan(&expenses).Error
		if err != nil {
			return nil, err
		}

		out = append(out, domain.PeriodStats{
			Sales:        money(sales.Total),
			Expenses:     money(expenses.Total),
			InvoiceCount: sales.Count,
		})
	}

	return &domain.StatsResponse{Today: out[0], Week: out[1], Month: out[2]}, nil
}

type salesRow struct {
	ID            snowflake.ID    `gorm:"column:id"`
	InvoiceNumber string          `gorm:"column:invoice_number"`
	InvoiceType   string          `gorm:"column:invoice_type"`
	CustomerName  string          `gorm:"column:customer_name"`
	CustomerGST   *string         `gorm:"column:customer_gst"`
	PaymentMode   string          `gorm:"column:payment_mode"`
	Subtotal      decimal.Decimal `gorm:"column:subtotal"`
	GSTAmount     decimal.Decimal `gorm:"column:gst_amount"`
	GrandTotal    decimal.Decimal `gorm:"column:grand_total"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (s *Service) Sales(ctx context.Context, req domain.RangeRequest) (*domain.SalesReport, error) {
	from, to, err := s.dayRange(req)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, invoice_number, invoice_type, customer_name, customer_gst, payment_mode,
		       subtotal, gst_amount, grand_total, created_at
		FROM invoices
		WHERE deleted_at IS NULL`
	var args []any
	if from != nil {
		query += ` AND created_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND created_at < ?`
		args = append(args, *to)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var rows []salesRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	var total, b2b, b2c, taxable, gst, cash, online decimal.Decimal
	loc := s.clock.Now().Location()
	report := &domain.SalesReport{
		StartDate: strings.TrimSpace(req.StartDate),
		EndDate:   strings.TrimSpace(req.EndDate),
		Rows:      make([]domain.SalesRow, 0, len(rows)),
	}
	for _, row := range rows {
		total = total.Add(row.GrandTotal)
		taxable = taxable.Add(row.Subtotal)
		gst = gst.Add(row.GSTAmount)
		switch strings.ToUpper(row.InvoiceType) {
		case invoiceTypeB2B:
			b2b = b2b.Add(row.GrandTotal)
		case invoiceTypeB2C:
			b2c = b2c.Add(row.GrandTotal)
		}
		switch strings.ToLower(row.PaymentMode) {
		case paymentModeCash:
			cash = cash.Add(row.GrandTotal)
		case paymentModeOnline:
			online = online.Add(row.GrandTotal)
		}

		report.Rows = append(report.Rows, domain.SalesRow{
			InvoiceID:     row.ID.String(),
			InvoiceNumber: row.InvoiceNumber,
			InvoiceType:   row.InvoiceType,
			CustomerName:  row.CustomerName,
			CustomerGST:   row.CustomerGST,
			PaymentMode:   row.PaymentMode,
			Subtotal:      money(row.Subtotal),
			GSTAmount:     money(row.GSTAmount),
			GrandTotal:    money(row.GrandTotal),
			CreatedAt:     row.CreatedAt.In(loc),
		})
	}
	report.Totals = domain.SalesTotals{
		TotalSales:   money(total),
		B2BSales:     money(b2b),
		B2CSales:     money(b2c),
		Taxable:      money(taxable),
		GSTCollected: money(gst),
		CashSales:    money(cash),
		OnlineSales:  money(online),
		InvoiceCount: int64(len(rows)),
	}
	return report, nil
}

type stockRow struct {
	ID           int64   `gorm:"column:id"`
	Name         string  `gorm:"column:name"`
	Category     *string `gorm:"column:category"`
	HSNCode      *string `gorm:"column:hsn_code"`
	Quantity     int64   `gorm:"column:quantity"`
	QuantitySold int64   `gorm:"column:quantity_sold"`
}

// Stock lists live products with stock on hand and units sold on live invoices in the range.
func (s *Service) Stock(ctx context.Context, req domain.RangeRequest) ([]domain.StockRow, error) {
	from, to, err := s.dayRange(req)
	if err != nil {
		return nil, err
	}

	sold := `
		SELECT ii.product_id, SUM(ii.quantity) AS sold
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.deleted_at IS NULL AND ii.product_id IS NOT NULL`
	var args []any
	if from != nil {
		sold += ` AND i.created_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		sold += ` AND i.created_at < ?`
		args = append(args, *to)
	}
	sold += ` GROUP BY ii.product_id`

	query := `
		SELECT p.id, p.name, p.category, p.hsn_code, p.quantity,
		       COALESCE(s.sold, 0) AS quantity_sold
		FROM products p
		LEFT JOIN (` + sold + `) s ON s.product_id = p.id
		WHERE p.deleted_at IS NULL
		ORDER BY p.name ASC, p.id ASC`

	var rows []stockRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.StockRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.StockRow{
			ProductID:      snowflake.ID(row.ID).String(),
			Name:           row.Name,
			Category:       row.Category,
			HSNCode:        row.HSNCode,
			QuantityOnHand: row.Quantity,
			QuantitySold:   row.QuantitySold,
		})
	}
	return out, nil
}

func (s *Service) dayRange(req domain.RangeRequest) (*time.Time, *time.Time, error) {
	from, to, err := clock.DayRange(s.clock.Now().Location(), req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, domain.ErrInvalidDateRange
	}
	return from, to, nil
}

func money(d decimal.Decimal) string {
	return tax.Round(d).StringFixed(tax.MoneyScale)
}
