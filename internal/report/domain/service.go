package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Stats(ctx context.Context) (*StatsResponse, error)
	Sales(ctx context.Context, req RangeRequest) (*SalesReport, error)
	ExportSales(ctx context.Context, req RangeRequest) (*Document, error)
	Stock(ctx context.Context, req RangeRequest) ([]StockRow, error)
}

// RangeRequest bounds are business-timezone calendar days; EndDate is inclusive.
type RangeRequest struct {
	StartDate string
	EndDate   string
}

type PeriodStats struct {
	Sales        string `json:"sales"`
	Expenses     string `json:"expenses"`
	InvoiceCount int64  `json:"invoiceCount"`
}

// StatsResponse only counts live invoices.
type StatsResponse struct {
	Today PeriodStats `json:"today"`
	Week  PeriodStats `json:"week"`
	Month PeriodStats `json:"month"`
}

type SalesTotals struct {
	TotalSales   string `json:"totalSales"`
	B2BSales     string `json:"b2bSales"`
	B2CSales     string `json:"b2cSales"`
	Taxable      string `json:"taxable"`
	GSTCollected string `json:"gstCollected"`
	CashSales    string `json:"cashSales"`
	OnlineSales  string `json:"onlineSales"`
	InvoiceCount int64  `json:"invoiceCount"`
}

type SalesRow struct {
	InvoiceID     string    `json:"invoiceId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	InvoiceType   string    `json:"invoiceType"`
	CustomerName  string    `json:"customerName"`
	CustomerGST   *string   `json:"customerGst"`
	PaymentMode   string    `json:"paymentMode"`
	Subtotal      string    `json:"subtotal"`
	GSTAmount     string    `json:"gstAmount"`
	GrandTotal    string    `json:"grandTotal"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SalesReport struct {
	StartDate string      `json:"startDate,omitempty"`
	EndDate   string      `json:"endDate,omitempty"`
	Totals    SalesTotals `json:"totals"`
	Rows      []SalesRow  `json:"rows"`
}

type StockRow struct {
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	Category       *string `json:"category"`
	HSNCode        *string `json:"hsnCode"`
	QuantityOnHand int64   `json:"quantityOnHand"`
	QuantitySold   int64   `json:"quantitySold"`
}

type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

var ErrInvalidDateRange = errors.New("invalid_date_range")
