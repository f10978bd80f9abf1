package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Edit(ctx context.Context, id string, req EditRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	PreviewNextNumber(ctx context.Context) (NextNumberResponse, error)
	Print(ctx context.Context, id string) (*Document, error)
	Receipt(ctx context.Context, id string) (*Document, error)
}

type LineItemInput struct {
	ProductID     *string         `json:"productId,omitempty"`
	ItemName      string          `json:"itemName"`
	HSNCode       *string         `json:"hsnCode,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	Quantity      int64           `json:"quantity"`
	GSTPercentage decimal.Decimal `json:"gstPercentage"`
}

type CreateRequest struct {
	InvoiceType   string          `json:"invoiceType"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone *string         `json:"customerPhone,omitempty"`
	CustomerGST   *string         `json:"customerGst,omitempty"`
	PaymentMode   string          `json:"paymentMode"`
	GSTMode       *string         `json:"gstMode,omitempty"`
	Items         []LineItemInput `json:"items"`
}

// EditRequest applies only the non-nil fields. GSTMode is accepted for
// payload compatibility and always ignored.
type EditRequest struct {
	InvoiceType   *string         `json:"invoiceType,omitempty"`
	CustomerName  *string         `json:"customerName,omitempty"`
	CustomerPhone *string         `json:"customerPhone,omitempty"`
	CustomerGST   *string         `json:"customerGst,omitempty"`
	PaymentMode   *string         `json:"paymentMode,omitempty"`
	GSTMode       *string         `json:"gstMode,omitempty"`
	Items         []LineItemInput `json:"items,omitempty"`
}

// ListRequest dates are calendar days (YYYY-MM-DD) in the business timezone.
// EndDate includes the whole day.
type ListRequest struct {
	StartDate      string
	EndDate        string
	IncludeDeleted bool
}

type Response struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoiceNumber"`
	InvoiceType   string         `json:"invoiceType"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone *string        `json:"customerPhone"`
	CustomerGST   *string        `json:"customerGst"`
	PaymentMode   string         `json:"paymentMode"`
	GSTMode       string         `json:"gstMode"`
	Subtotal      string         `json:"subtotal"`
	GSTAmount     string         `json:"gstAmount"`
	GrandTotal    string         `json:"grandTotal"`
	IsEdited      bool           `json:"isEdited"`
	DeletedAt     *time.Time     `json:"deletedAt"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Items         []ItemResponse `json:"items,omitempty"`
}

type ItemResponse struct {
	ID             string  `json:"id"`
	ProductID      *string `json:"productId"`
	ItemName       string  `json:"itemName"`
	HSNCode        *string `json:"hsnCode"`
	Rate           string  `json:"rate"`
	Quantity       int64   `json:"quantity"`
	GSTPercentage  string  `json:"gstPercentage"`
	CGSTPercentage string  `json:"cgstPercentage"`
	CGSTAmount     string  `json:"cgstAmount"`
	SGSTPercentage string  `json:"sgstPercentage"`
	SGSTAmount     string  `json:"sgstAmount"`
	TaxableValue   string  `json:"taxableValue"`
	Total          string  `json:"total"`
}

type NextNumberResponse struct {
	InvoiceNumber string `json:"invoiceNumber"`
	FiscalYear    string `json:"fiscalYear"`
}

// Document is a rendered invoice ready for download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

var (
	ErrInvalidInvoiceID     = errors.New("invalid_invoice_id")
	ErrInvoiceNotFound      = errors.New("invoice_not_found")
	ErrInvoiceDeleted       = errors.New("invoice_deleted")
	ErrInvalidInvoiceType   = errors.New("invalid_invoice_type")
	ErrInvalidCustomerName  = errors.New("invalid_customer_name")
	ErrInvalidCustomerPhone = errors.New("invalid_customer_phone")
	ErrInvalidCustomerGST   = errors.New("invalid_customer_gst")
	ErrInvalidPaymentMode   = errors.New("invalid_payment_mode")
	ErrInvalidItemName      = errors.New("invalid_item_name")
	ErrInvalidProductID     = errors.New("invalid_product_id")
	ErrInvalidDateRange     = errors.New("invalid_date_range")
	ErrInvoiceNumberBusy    = errors.New("invoice_number_unavailable")
)
