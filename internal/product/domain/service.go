package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// Archive hides the product from the catalog; past invoices keep their snapshot.
	Archive(ctx context.Context, id string) (*Response, error)
	// Delete removes the row and is refused while any invoice item references it.
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Name            string
	Category        string
	IncludeArchived bool
	SortBy          string
	OrderBy         string
}

type CreateRequest struct {
	Name          string          `json:"name"`
	Category      *string         `json:"category"`
	HSNCode       *string         `json:"hsnCode"`
	Rate          decimal.Decimal `json:"rate"`
	GSTPercentage decimal.Decimal `json:"gstPercentage"`
	Quantity      int64           `json:"quantity"`
	Comments      *string         `json:"comments"`
}

type UpdateRequest struct {
	ID            string           `json:"-"`
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	HSNCode       *string          `json:"hsnCode"`
	Rate          *decimal.Decimal `json:"rate"`
	GSTPercentage *decimal.Decimal `json:"gstPercentage"`
	Quantity      *int64           `json:"quantity"`
	Comments      *string          `json:"comments"`
}

type Response struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Category      *string    `json:"category"`
	HSNCode       *string    `json:"hsnCode"`
	Rate          string     `json:"rate"`
	GSTPercentage string     `json:"gstPercentage"`
	Quantity      int64      `json:"quantity"`
	Comments      *string    `json:"comments"`
	DeletedAt     *time.Time `json:"deletedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidQuantity = errors.New("invalid_stock_quantity")
	ErrNotFound        = errors.New("product_not_found")
	ErrInvalidID       = errors.New("invalid_id")
	ErrProductInUse    = errors.New("product_in_use")
)
