package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, req SetRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	// NumberingConfig reads the numbering settings through db, which may be a transaction.
	NumberingConfig(ctx context.Context, db *gorm.DB) (NumberingConfig, error)
}

type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response carries a nil Value when the key has never been written.
type Response struct {
	Key       string     `json:"key"`
	Value     *string    `json:"value"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

var (
	ErrInvalidKey         = errors.New("invalid_key")
	ErrInvalidValue       = errors.New("invalid_value")
	ErrInvalidSeriesStart = errors.New("invalid_series_start")
	ErrInvalidGSTMode     = errors.New("invalid_gst_mode")
)
