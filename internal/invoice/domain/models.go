// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	productdomain "github.com/Rosario027/finalerp/internal/product/domain"
	"github.com/Rosario027/finalerp/internal/tax"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeB2C InvoiceType = "B2C"
	InvoiceTypeB2B InvoiceType = "B2B"
)

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeOnline PaymentMode = "Online"
)

// Invoice is the persisted header. GSTMode is written once at creation.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	InvoiceNumber string          `gorm:"type:varchar(32);not null;uniqueIndex:ux_invoices_invoice_number"`
	InvoiceType   InvoiceType     `gorm:"type:varchar(8);not null"`
	CustomerName  string          `gorm:"type:varchar(255);not null"`
	CustomerPhone *string         `gorm:"type:varchar(20)"`
	CustomerGST   *string         `gorm:"column:customer_gst;type:varchar(15)"`
	PaymentMode   PaymentMode     `gorm:"type:varchar(16);not null"`
	GSTMode       tax.GSTMode     `gorm:"column:gst_mode;type:varchar(16);not null"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	GSTAmount     decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null"`
	GrandTotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsEdited      bool            `gorm:"not null;default:false"`
	CreatedBy     *snowflake.ID   `gorm:"index"`
	DeletedAt     *time.Time      `gorm:"index"`
	CreatedAt     time.Time       `gorm:"not null;index"`
	UpdatedAt     time.Time       `gorm:"not null"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

func (i *Invoice) IsDeleted() bool {
	return i != nil && i.DeletedAt != nil
}

// InvoiceItem snapshots the product price and tax at the time of sale.
type InvoiceItem struct {
	ID             snowflake.ID           `gorm:"primaryKey"`
	InvoiceID      snowflake.ID           `gorm:"not null;index"`
	ProductID      *snowflake.ID          `gorm:"index"`
	Product        *productdomain.Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Position       int                    `gorm:"not null;default:0"`
	ItemName       string                 `gorm:"type:varchar(255);not null"`
	HSNCode        *string                `gorm:"column:hsn_code;type:varchar(8)"`
	Rate           decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	Quantity       int64                  `gorm:"not null"`
	GSTPercentage  decimal.Decimal        `gorm:"column:gst_percentage;type:numeric(5,2);not null"`
	CGSTPercentage decimal.Decimal        `gorm:"column:cgst_percentage;type:numeric(6,3);not null"`
	CGSTAmount     decimal.Decimal        `gorm:"column:cgst_amount;type:numeric(12,2);not null"`
	SGSTPercentage decimal.Decimal        `gorm:"column:sgst_percentage;type:numeric(6,3);not null"`
	SGSTAmount     decimal.Decimal        `gorm:"column:sgst_amount;type:numeric(12,2);not null"`
	TaxableValue   decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	Total          decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	CreatedAt      time.Time              `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }

func (i InvoiceItem) GSTAmount() decimal.Decimal {
	return i.CGSTAmount.Add(i.SGSTAmount)
}
