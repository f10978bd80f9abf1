package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"type:varchar(255);not null;index"`
	Category      *string         `gorm:"type:varchar(100);index"`
	HSNCode       *string         `gorm:"column:hsn_code;type:varchar(8)"`
	Rate          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	GSTPercentage decimal.Decimal `gorm:"column:gst_percentage;type:numeric(5,2);not null"`
	Quantity      int64           `gorm:"not null;default:0"`
	Comments      *string         `gorm:"type:text"`
	DeletedAt     *time.Time      `gorm:"index"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

func (Product) TableName() string { return "products" }
