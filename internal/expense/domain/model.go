package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          int64           `gorm:"primaryKey"`
	Description string          `gorm:"type:text;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Category    *string         `gorm:"type:varchar(100);index"`
	CreatedBy   *int64
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Expense) TableName() string { return "expenses" }
