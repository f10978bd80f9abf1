package numbering

import "time"

// Sequence is the per-year high-water mark of issued invoice numbers.
// Its row is also the allocation lock for that year.
type Sequence struct {
	Prefix       string    `gorm:"primaryKey;type:varchar(16)"`
	LastSequence int64     `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Sequence) TableName() string { return "invoice_sequences" }

// Number is one allocated invoice number.
type Number struct {
	Value      string
	FiscalYear FiscalYear
	Sequence   int64
}
