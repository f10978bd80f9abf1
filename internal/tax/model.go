package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GSTMode says whether a rate already contains GST.
type GSTMode string

const (
	GSTModeInclusive GSTMode = "inclusive" // rate includes GST, tax is extracted
	GSTModeExclusive GSTMode = "exclusive" // GST is added on top of rate
)

// ParseGSTMode accepts the two modes case-insensitively.
func ParseGSTMode(raw string) (GSTMode, error) {
	switch GSTMode(strings.ToLower(strings.TrimSpace(raw))) {
	case GSTModeInclusive:
		return GSTModeInclusive, nil
	case GSTModeExclusive:
		return GSTModeExclusive, nil
	default:
		return "", ErrInvalidGSTMode
	}
}

func (m GSTMode) Valid() bool {
	return m == GSTModeInclusive || m == GSTModeExclusive
}

// LineInput is one priced line before tax.
type LineInput struct {
	Rate          decimal.Decimal
	Quantity      int64
	GSTPercentage decimal.Decimal
}

// Line is a computed line. Amounts are unrounded until Rounded is called.
type Line struct {
	Rate           decimal.Decimal
	Quantity       int64
	GSTPercentage  decimal.Decimal
	Mode           GSTMode
	TaxableValue   decimal.Decimal
	CGSTPercentage decimal.Decimal
	CGSTAmount     decimal.Decimal
	SGSTPercentage decimal.Decimal
	SGSTAmount     decimal.Decimal
	Total          decimal.Decimal
}

// GSTAmount is the combined CGST and SGST of the line.
func (l Line) GSTAmount() decimal.Decimal {
	return l.CGSTAmount.Add(l.SGSTAmount)
}

// Totals are the invoice-level sums.
type Totals struct {
	Subtotal   decimal.Decimal
	GSTAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}
