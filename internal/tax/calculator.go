package tax

import "github.com/shopspring/decimal"

// MoneyScale is the number of fraction digits stored and displayed.
const MoneyScale = 2

// PercentScale bounds the GST rate a caller may enter. The CGST and SGST
// halves need HalfRateScale to stay exact.
const (
	PercentScale  = 2
	HalfRateScale = 3
)

var (
	hundred    = decimal.NewFromInt(100)
	two        = decimal.NewFromInt(2)
	maxGSTRate = decimal.NewFromInt(100)
)

// Validate rejects inputs the calculator must never see.
func Validate(in LineInput) error {
	if in.Rate.IsNegative() || !fitsScale(in.Rate, MoneyScale) {
		return ErrInvalidRate
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if in.GSTPercentage.IsNegative() || in.GSTPercentage.GreaterThan(maxGSTRate) ||
		!fitsScale(in.GSTPercentage, PercentScale) {
		return ErrInvalidGSTPercentage
	}
	return nil
}

// fitsScale reports whether d has no significant digits past scale.
// "10.500" fits scale 2, "10.005" does not.
func fitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// FormatPercent renders a rate with two decimals, or three for halves such as 0.125.
func FormatPercent(d decimal.Decimal) string {
	if fitsScale(d, PercentScale) {
		return d.StringFixed(PercentScale)
	}
	return d.StringFixed(HalfRateScale)
}

// ComputeLine derives taxable value, the CGST/SGST halves and the line total.
//
// Exclusive: taxable = rate*qty, gst = taxable*g/100, total = taxable+gst.
// Inclusive: total = rate*qty, gst = total*g/(100+g), taxable = total-gst.
func ComputeLine(in LineInput, mode GSTMode) (Line, error) {
	if err := Validate(in); err != nil {
		return Line{}, err
	}
	if !mode.Valid() {
		return Line{}, ErrInvalidGSTMode
	}

	amount := in.Rate.Mul(decimal.NewFromInt(in.Quantity))
	halfRate := in.GSTPercentage.Div(two)

	line := Line{
		Rate:           in.Rate,
		Quantity:       in.Quantity,
		GSTPercentage:  in.GSTPercentage,
		Mode:           mode,
		CGSTPercentage: halfRate,
		SGSTPercentage: halfRate,
	}

	var gst decimal.Decimal
	switch mode {
	case GSTModeExclusive:
		gst = amount.Mul(in.GSTPercentage).Div(hundred)
	case GSTModeInclusive:
		gst = amount.Mul(in.GSTPercentage).Div(hundred.Add(in.GSTPercentage))
	}

	// split first so cgst + sgst reproduces gst exactly at division precision
	half := gst.Div(two)
	gst = half.Mul(two)
	line.CGSTAmount = half
	line.SGSTAmount = half

	switch mode {
	case GSTModeExclusive:
		line.TaxableValue = amount
		line.Total = amount.Add(gst)
	case GSTModeInclusive:
		line.TaxableValue = amount.Sub(gst)
		line.Total = amount
	}
	return line, nil
}

// Rounded returns the line at MoneyScale with total == taxable + cgst + sgst kept exact.
// The tax halves are rounded first; the taxable value absorbs the remainder in inclusive
// mode so the total still equals rate*qty.
func (l Line) Rounded() Line {
	out := l
	out.CGSTAmount = Round(l.CGSTAmount)
	out.SGSTAmount = out.CGSTAmount
	gst := out.CGSTAmount.Add(out.SGSTAmount)

	switch l.Mode {
	case GSTModeInclusive:
		out.Total = Round(l.Total)
		out.TaxableValue = out.Total.Sub(gst)
	default:
		out.TaxableValue = Round(l.TaxableValue)
		out.Total = out.TaxableValue.Add(gst)
	}
	return out
}

// Round rounds half away from zero to MoneyScale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
