package tax

import "github.com/shopspring/decimal"

// Aggregate sums computed lines into invoice totals.
func Aggregate(lines []Line) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyItems
	}

	subtotal := decimal.Zero
	gst := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.TaxableValue)
		gst = gst.Add(line.CGSTAmount).Add(line.SGSTAmount)
	}

	return Totals{
		Subtotal:   subtotal,
		GSTAmount:  gst,
		GrandTotal: subtotal.Add(gst),
	}, nil
}

// ComputeInvoice prices every input in mode and returns the rounded lines with their totals.
func ComputeInvoice(inputs []LineInput, mode GSTMode) ([]Line, Totals, error) {
	if len(inputs) == 0 {
		return nil, Totals{}, ErrEmptyItems
	}

	lines := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		line, err := ComputeLine(in, mode)
		if err != nil {
			return nil, Totals{}, err
		}
		lines = append(lines, line.Rounded())
	}

	totals, err := Aggregate(lines)
	if err != nil {
		return nil, Totals{}, err
	}
	return lines, totals, nil
}
