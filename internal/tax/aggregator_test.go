package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_EmptyRejected(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, _, err = ComputeInvoice(nil, GSTModeExclusive)
	assert.ErrorIs(t, err, ErrEmptyItems)
}

func TestComputeInvoice_Totals(t *testing.T) {
	tests := []struct {
		name     string
		mode     GSTMode
		inputs   []LineInput
		subtotal string
		gst      string
		grand    string
	}{
		{
			name: "exclusive mixed rates",
			mode: GSTModeExclusive,
			inputs: []LineInput{
				{Rate: d("100"), Quantity: 2, GSTPercentage: d("18")},
				{Rate: d("50"), Quantity: 1, GSTPercentage: d("5")},
			},
			subtotal: "250.00",
			gst:      "38.50",
			grand:    "288.50",
		},
		{
			name: "inclusive mixed rates",
			mode: GSTModeInclusive,
			inputs: []LineInput{
				{Rate: d("118"), Quantity: 1, GSTPercentage: d("18")},
				{Rate: d("105"), Quantity: 2, GSTPercentage: d("5")},
			},
			subtotal: "300.00",
			gst:      "28.00",
			grand:    "328.00",
		},
		{
			name: "inclusive with rounding",
			mode: GSTModeInclusive,
			inputs: []LineInput{
				{Rate: d("10"), Quantity: 1, GSTPercentage: d("12")},
				{Rate: d("10"), Quantity: 1, GSTPercentage: d("12")},
				{Rate: d("10"), Quantity: 1, GSTPercentage: d("12")},
			},
			subtotal: "26.76",
			gst:      "3.24",
			grand:    "30.00",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines, totals, err := ComputeInvoice(tc.inputs, tc.mode)
			require.NoError(t, err)
			require.Len(t, lines, len(tc.inputs))

			assert.Equal(t, tc.subtotal, totals.Subtotal.StringFixed(2))
			assert.Equal(t, tc.gst, totals.GSTAmount.StringFixed(2))
			assert.Equal(t, tc.grand, totals.GrandTotal.StringFixed(2))
			assert.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.GSTAmount)))

			sum, err := Aggregate(lines)
			require.NoError(t, err)
			assert.True(t, sum.Subtotal.Equal(totals.Subtotal))
		})
	}
}

func TestComputeInvoice_StopsOnInvalidLine(t *testing.T) {
	_, _, err := ComputeInvoice([]LineInput{
		{Rate: d("10"), Quantity: 1, GSTPercentage: d("5")},
		{Rate: d("10"), Quantity: 0, GSTPercentage: d("5")},
	}, GSTModeExclusive)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
