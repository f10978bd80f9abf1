package tax

import "errors"

var (
	ErrInvalidRate          = errors.New("invalid_rate")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidGSTPercentage = errors.New("invalid_gst_percentage")
	ErrInvalidGSTMode       = errors.New("invalid_gst_mode")
	ErrEmptyItems           = errors.New("invalid_items")
)
