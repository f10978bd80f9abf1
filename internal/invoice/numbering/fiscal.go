package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinSequenceWidth is the zero-padded width of the sequence part.
const MinSequenceWidth = 3

// FiscalYear is an Indian financial year, 1 April to 31 March.
type FiscalYear struct {
	StartYear int
}

// FiscalYearOf returns the financial year containing t in t's own location.
func FiscalYearOf(t time.Time) FiscalYear {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return FiscalYear{StartYear: year}
}

func (fy FiscalYear) EndYear() int {
	return fy.StartYear + 1
}

// Prefix renders the numbering prefix, e.g. "FY25-26/".
func (fy FiscalYear) Prefix() string {
	return fmt.Sprintf("FY%02d-%02d/", fy.StartYear%100, fy.EndYear()%100)
}

// Label renders the year for display, e.g. "2025-26".
func (fy FiscalYear) Label() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, fy.EndYear()%100)
}

// Bounds returns [start, end) of the year in loc.
func (fy FiscalYear) Bounds(loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(fy.StartYear, time.April, 1, 0, 0, 0, 0, loc)
	end := time.Date(fy.EndYear(), time.April, 1, 0, 0, 0, 0, loc)
	return start, end
}

// Format joins prefix and sequence, padding the sequence to MinSequenceWidth digits.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, MinSequenceWidth, seq)
}

// ParseSequence extracts the sequence from a number carrying prefix.
func ParseSequence(number, prefix string) (int64, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, prefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
