package clock

import (
	"errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid_date_range")

// DayRange turns calendar days in loc into a half-open [from, to) pair of UTC
// instants. The end day is included whole. Empty bounds stay nil.
func DayRange(loc *time.Location, start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start = strings.TrimSpace(start); start != "" {
		day, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		utc := day.UTC()
		from = &utc
	}
	if end = strings.TrimSpace(end); end != "" {
		day, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return nil, nil, ErrInvalidDateRange
		}
		utc := day.AddDate(0, 0, 1).UTC()
		to = &utc
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, ErrInvalidDateRange
	}
	return from, to, nil
}

// StartOfDay is midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth is midnight on the first day of t's month in t's location.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
