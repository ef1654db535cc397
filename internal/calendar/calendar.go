// Package calendar does UTC day arithmetic for trip and history date ranges.
package calendar

import (
	"errors"
	"time"
)

// ErrRangeReversed is returned when the end date precedes the start date.
var ErrRangeReversed = errors.New("end date before start date")

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PreviousYear returns the same month and day one year earlier.
// Feb 29 has no counterpart in a common year and maps to Feb 28.
func PreviousYear(t time.Time) time.Time {
	y, m, d := t.Date()
	if m == time.February && d == 29 {
		d = 28
	}
	return time.Date(y-1, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns every calendar day from start through end inclusive.
func Days(start, end time.Time) ([]time.Time, error) {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return nil, ErrRangeReversed
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}
