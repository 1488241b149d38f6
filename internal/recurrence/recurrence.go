// Package recurrence advances dates by a frequency and renders the schedule
// for display.
package recurrence

import (
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// Next returns the occurrence after date. Month and year steps keep the day
// of month when it exists and otherwise clamp to the last day of the target
// month, so Jan 31 is followed by Feb 28 (or 29). Unknown frequencies return
// date unchanged.
func Next(date time.Time, freq domain.Frequency) time.Time {
	switch freq {
	case domain.Daily:
		return date.AddDate(0, 0, 1)
	case domain.Weekly:
		return date.AddDate(0, 0, 7)
	case domain.Monthly:
		return addMonths(date, 1)
	case domain.Yearly:
		return addMonths(date, 12)
	default:
		return date
	}
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
