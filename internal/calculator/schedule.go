package calculator

import (
	"time"

	"github.com/tundeajayi/esusu/internal/models"
)

// CycleDueDate returns the contribution due date for a 1-based cycle number,
// derived from the group's start date and frequency: the interval is applied
// cycle-1 times, so cycle 1 is due on the start date itself.
//
// Monthly groups advance by calendar months anchored to the start date's
// day-of-month, clamped to the last day of shorter months: a group started
// Jan 31 is due Feb 28 (29 in leap years), then Mar 31.
func CycleDueDate(start time.Time, freq models.Frequency, cycle int) time.Time {
	n := cycle - 1
	if n <= 0 {
		return start
	}
	switch freq {
	case models.FrequencyDaily:
		return start.AddDate(0, 0, n)
	case models.FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case models.FrequencyMonthly:
		return addMonthsClamped(start, n)
	default:
		return start
	}
}

// addMonthsClamped adds n calendar months to t, clamping the day-of-month to
// the target month's length. time.AddDate would normalize Jan 31 + 1 month to
// Mar 2/3, which is not what a monthly savings schedule means.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	month += time.Month(n)
	// Normalize the year/month pair with day pinned to 1, then clamp.
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
