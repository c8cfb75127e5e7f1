package schedule

import (
	"time"

	"rosterd/internal/model"
)

// The settable business week runs Saturday through Friday: the weekend
// belongs to the upcoming Monday-to-Friday stretch, not the previous one.
// Storage, however, keys templates by the ISO Monday of that stretch.
// Keeping the two computations split here mirrors how the calendar editor
// presents ranges versus how templates are persisted; collapsing them has
// historically produced off-by-one-week bugs.

// WeekKey returns the Monday storage key for the business week containing
// date. Saturday and Sunday map to the upcoming Monday.
func WeekKey(date time.Time) time.Time {
	d := model.Midnight(date)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		offset := int(d.Weekday() - time.Monday)
		return d.AddDate(0, 0, -offset)
	}
}

// WeekRange returns the user-facing Saturday..Friday range (inclusive
// start, inclusive end) of the business week containing date.
func WeekRange(date time.Time) (sat, fri time.Time) {
	monday := WeekKey(date)
	return monday.AddDate(0, 0, -2), monday.AddDate(0, 0, 4)
}

// WeekDates lists the seven calendar dates of the business week containing
// date, Saturday first.
func WeekDates(date time.Time) []time.Time {
	sat, _ := WeekRange(date)
	out := make([]time.Time, 7)
	for i := range out {
		out[i] = sat.AddDate(0, 0, i)
	}
	return out
}

// DateOfWeekday returns the calendar date a template day key falls on
// within the week stored under the given Monday key.
func DateOfWeekday(weekStart time.Time, w model.Weekday) time.Time {
	monday := model.Midnight(weekStart)
	switch w {
	case model.Saturday:
		return monday.AddDate(0, 0, -2)
	case model.Sunday:
		return monday.AddDate(0, 0, -1)
	case model.Tuesday:
		return monday.AddDate(0, 0, 1)
	case model.Wednesday:
		return monday.AddDate(0, 0, 2)
	case model.Thursday:
		return monday.AddDate(0, 0, 3)
	case model.Friday:
		return monday.AddDate(0, 0, 4)
	default:
		return monday
	}
}
