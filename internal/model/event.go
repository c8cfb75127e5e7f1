package model

import (
	"time"

	"rosterd/internal/timegrid"
)

// EventType classifies what occupies the slot.
type EventType string

const (
	EventClass    EventType = "class"
	EventPersonal EventType = "personal"
	EventMeeting  EventType = "meeting"
	EventBreak    EventType = "break"
	EventHoliday  EventType = "holiday"
)

// EventSource records how the event came to exist.
type EventSource string

const (
	SourceManual           EventSource = "manual"
	SourceWeeklyHoliday    EventSource = "weekly_holiday"
	SourceBooking          EventSource = "booking"
	SourcePeriodEnrollment EventSource = "period_enrollment"
)

// EventStatus is the lifecycle state. Cancellation is terminal; events are
// never physically deleted, so the table doubles as the booking history.
type EventStatus string

const (
	StatusActive    EventStatus = "active"
	StatusCancelled EventStatus = "cancelled"
)

// ScheduleEvent is a booked reservation or a materialized holiday/break
// block generated from a weekly template save.
type ScheduleEvent struct {
	ID         string      `json:"id"`
	StaffID    string      `json:"staff_id"`
	StartTime  time.Time   `json:"start_time"`
	EndTime    time.Time   `json:"end_time"`
	Type       EventType   `json:"type"`
	SourceType EventSource `json:"source_type"`
	Status     EventStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// IsActive reports whether the event still occupies its slot.
func (e *ScheduleEvent) IsActive() bool { return e.Status == StatusActive }

// OverlapsWith checks half-open [StartTime, EndTime) intersection with
// another event.
func (e *ScheduleEvent) OverlapsWith(other *ScheduleEvent) bool {
	return e.StartTime.Before(other.EndTime) && other.StartTime.Before(e.EndTime)
}

// OverlapsRange checks half-open intersection with an absolute time range.
func (e *ScheduleEvent) OverlapsRange(start, end time.Time) bool {
	return e.StartTime.Before(end) && start.Before(e.EndTime)
}

// OnDate reports whether the event touches the given calendar day.
func (e *ScheduleEvent) OnDate(date time.Time) bool {
	dayStart := Midnight(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	return e.OverlapsRange(dayStart, dayEnd)
}

// SlotTime converts a minute-of-day on a calendar date to an absolute time
// in the date's location.
func SlotTime(date time.Time, m timegrid.Minutes) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), m.Hour(), m.Minute(), 0, 0, date.Location())
}

// Midnight truncates a time to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports calendar-day equality, ignoring the time component.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
