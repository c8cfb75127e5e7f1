package model

import (
	"fmt"
	"time"

	"rosterd/internal/timegrid"
)

// Weekday names used as template day keys.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekdayOrder lists the template days Monday-first, matching the storage key.
var WeekdayOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf maps a calendar date to its template day key.
func WeekdayOf(date time.Time) Weekday {
	switch date.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// WorkingHours is a staff member's working window for one day.
// Ignored entirely when the day is a holiday.
type WorkingHours struct {
	Start timegrid.Minutes `json:"start"`
	End   timegrid.Minutes `json:"end"`
}

// IsZero reports whether no window is set.
func (w WorkingHours) IsZero() bool { return w.Start == 0 && w.End == 0 }

// Validate rejects malformed windows. A zero window is valid (holiday days
// carry zeroed hours).
func (w WorkingHours) Validate() error {
	if w.IsZero() {
		return nil
	}
	if w.Start >= w.End {
		return &ValidationError{Msg: fmt.Sprintf("working hours start %s not before end %s", w.Start, w.End)}
	}
	if !w.Start.Valid() || !w.End.Valid() {
		return &ValidationError{Msg: "working hours out of day range"}
	}
	return nil
}

// BreakWindow is a named pause (lunch, cleaning) inside working hours.
type BreakWindow struct {
	Start timegrid.Minutes `json:"start"`
	End   timegrid.Minutes `json:"end"`
	Name  string           `json:"name"`
}

// Validate rejects malformed break windows.
func (b BreakWindow) Validate() error {
	if b.Start >= b.End {
		return &ValidationError{Msg: fmt.Sprintf("break %q start %s not before end %s", b.Name, b.Start, b.End)}
	}
	if !b.Start.Valid() || !b.End.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("break %q out of day range", b.Name)}
	}
	return nil
}

// DaySchedule is the resolved view of one staff member's day: holiday flag,
// working window and ordered break list. Computed on demand, never stored
// on its own.
type DaySchedule struct {
	IsHoliday    bool          `json:"is_holiday"`
	WorkingHours WorkingHours  `json:"working_hours"`
	BreakTimes   []BreakWindow `json:"break_times"`
}

// Validate checks internal consistency: breaks inside working hours and
// mutually disjoint. Holiday days are exempt (their hours are ignored).
func (d DaySchedule) Validate() error {
	if d.IsHoliday {
		return nil
	}
	if err := d.WorkingHours.Validate(); err != nil {
		return err
	}
	for i, b := range d.BreakTimes {
		if err := b.Validate(); err != nil {
			return err
		}
		if !d.WorkingHours.IsZero() &&
			!timegrid.Contains(d.WorkingHours.Start, d.WorkingHours.End, b.Start, b.End) {
			return &ValidationError{Msg: fmt.Sprintf("break %q outside working hours", b.Name)}
		}
		for _, other := range d.BreakTimes[i+1:] {
			if timegrid.Overlaps(b.Start, b.End, other.Start, other.End) {
				return &ValidationError{Msg: fmt.Sprintf("breaks %q and %q overlap", b.Name, other.Name)}
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d DaySchedule) Clone() DaySchedule {
	out := d
	if d.BreakTimes != nil {
		out.BreakTimes = make([]BreakWindow, len(d.BreakTimes))
		copy(out.BreakTimes, d.BreakTimes)
	}
	return out
}

// WeeklyTemplate is the recurring schedule of one staff member for one
// Saturday-to-Friday business week, stored keyed by the Monday of that week.
// Saves are full overwrites per key; UpdatedAt is the optimistic guard
// against a stale editor clobbering a concurrent save.
type WeeklyTemplate struct {
	StaffID   string                  `json:"staff_id"`
	WeekStart time.Time               `json:"week_start"` // Monday, midnight local
	Days      map[Weekday]DaySchedule `json:"days"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Day returns the schedule for the given weekday, defaulting to an empty
// holiday when the template has no entry for it.
func (t *WeeklyTemplate) Day(w Weekday) DaySchedule {
	if t == nil || t.Days == nil {
		return DaySchedule{IsHoliday: true}
	}
	day, ok := t.Days[w]
	if !ok {
		return DaySchedule{IsHoliday: true}
	}
	return day
}

// Clone returns a deep copy of the template.
func (t *WeeklyTemplate) Clone() *WeeklyTemplate {
	if t == nil {
		return nil
	}
	out := &WeeklyTemplate{
		StaffID:   t.StaffID,
		WeekStart: t.WeekStart,
		UpdatedAt: t.UpdatedAt,
		Days:      make(map[Weekday]DaySchedule, len(t.Days)),
	}
	for k, v := range t.Days {
		out.Days[k] = v.Clone()
	}
	return out
}

// Validate checks every day of the template.
func (t *WeeklyTemplate) Validate() error {
	if t.StaffID == "" {
		return &ValidationError{Msg: "template staff id is empty"}
	}
	for _, w := range WeekdayOrder {
		if day, ok := t.Days[w]; ok {
			if err := day.Validate(); err != nil {
				return fmt.Errorf("%s: %w", w, err)
			}
		}
	}
	return nil
}

// DailyOverride is the legacy single-day exception layer. When present for
// a date it wins over the weekly template entirely. Overrides predate the
// weekly-template feature and therefore carry no break list.
type DailyOverride struct {
	StaffID      string       `json:"staff_id"`
	Date         time.Time    `json:"date"` // midnight local
	IsHoliday    bool         `json:"is_holiday"`
	WorkingHours WorkingHours `json:"working_hours"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DaySchedule converts the override into a resolved day.
func (o *DailyOverride) DaySchedule() DaySchedule {
	return DaySchedule{
		IsHoliday:    o.IsHoliday,
		WorkingHours: o.WorkingHours,
		BreakTimes:   nil,
	}
}
