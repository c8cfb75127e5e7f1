package model

import "time"

// Role of a panel user acting on the calendar.
type Role string

const (
	RoleMaster Role = "master"
	RoleCoach  Role = "coach"
	RoleViewer Role = "viewer"
)

// Actor is the user performing a booking or edit.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// CanOverridePolicy reports whether the actor may book through a soft
// restriction (holiday, break, out-of-hours) on the given staff member's
// calendar: masters always, staff on their own calendar. Hard restrictions
// (contract window, double booking) have no override path.
func (a Actor) CanOverridePolicy(staffID string) bool {
	return a.Role == RoleMaster || (a.ID != "" && a.ID == staffID)
}

// ShiftType is the staff member's declared shift, used to seed default
// working hours when a holiday day is toggled back to working.
type ShiftType string

const (
	ShiftDay   ShiftType = "day"
	ShiftNight ShiftType = "night"
)

// ContractWindow bounds the dates a staff member may be booked at all.
// Nil ends are open. A slot outside the window is categorically
// unavailable regardless of role or schedule.
type ContractWindow struct {
	Start *time.Time `json:"contract_start_date,omitempty"`
	End   *time.Time `json:"contract_end_date,omitempty"`
}

// Covers reports whether the calendar date falls inside the window.
// Both bounds are inclusive; contractEndDate + 1 day is already outside.
func (c ContractWindow) Covers(date time.Time) bool {
	d := Midnight(date)
	if c.Start != nil && d.Before(Midnight(*c.Start)) {
		return false
	}
	if c.End != nil && d.After(Midnight(*c.End)) {
		return false
	}
	return true
}

// Staff is the slice of the staff record the engine needs.
type Staff struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Role     Role           `json:"role"`
	Shift    ShiftType      `json:"shift_type"`
	Contract ContractWindow `json:"contract"`
}
