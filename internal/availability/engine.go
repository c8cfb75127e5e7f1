// Package availability decides whether a calendar slot is bookable for a
// staff member, combining the resolved day schedule, the staff contract
// window and the already-booked events for that day.
package availability

import (
	"fmt"
	"time"

	"rosterd/internal/metrics"
	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// Reason explains why a slot is blocked, or why booking it needs explicit
// confirmation when the verdict is still bookable.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOutsideContract Reason = "OutsideContract"
	ReasonPastTime        Reason = "PastTime"
	ReasonHoliday         Reason = "Holiday"
	ReasonBreak           Reason = "Break"
	ReasonOutOfHours      Reason = "OutOfHours"
	ReasonOverlap         Reason = "Overlap"
)

// Verdict is the engine's answer for one slot. Bookable with a non-empty
// Reason means the actor may proceed but the UI must obtain explicit
// confirmation first (a master or the staff member booking through their
// own holiday or break).
type Verdict struct {
	Bookable bool   `json:"bookable"`
	Reason   Reason `json:"reason,omitempty"`
}

// Input gathers everything the decision needs. Events must already be
// filtered to active status; cancelled events never block.
type Input struct {
	StaffID  string
	Day      model.DaySchedule
	Contract model.ContractWindow
	Events   []model.ScheduleEvent

	// Now enables the past-time guard when non-zero.
	Now time.Time
}

// IsSlotBookable evaluates the slot [slotStart, slotEnd) on date for the
// acting user. Checks run in fixed order: contract window, past time,
// holiday, break, working hours, then event overlap. Contract, past time
// and overlap are hard blocks with no role override; holiday, break and
// out-of-hours are soft policy a master or the staff member themself may
// confirm through. An overridable soft restriction does not skip the
// overlap check: an occupied slot yields Overlap regardless of role.
func IsSlotBookable(in Input, date time.Time, slotStart, slotEnd timegrid.Minutes, actor model.Actor) (Verdict, error) {
	if slotStart >= slotEnd {
		return Verdict{}, &model.ValidationError{
			Msg: fmt.Sprintf("slot start %s not before end %s", slotStart, slotEnd),
		}
	}
	if !slotStart.Valid() || slotEnd > timegrid.MinutesPerDay {
		return Verdict{}, &model.ValidationError{Msg: "slot outside day range"}
	}

	v := evaluate(in, date, slotStart, slotEnd, actor)
	metrics.IncBookabilityCheck(string(v.Reason))
	return v, nil
}

func evaluate(in Input, date time.Time, slotStart, slotEnd timegrid.Minutes, actor model.Actor) Verdict {
	if !in.Contract.Covers(date) {
		return Verdict{Bookable: false, Reason: ReasonOutsideContract}
	}

	if !in.Now.IsZero() && model.SlotTime(date, slotStart).Before(in.Now) {
		return Verdict{Bookable: false, Reason: ReasonPastTime}
	}

	canOverride := actor.CanOverridePolicy(in.StaffID)

	// First soft restriction hit. An actor without override power is
	// blocked on it immediately; one with override power still has to
	// clear the overlap check below before the slot comes back bookable.
	soft := ReasonNone

	if in.Day.IsHoliday {
		if !canOverride {
			return Verdict{Bookable: false, Reason: ReasonHoliday}
		}
		soft = ReasonHoliday
	} else {
		for _, b := range in.Day.BreakTimes {
			if timegrid.Overlaps(slotStart, slotEnd, b.Start, b.End) {
				if !canOverride {
					return Verdict{Bookable: false, Reason: ReasonBreak}
				}
				soft = ReasonBreak
				break
			}
		}

		if !timegrid.Contains(in.Day.WorkingHours.Start, in.Day.WorkingHours.End, slotStart, slotEnd) {
			if !canOverride {
				return Verdict{Bookable: false, Reason: ReasonOutOfHours}
			}
			if soft == ReasonNone {
				soft = ReasonOutOfHours
			}
		}
	}

	start := model.SlotTime(date, slotStart)
	end := model.SlotTime(date, slotEnd)
	for i := range in.Events {
		ev := &in.Events[i]
		// Materialized template blocks mirror the holiday/break policy
		// already checked above; only real reservations block hard.
		if ev.SourceType == model.SourceWeeklyHoliday {
			continue
		}
		if ev.IsActive() && ev.OverlapsRange(start, end) {
			return Verdict{Bookable: false, Reason: ReasonOverlap}
		}
	}

	return Verdict{Bookable: true, Reason: soft}
}

// SlotState pairs a grid slot with its verdict, for calendar rendering.
type SlotState struct {
	Start   timegrid.Minutes `json:"start"`
	End     timegrid.Minutes `json:"end"`
	Verdict Verdict          `json:"verdict"`
}

// DayGrid evaluates every stepMinutes slot of the day's working hours (or
// of the whole default window when the day is a holiday) and returns the
// per-slot states in order.
func DayGrid(in Input, date time.Time, stepMinutes int, actor model.Actor) ([]SlotState, error) {
	if stepMinutes <= 0 {
		stepMinutes = timegrid.DefaultStepMinutes
	}
	winStart, winEnd := in.Day.WorkingHours.Start, in.Day.WorkingHours.End
	if in.Day.IsHoliday || in.Day.WorkingHours.IsZero() {
		winStart, winEnd = 0, timegrid.MinutesPerDay
	}

	var out []SlotState
	for _, start := range timegrid.Slots(winStart, winEnd, stepMinutes) {
		end := start + timegrid.Minutes(stepMinutes)
		v, err := IsSlotBookable(in, date, start, end, actor)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotState{Start: start, End: end, Verdict: v})
	}
	return out, nil
}
