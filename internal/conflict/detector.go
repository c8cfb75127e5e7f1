// Package conflict validates a candidate reservation against the effective
// schedule and the existing events, reporting every violation at once so
// an editor can show them together. Role-based override prompts are a UI
// concern layered on top; the detector itself is role-agnostic.
package conflict

import (
	"fmt"
	"sort"
	"time"

	"rosterd/internal/metrics"
	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// Reason is one violation of a candidate reservation.
type Reason string

const (
	ReasonOutsideContract Reason = "OutsideContract"
	ReasonHoliday         Reason = "Holiday"
	ReasonBreak           Reason = "Break"
	ReasonOutOfHours      Reason = "OutOfHours"
	ReasonOverlap         Reason = "Overlap"
)

// Candidate is the reservation being created or edited. ID, when set,
// excludes the event's own stored copy from the overlap check.
type Candidate struct {
	ID      string
	StaffID string
	Start   time.Time
	End     time.Time
}

// Conflict pairs a reason with the event that triggered it, when one did.
type Conflict struct {
	Reason Reason               `json:"reason"`
	Event  *model.ScheduleEvent `json:"event,omitempty"`
}

// FindConflicts returns all applicable violations in stable order:
// contract, holiday, break, out-of-hours, then one overlap entry per
// colliding active event sorted by start time. Unlike the availability
// engine it does not short-circuit.
func FindConflicts(c Candidate, day model.DaySchedule, contract model.ContractWindow, existing []model.ScheduleEvent) ([]Conflict, error) {
	if !c.Start.Before(c.End) {
		return nil, &model.ValidationError{
			Msg: fmt.Sprintf("candidate start %s not before end %s", c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339)),
		}
	}
	if !model.SameDate(c.Start, c.End.Add(-time.Nanosecond)) {
		return nil, &model.ValidationError{Msg: "candidate must not span calendar days"}
	}

	startMin := minuteOfDay(c.Start)
	endMin := minuteOfDay(c.End)
	if endMin == 0 {
		endMin = timegrid.MinutesPerDay
	}

	var out []Conflict

	if !contract.Covers(c.Start) {
		out = append(out, Conflict{Reason: ReasonOutsideContract})
	}

	if day.IsHoliday {
		out = append(out, Conflict{Reason: ReasonHoliday})
	} else {
		for _, b := range day.BreakTimes {
			if timegrid.Overlaps(startMin, endMin, b.Start, b.End) {
				out = append(out, Conflict{Reason: ReasonBreak})
				break
			}
		}
		if !timegrid.Contains(day.WorkingHours.Start, day.WorkingHours.End, startMin, endMin) {
			out = append(out, Conflict{Reason: ReasonOutOfHours})
		}
	}

	var colliding []*model.ScheduleEvent
	for i := range existing {
		ev := &existing[i]
		if ev.ID == c.ID || !ev.IsActive() || ev.StaffID != c.StaffID {
			continue
		}
		// Materialized holiday/break blocks are already reported through
		// the day-schedule checks above.
		if ev.SourceType == model.SourceWeeklyHoliday {
			continue
		}
		if ev.OverlapsRange(c.Start, c.End) {
			colliding = append(colliding, ev)
		}
	}
	sort.Slice(colliding, func(i, j int) bool {
		return colliding[i].StartTime.Before(colliding[j].StartTime)
	})
	for _, ev := range colliding {
		out = append(out, Conflict{Reason: ReasonOverlap, Event: ev})
	}

	metrics.IncConflictsFound(len(out))
	return out, nil
}

func minuteOfDay(t time.Time) timegrid.Minutes {
	return timegrid.Minutes(t.Hour()*60 + t.Minute())
}
