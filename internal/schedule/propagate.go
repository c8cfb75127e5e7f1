package schedule

import (
	"fmt"

	"rosterd/internal/model"
	"rosterd/internal/timegrid"
)

// Field names a copyable part of a day schedule for propagation.
type Field string

const (
	FieldWorkingHours Field = "workingHours"
	FieldBreakTimes   Field = "breakTimes"
)

// Shift-based defaults applied when a holiday day is toggled back to
// working and the editor holds no previous values for it.
var shiftDefaults = map[model.ShiftType]model.DaySchedule{
	model.ShiftDay: {
		WorkingHours: model.WorkingHours{Start: 540, End: 1080}, // 09:00-18:00
		BreakTimes:   []model.BreakWindow{{Start: 720, End: 780, Name: "lunch"}},
	},
	model.ShiftNight: {
		WorkingHours: model.WorkingHours{Start: 840, End: 1380}, // 14:00-23:00
		BreakTimes:   []model.BreakWindow{{Start: 1080, End: 1140, Name: "dinner"}},
	},
}

// ApplyToAll copies the named field from the source day to every other day
// of the template and returns the updated copy. Holiday days are skipped:
// their hours and breaks stay zeroed per the holiday-toggle contract, so
// propagation never resurrects windows on a day off. The source day itself
// is left untouched.
func ApplyToAll(tpl *model.WeeklyTemplate, source model.Weekday, field Field) (*model.WeeklyTemplate, error) {
	if tpl == nil {
		return nil, &model.ValidationError{Msg: "template is nil"}
	}
	if field != FieldWorkingHours && field != FieldBreakTimes {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("unknown propagation field %q", field)}
	}
	src, ok := tpl.Days[source]
	if !ok {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("template has no day %q", source)}
	}
	if src.IsHoliday {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("cannot propagate from holiday day %q", source)}
	}

	out := tpl.Clone()
	for _, w := range model.WeekdayOrder {
		if w == source {
			continue
		}
		day := out.Day(w)
		if day.IsHoliday {
			continue
		}
		switch field {
		case FieldWorkingHours:
			day.WorkingHours = src.WorkingHours
			// Breaks that no longer fit the new window are dropped rather
			// than clamped.
			day.BreakTimes = fitBreaks(day.BreakTimes, src.WorkingHours)
		case FieldBreakTimes:
			day.BreakTimes = cloneBreaks(src.BreakTimes)
		}
		out.Days[w] = day
	}
	return out, nil
}

// ToggleHoliday flips the holiday state of one day of the template.
//
// Working to holiday zeroes the working hours and clears every break,
// including the default lunch. Holiday to working restores the shift-based
// default for the staff member, unless the day already carries non-zero
// hours from an earlier edit, which are preserved as-is. Stale zero-length
// windows are never resurrected.
func ToggleHoliday(tpl *model.WeeklyTemplate, weekday model.Weekday, makeHoliday bool, shift model.ShiftType) *model.WeeklyTemplate {
	out := tpl.Clone()
	day := out.Day(weekday)

	if makeHoliday {
		day.IsHoliday = true
		day.WorkingHours = model.WorkingHours{}
		day.BreakTimes = nil
	} else {
		day.IsHoliday = false
		if day.WorkingHours.IsZero() {
			def, ok := shiftDefaults[shift]
			if !ok {
				def = shiftDefaults[model.ShiftDay]
			}
			day.WorkingHours = def.WorkingHours
			day.BreakTimes = cloneBreaks(def.BreakTimes)
		}
	}

	out.Days[weekday] = day
	return out
}

func cloneBreaks(in []model.BreakWindow) []model.BreakWindow {
	if in == nil {
		return nil
	}
	out := make([]model.BreakWindow, len(in))
	copy(out, in)
	return out
}

func fitBreaks(breaks []model.BreakWindow, hours model.WorkingHours) []model.BreakWindow {
	var out []model.BreakWindow
	for _, b := range breaks {
		if timegrid.Contains(hours.Start, hours.End, b.Start, b.End) {
			out = append(out, b)
		}
	}
	return out
}
