// Package timegrid provides minute-of-day arithmetic for the booking grid.
//
// All times are integer minutes since local midnight. Intervals are
// half-open [start, end); an empty interval never overlaps anything.
// The grid has no notion of timezones: dates are matched by calendar-day
// equality upstream, never by elapsed time.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultStepMinutes is the default slot size.
const DefaultStepMinutes = 30

// MinutesPerDay is the exclusive upper bound for a minute-of-day value.
const MinutesPerDay = 24 * 60

// Minutes is a time of day expressed as minutes since midnight, 0..1439.
type Minutes int

// Hour returns the hour component.
func (m Minutes) Hour() int { return int(m) / 60 }

// Minute returns the minute component.
func (m Minutes) Minute() int { return int(m) % 60 }

// String formats the value as "HH:MM".
func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", m.Hour(), m.Minute())
}

// Valid reports whether m is a representable time of day.
func (m Minutes) Valid() bool { return m >= 0 && m < MinutesPerDay }

// Parse converts an "HH:MM" string to Minutes. Seconds, if present,
// are ignored ("09:00:00" parses as 09:00).
func Parse(s string) (Minutes, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	m := Minutes(hour*60 + minute)
	if !m.Valid() {
		return 0, fmt.Errorf("time out of range: %s", s)
	}
	return m, nil
}

// Slots returns the start of every full slot of stepMinutes within
// [startMinute, endMinute). A slot whose end would pass endMinute is
// not emitted. stepMinutes <= 0 falls back to DefaultStepMinutes.
func Slots(startMinute, endMinute Minutes, stepMinutes int) []Minutes {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	if endMinute <= startMinute {
		return nil
	}
	var out []Minutes
	for cursor := startMinute; cursor+Minutes(stepMinutes) <= endMinute; cursor += Minutes(stepMinutes) {
		out = append(out, cursor)
	}
	return out
}

// Overlaps reports whether half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Empty intervals never overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Minutes) bool {
	if aStart >= aEnd || bStart >= bEnd {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// Contains reports whether [innerStart, innerEnd) lies entirely within
// [outerStart, outerEnd). An empty inner interval is never contained.
func Contains(outerStart, outerEnd, innerStart, innerEnd Minutes) bool {
	if innerStart >= innerEnd {
		return false
	}
	return innerStart >= outerStart && innerEnd <= outerEnd
}

// Aligned reports whether m sits on a stepMinutes boundary.
func Aligned(m Minutes, stepMinutes int) bool {
	if stepMinutes <= 0 {
		stepMinutes = DefaultStepMinutes
	}
	return int(m)%stepMinutes == 0
}
