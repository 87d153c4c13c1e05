// Package clock implements the Thebian in-game clock: short days, a running
// day counter, and the facility-hours window. All functions are pure; the
// engine owns the authoritative day/hour values and uses this package for
// arithmetic and queries.
package clock

import "fmt"

// Time is a point on the colony clock.
type Time struct {
	Day  int
	Hour float64
}

// Add advances t by the given number of hours, rolling over day boundaries.
// dayLength is the length of a Thebian day in hours. Negative advances are
// clamped to zero so the clock never moves backward through normal play.
func (t Time) Add(hours, dayLength float64) Time {
	if hours < 0 {
		hours = 0
	}
	t.Hour += hours
	for t.Hour >= dayLength {
		t.Hour -= dayLength
		t.Day++
	}
	return t
}

// Before reports whether t is strictly earlier than o, comparing day first
// and hour second.
func (t Time) Before(o Time) bool {
	if t.Day != o.Day {
		return t.Day < o.Day
	}
	return t.Hour < o.Hour
}

// DeadlineReached reports whether the quota period of periodDays has elapsed.
func (t Time) DeadlineReached(periodDays int) bool {
	return t.Day >= periodDays
}

// Within reports whether hour falls inside the half-open window [from, to).
// A window with from > to wraps past the day boundary.
func Within(hour, from, to float64) bool {
	if from <= to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}

// Format renders an hour value as a 24-hour wall clock reading, e.g. "07:30".
func Format(hour float64) string {
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatTime renders a full timestamp, e.g. "Day 2, 14:30".
func FormatTime(t Time) string {
	return fmt.Sprintf("Day %d, %s", t.Day, Format(t.Hour))
}
