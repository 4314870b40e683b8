// Package core holds the pure analytics functions behind the dashboard:
// timeframe resolution, conversion aggregation, fuzzy matching and money
// formatting. Nothing in this package performs I/O or touches the system
// clock; "now" is always an explicit parameter so callers can pin it.
package core

import (
	"fmt"
	"time"
)

const (
	LastWeek    Timeframe = "lastWeek"
	LastMonth   Timeframe = "lastMonth"
	Last3Months Timeframe = "last3Months"
	Last6Months Timeframe = "last6Months"
	LastYear    Timeframe = "lastYear"
)

// Timeframe is a named relative window ending at "now".
type Timeframe string

// Interval is one chart bucket of a timeframe subdivision.
type Interval struct {
	Label string
	Start time.Time
	End   time.Time
}

// ParseTimeframe converts a raw request value into a Timeframe. Boundary
// layers must parse here; the methods below treat an unknown value as a
// programming error and panic.
func ParseTimeframe(s string) (Timeframe, error) {
	switch t := Timeframe(s); t {
	case LastWeek, LastMonth, Last3Months, Last6Months, LastYear:
		return t, nil
	}
	return "", fmt.Errorf("unknown timeframe: %q", s)
}

// Label returns the fixed display label for the timeframe.
func (t Timeframe) Label() string {
	switch t {
	case LastWeek:
		return "Last Week"
	case LastMonth:
		return "Last Month"
	case Last3Months:
		return "Last 3 Months"
	case Last6Months:
		return "Last 6 Months"
	case LastYear:
		return "Last Year"
	}
	panic(fmt.Sprintf("core: unmapped timeframe %q", string(t)))
}

// IntervalStart returns the instant the timeframe begins, relative to now.
// Calendar month and year subtraction clamp the day of month, so one month
// before March 31 is the last day of February, never March 3.
func (t Timeframe) IntervalStart(now time.Time) time.Time {
	switch t {
	case LastWeek:
		return now.AddDate(0, 0, -7)
	case LastMonth:
		return addMonthsClamped(now, -1)
	case Last3Months:
		return addMonthsClamped(now, -3)
	case Last6Months:
		return addMonthsClamped(now, -6)
	case LastYear:
		return addMonthsClamped(now, -12)
	}
	panic(fmt.Sprintf("core: unmapped timeframe %q", string(t)))
}

// Segments partitions [IntervalStart(now), now] into a fixed number of
// contiguous, ascending chart buckets: 7 daily buckets for the week, 4
// equal quarters for the month, and one calendar-month bucket per month
// for the longer windows. The final bucket always ends exactly at now.
func (t Timeframe) Segments(now time.Time) []Interval {
	switch t {
	case LastWeek:
		return dailySegments(now)
	case LastMonth:
		return quarterSegments(now)
	case Last3Months:
		return monthlySegments(now, 3)
	case Last6Months:
		return monthlySegments(now, 6)
	case LastYear:
		return monthlySegments(now, 12)
	}
	panic(fmt.Sprintf("core: unmapped timeframe %q", string(t)))
}

// DayOfWeek returns the full English weekday name for the given instant.
func DayOfWeek(now time.Time) string {
	return now.Weekday().String()
}

func dailySegments(now time.Time) []Interval {
	start := now.AddDate(0, 0, -7)
	out := make([]Interval, 0, 7)
	for i := 0; i < 7; i++ {
		s := start.AddDate(0, 0, i)
		e := start.AddDate(0, 0, i+1)
		out = append(out, Interval{Label: s.Weekday().String(), Start: s, End: e})
	}
	// The final bucket must end exactly at now, even across DST shifts.
	out[6].End = now
	return out
}

func quarterSegments(now time.Time) []Interval {
	start := addMonthsClamped(now, -1)
	span := now.Sub(start)
	out := make([]Interval, 0, 4)
	for i := 0; i < 4; i++ {
		s := start.Add(span * time.Duration(i) / 4)
		e := start.Add(span * time.Duration(i+1) / 4)
		if i == 3 {
			e = now
		}
		out = append(out, Interval{Label: s.Format("Jan 2"), Start: s, End: e})
	}
	return out
}

func monthlySegments(now time.Time, months int) []Interval {
	out := make([]Interval, 0, months)
	for i := 0; i < months; i++ {
		s := addMonthsClamped(now, i-months)
		e := addMonthsClamped(now, i+1-months)
		if i == months-1 {
			e = now
		}
		out = append(out, Interval{Label: s.Format("January"), Start: s, End: e})
	}
	return out
}

// addMonthsClamped shifts t by the given number of calendar months, clamping
// the day of month to the last valid day of the target month. time.AddDate
// would normalize March 31 minus one month into March 3.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	h, min, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, h, min, sec, t.Nanosecond(), t.Location())
}
