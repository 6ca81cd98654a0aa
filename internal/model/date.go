package model

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time component.  Screenings recur
// daily across an inclusive [DateStart, DateEnd] range, and tickets are
// sold against one Date occurrence at a time, so the type shows up in
// almost every core operation.  Dates are plain values and compare by
// field equality.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateFormat is the wire and storage layout for dates ("2006-01-02").
const DateFormat = "2006-01-02"

// ParseDate parses a date in DateFormat.  The zero Date is returned
// together with an error when the input does not parse.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf truncates a time.Time to its calendar date in the time's own
// location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date in DateFormat.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of the date in UTC.  It is used for ordering
// and day arithmetic only; occurrences carry their own time-of-day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.Time().After(o.Time()) }

// Next returns the following calendar day.
func (d Date) Next() Date { return DateOf(d.Time().AddDate(0, 0, 1)) }

// DateRangesIntersect reports whether the inclusive ranges [aStart,aEnd]
// and [bStart,bEnd] share at least one calendar date.
func DateRangesIntersect(aStart, aEnd, bStart, bEnd Date) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// Clock is a time of day expressed as minutes since midnight.  Using a
// plain offset instead of time.Time keeps the daily-recurrence overlap
// test a one-dimensional interval comparison.
type Clock int

// ClockFormat is the wire layout for times of day ("15:04").
const ClockFormat = "15:04"

// ParseClock parses a time of day in ClockFormat.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockFormat, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// ClockOf extracts the time of day from a time.Time, dropping seconds.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// String renders the clock in ClockFormat.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add returns the clock shifted by the given number of minutes.  The
// result wraps at midnight, matching how a finish time derived from a
// film duration lands on the same calendar occurrence.
func (c Clock) Add(minutes int) Clock {
	const day = 24 * 60
	n := (int(c) + minutes) % day
	if n < 0 {
		n += day
	}
	return Clock(n)
}

// ClockRangesIntersect reports whether the half-open time-of-day
// intervals [aStart,aEnd) and [bStart,bEnd) overlap.  Half-open bounds
// allow back-to-back screenings in the same hall.
func ClockRangesIntersect(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && bStart < aEnd
}
