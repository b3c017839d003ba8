// Package dateutil provides civil-date arithmetic on YYYY-MM-DD strings.
// Date strings are the canonical key everywhere: they sort lexicographically
// in calendar order, which the store's range queries depend on.
package dateutil

import (
	"fmt"
	"time"
)

// Layout is the canonical date-string format.
const Layout = "2006-01-02"

// Civil projects an absolute instant to a date string in the given zone's
// civil calendar. Host locale/timezone never leak in: loc is explicit.
func Civil(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Layout)
}

// Today returns the current civil date in the given zone.
func Today(loc *time.Location) string {
	return Civil(time.Now(), loc)
}

// Parse validates a date string and returns its calendar components.
func Parse(date string) (year int, month time.Month, day int, err error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// AddDays shifts a date string by n calendar days (n may be negative).
// Month and year boundaries roll over via time.Date normalization.
func AddDays(date string, n int) (string, error) {
	y, m, d, err := Parse(date)
	if err != nil {
		return "", err
	}
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC).Format(Layout), nil
}

// WeekdayIndex returns the civil weekday of a date string, Monday=0..Sunday=6.
func WeekdayIndex(date string) (int, error) {
	y, m, d, err := Parse(date)
	if err != nil {
		return 0, err
	}
	wd := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Weekday()
	// time.Weekday is Sunday=0; shift to Monday=0.
	return (int(wd) + 6) % 7, nil
}

// WeekdayName returns the English weekday name for a date string.
func WeekdayName(date string) (string, error) {
	y, m, d, err := Parse(date)
	if err != nil {
		return "", err
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Weekday().String(), nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfDay returns the instant at which the civil date begins in loc.
func StartOfDay(date string, loc *time.Location) (time.Time, error) {
	y, m, d, err := Parse(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// EndOfDayExclusive returns the first instant after the civil date in loc,
// i.e. midnight at the start of the following day.
func EndOfDayExclusive(date string, loc *time.Location) (time.Time, error) {
	y, m, d, err := Parse(date)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc), nil
}

// Enumerate lists the date strings from start to end inclusive. The walk is
// hard-capped at maxDays entries: malformed bounds truncate silently instead
// of looping unbounded. An end before start yields nil.
func Enumerate(start, end string, maxDays int) []string {
	if start > end || maxDays <= 0 {
		return nil
	}
	y, m, d, err := Parse(start)
	if err != nil {
		return nil
	}
	if _, _, _, err := Parse(end); err != nil {
		return nil
	}
	var days []string
	cur := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for i := 0; i < maxDays; i++ {
		s := cur.Format(Layout)
		if s > end {
			break
		}
		days = append(days, s)
		cur = cur.AddDate(0, 0, 1)
	}
	return days
}

// Compare orders two date strings: -1, 0 or +1 as a is before, equal to or
// after b. Plain string comparison, spelled out for call-site clarity.
func Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DiffDays returns the number of calendar days from a to b (b - a).
func DiffDays(a, b string) (int, error) {
	ta, err := StartOfDay(a, time.UTC)
	if err != nil {
		return 0, err
	}
	tb, err := StartOfDay(b, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
