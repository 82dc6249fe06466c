package core

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used for every stored date.
// Zero-padded dates compare correctly as plain strings.
const DateFormat = "2006-01-02"

const day = 24 * time.Hour

// ParseDate parses a YYYY-MM-DD calendar date. The result is midnight UTC of
// that calendar day so that differences between dates are whole days
// regardless of the local zone or DST transitions.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoDate
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want format %s", ErrInvalidDate, s, DateFormat)
	}
	return t, nil
}

// Today returns the current calendar date in the local time zone.
func Today() string {
	return DateOf(time.Now())
}

// DateOf formats the calendar date of t as seen in t's own location.
func DateOf(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(DateFormat)
}

// DaysBetween returns the number of days from a to b, positive when b is
// later. ok is false when either date is missing or malformed.
func DaysBetween(a, b string) (days int, ok bool) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, false
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, false
	}
	return int(tb.Sub(ta) / day), true
}

// AddDays shifts a calendar date by n days.
func AddDays(date string, n int) (string, bool) {
	t, err := ParseDate(date)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, n).Format(DateFormat), true
}

// StartOfWeek returns the Sunday on or before date.
func StartOfWeek(date string) (string, bool) {
	t, err := ParseDate(date)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(DateFormat), true
}
