package util

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDateFormat is returned when a date string cannot be parsed.
var ErrInvalidDateFormat = errors.New("invalid date format")

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date builds a pure calendar date (UTC midnight).
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TodayIn returns the current calendar date in the given IANA zone.
// Unknown or empty zone names fall back to UTC.
func TodayIn(zone string) time.Time {
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return Date(now.Year(), now.Month(), now.Day())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month int) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last day of the month, inclusive.
func MonthBounds(year int, month int) (time.Time, time.Time) {
	first := Date(year, time.Month(month), 1)
	last := Date(year, time.Month(month), DaysInMonth(year, month))
	return first, last
}

// PreviousMonth returns the (year, month) preceding the given month.
func PreviousMonth(year int, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ClampDay clamps a day-of-month to the last valid day of the month,
// so day 31 in February yields 28 or 29.
func ClampDay(year int, month int, day int) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// ParseDate parses a YYYY-MM-DD string. ISO-8601 instants are accepted
// by extracting the date part; the time-of-day is discarded.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		s = s[:idx]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return d, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Weekday returns the day of week with Monday=0 .. Sunday=6.
func Weekday(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// WeekOfMonth returns the week band of a date: days 1-7 are week 1,
// 8-14 week 2, and so on.
func WeekOfMonth(d time.Time) int {
	return ((d.Day() - 1) / 7) + 1
}

// MaxWeekOfMonth returns the highest week band in the month.
func MaxWeekOfMonth(year int, month int) int {
	return ((DaysInMonth(year, month) - 1) / 7) + 1
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
