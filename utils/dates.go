// utils/dates.go
package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates. The fixed width
// keeps lexicographic and chronological order identical.
const DateLayout = "2006-01-02"

const monthLayout = "2006-01"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// FormatDate renders the calendar day of t in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateIn returns the calendar day of t as observed in loc.
func DateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DateRange lists every day in [from, to] inclusive. It returns an empty slice
// when from is after to.
func DateRange(from, to string) ([]string, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}

	if start.After(end) {
		return []string{}, nil
	}

	days := make([]string, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days, nil
}

// MonthBounds returns the first and last day of a YYYY-MM month.
func MonthBounds(month string) (string, string, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: expected YYYY-MM", month)
	}
	return FormatDate(t), FormatDate(t.AddDate(0, 1, -1)), nil
}
