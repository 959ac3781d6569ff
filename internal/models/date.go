package models

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format for calendar months.
const MonthLayout = "2006-01"

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first calendar day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of t's month.
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// ParseDate parses a YYYY-MM-DD string into a calendar day.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// ParseMonth accepts either YYYY-MM or YYYY-MM-DD and returns the month start.
func ParseMonth(value string) (time.Time, error) {
	if t, err := time.Parse(MonthLayout, value); err == nil {
		return MonthStart(t), nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return MonthStart(t), nil
}
