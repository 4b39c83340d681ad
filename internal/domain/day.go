package domain

import (
	"fmt"
	"time"
)

// DayFormat is the canonical YYYY-MM-DD layout used for all calendar
// days in the system. Days carry no time-of-day component.
const DayFormat = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into a UTC day. It rejects both
// malformed strings and impossible calendar dates (e.g. 2024-02-30).
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Today returns the current calendar day, UTC-normalized. All "today"
// decisions go through here so host timezone never shifts a bucket
// boundary.
func Today() time.Time {
	return TruncateDay(time.Now().UTC())
}

// TruncateDay drops the time-of-day component, keeping a UTC midnight.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey returns the ISO-8601 year-week key for a day, e.g. "2024-W01".
// Week 1 is the week containing the year's first Thursday; weeks start
// on Monday. The ISO year can differ from the calendar year near
// year boundaries.
func WeekKey(day time.Time) string {
	year, week := day.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// DayLabel renders a chart axis label for a day bucket ("MM.DD").
func DayLabel(day time.Time) string {
	return day.Format("01.02")
}
