package app

import (
	"fmt"
	"strings"
	"time"

	"steplog/internal/domain"
)

// Aggregation over already-fetched, user-scoped entries. Nothing in
// this file performs I/O and nothing here returns an error: days with
// no data are zero-valued buckets, never failures.

// AnnotatedEntry is a step entry decorated with its ISO week key for
// list display.
type AnnotatedEntry struct {
	domain.StepEntry
	WeekKey string `json:"weekKey"`
}

// CalendarEvent is one calendar cell per entry, shaped for the
// calendar view (FullCalendar event object).
type CalendarEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	URL   string `json:"url"`
}

// ChartSeries is one labeled, zero-filled bucket series for the chart
// view.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
	Title  string   `json:"title"`
	Range  string   `json:"range"`
}

// Chart ranges.
const (
	RangeWeek  = "7d"
	RangeMonth = "month"
	RangeYear  = "year"
)

// TotalSteps sums the step counts of all entries.
func TotalSteps(entries []domain.StepEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Steps
	}
	return total
}

// WeeklyTotals groups entries by ISO year-week and sums steps per key.
func WeeklyTotals(entries []domain.StepEntry) map[string]int {
	totals := make(map[string]int, len(entries))
	for _, e := range entries {
		day, err := domain.ParseDay(e.Day)
		if err != nil {
			continue
		}
		totals[domain.WeekKey(day)] += e.Steps
	}
	return totals
}

// AnnotateWeeks attaches each entry's ISO week key for table display.
func AnnotateWeeks(entries []domain.StepEntry) []AnnotatedEntry {
	out := make([]AnnotatedEntry, 0, len(entries))
	for _, e := range entries {
		key := ""
		if day, err := domain.ParseDay(e.Day); err == nil {
			key = domain.WeekKey(day)
		}
		out = append(out, AnnotatedEntry{StepEntry: e, WeekKey: key})
	}
	return out
}

// CalendarEvents maps entries to calendar events, one per entry, with
// the entry's edit action as the click-through URL.
func CalendarEvents(entries []domain.StepEntry) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, CalendarEvent{
			ID:    e.ID,
			Title: fmt.Sprintf("%d lépés", e.Steps),
			Start: e.Day,
			URL:   fmt.Sprintf("/steps/edit/%d", e.ID),
		})
	}
	return events
}

// BuildChartSeries buckets entries into the requested range around the
// reference day. Unrecognized ranges fall back to the 7-day window;
// matching is case-insensitive. Every bucket in the window appears in
// the output even when no entry falls into it.
func BuildChartSeries(entries []domain.StepEntry, rng string, ref time.Time) ChartSeries {
	ref = domain.TruncateDay(ref)

	switch strings.ToLower(rng) {
	case RangeYear:
		return yearSeries(entries, ref)
	case RangeMonth:
		return monthSeries(entries, ref)
	default:
		return weekSeries(entries, ref)
	}
}

// weekSeries covers the 7 consecutive days ending at ref inclusive.
func weekSeries(entries []domain.StepEntry, ref time.Time) ChartSeries {
	byDay := stepsByDay(entries)

	labels := make([]string, 0, 7)
	values := make([]int, 0, 7)
	for i := -6; i <= 0; i++ {
		d := ref.AddDate(0, 0, i)
		labels = append(labels, domain.DayLabel(d))
		values = append(values, byDay[d.Format(domain.DayFormat)])
	}
	return ChartSeries{
		Labels: labels,
		Values: values,
		Title:  "Utolsó 7 nap – napi lépések",
		Range:  RangeWeek,
	}
}

// monthSeries covers every day of the calendar month containing ref.
func monthSeries(entries []domain.StepEntry, ref time.Time) ChartSeries {
	byDay := stepsByDay(entries)

	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	labels := make([]string, 0, daysInMonth)
	values := make([]int, 0, daysInMonth)
	for d := 0; d < daysInMonth; d++ {
		day := first.AddDate(0, 0, d)
		labels = append(labels, domain.DayLabel(day))
		values = append(values, byDay[day.Format(domain.DayFormat)])
	}
	return ChartSeries{
		Labels: labels,
		Values: values,
		Title:  fmt.Sprintf("%d %s – napi lépések", ref.Year(), ref.Month()),
		Range:  RangeMonth,
	}
}

// yearSeries covers all 12 months of the year containing ref, summing
// steps per month.
func yearSeries(entries []domain.StepEntry, ref time.Time) ChartSeries {
	year := ref.Year()
	perMonth := make([]int, 12)
	for _, e := range entries {
		day, err := domain.ParseDay(e.Day)
		if err != nil || day.Year() != year {
			continue
		}
		perMonth[int(day.Month())-1] += e.Steps
	}

	labels := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		labels = append(labels, m.String())
	}
	return ChartSeries{
		Labels: labels,
		Values: perMonth,
		Title:  fmt.Sprintf("%d – havi összes lépés", year),
		Range:  RangeYear,
	}
}

func stepsByDay(entries []domain.StepEntry) map[string]int {
	byDay := make(map[string]int, len(entries))
	for _, e := range entries {
		byDay[e.Day] = e.Steps
	}
	return byDay
}
