package app

import (
	"context"
	"time"

	"steplog/internal/domain"
)

// ReportService fetches a user's entries and pipes them through the
// aggregation functions to produce the list, calendar and chart views.
type ReportService struct {
	steps *StepsService
}

// NewReportService creates a ReportService reading through the given
// steps service.
func NewReportService(steps *StepsService) *ReportService {
	return &ReportService{steps: steps}
}

// Overview is the list-view payload: entries newest first with their
// week keys, the running total, and totals per ISO week.
type Overview struct {
	Entries    []AnnotatedEntry `json:"entries"`
	TotalSteps int              `json:"totalSteps"`
	WeekTotals map[string]int   `json:"weekTotals"`
}

// GetOverview returns the list view for a user.
func (s *ReportService) GetOverview(ctx context.Context, userID int64) (*Overview, error) {
	entries, err := s.steps.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Entries:    AnnotateWeeks(entries),
		TotalSteps: TotalSteps(entries),
		WeekTotals: WeeklyTotals(entries),
	}, nil
}

// GetCalendar returns one event per entry, oldest day first.
func (s *ReportService) GetCalendar(ctx context.Context, userID int64) ([]CalendarEvent, error) {
	entries, err := s.steps.ListAscending(ctx, userID)
	if err != nil {
		return nil, err
	}
	return CalendarEvents(entries), nil
}

// GetChart returns the zero-filled bucket series for the requested
// range. A zero ref means "today" (UTC-normalized).
func (s *ReportService) GetChart(ctx context.Context, userID int64, rng string, ref time.Time) (*ChartSeries, error) {
	if ref.IsZero() {
		ref = domain.Today()
	}
	entries, err := s.steps.ListAscending(ctx, userID)
	if err != nil {
		return nil, err
	}
	series := BuildChartSeries(entries, rng, ref)
	return &series, nil
}
