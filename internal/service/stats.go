package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/report"
)

// StatsService aggregates trips over a date range for the dashboard.
type StatsService struct {
	trips TripLister
	now   func() time.Time
}

// NewStatsService constructs a StatsService. now supplies "today" for the
// default range and should read the report location; nil uses time.Now.
func NewStatsService(trips TripLister, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{trips: trips, now: now}
}

// Stats summarizes trips dated within [from, to]. Either bound may be nil to
// leave that side open; when both are nil the range is the current month up
// to today.
func (s *StatsService) Stats(ctx context.Context, from, to *time.Time) (report.Stats, error) {
	if from == nil && to == nil {
		y, m, d := s.now().Date()
		first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		from, to = &first, &today
	}
	if from != nil && to != nil && from.After(*to) {
		return report.Stats{}, fmt.Errorf("service.StatsService.Stats: %w: date_from is after date_to", domain.ErrValidation)
	}

	trips, err := s.trips.List(ctx, domain.TripFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return report.Stats{}, fmt.Errorf("service.StatsService.Stats: %w", err)
	}
	return report.Summarize(trips), nil
}
