package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/metrics"
	"github.com/pkordes/triplog/internal/report"
)

// Renderer turns a result set into workbook bytes stamped with at.
// *report.Generator satisfies it.
type Renderer interface {
	Render(trips []domain.Trip, title string, at time.Time) ([]byte, error)
	Now() time.Time
}

// TripLister is the read side of TripService used for exports.
type TripLister interface {
	List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)
}

// ExportService assembles xlsx reports of filtered trips.
type ExportService struct {
	trips    TripLister
	renderer Renderer
	metrics  *metrics.Registry
}

// NewExportService constructs an ExportService. m may be nil.
func NewExportService(trips TripLister, renderer Renderer, m *metrics.Registry) *ExportService {
	return &ExportService{trips: trips, renderer: renderer, metrics: m}
}

// Export queries trips matching f and renders them under title.
// A query failure is returned as an error rather than an empty report.
func (s *ExportService) Export(ctx context.Context, f domain.TripFilter, title string) (domain.Report, error) {
	trips, err := s.trips.List(ctx, f)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	// One reading feeds both the title row and the filename.
	generatedAt := s.renderer.Now()
	start := time.Now()
	content, err := s.renderer.Render(trips, title, generatedAt)
	s.metrics.ObserveRender(len(trips), time.Since(start), err)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	return domain.Report{
		Title:       title,
		Filename:    report.Filename(title, generatedAt),
		GeneratedAt: generatedAt,
		Trips:       len(trips),
		Content:     content,
	}, nil
}
