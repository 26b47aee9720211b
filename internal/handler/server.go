// Package handler implements the HTTP handlers for the trip ledger API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, export.go, stats.go) but share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/report"
	"github.com/pkordes/triplog/spec"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id int64) (domain.Trip, error)
	List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id int64) error
	DistinctPlates(ctx context.Context) ([]string, error)
}

// Exporter renders filtered trips into a downloadable workbook.
type Exporter interface {
	Export(ctx context.Context, f domain.TripFilter, title string) (domain.Report, error)
}

// StatsProvider aggregates trips dated within a range. Nil bounds are open,
// except that two nil bounds select the current month.
type StatsProvider interface {
	Stats(ctx context.Context, from, to *time.Time) (report.Stats, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips       TripServicer
	export      Exporter
	stats       StatsProvider
	reportTitle string
	log         *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// reportTitle is used when GET /reports/trips has no ?title=. A nil log
// falls back to slog.Default().
func NewServer(trips TripServicer, export Exporter, stats StatsProvider, reportTitle string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, export: export, stats: stats, reportTitle: reportTitle, log: log}
}

// Register mounts every API route on r. Middleware should already be
// attached to r so route patterns are visible to it.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/{id}", s.GetTrip)
		r.Put("/{id}", s.UpdateTrip)
		r.Delete("/{id}", s.DeleteTrip)
	})
	r.Get("/plates", s.ListPlates)
	r.Get("/statuses", s.ListStatuses)
	r.Get("/stats", s.GetStats)
	r.Get("/reports/trips", s.ExportTrips)
}

// Routes returns a standalone router with every API route registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
