// Package service contains the business logic for the trip ledger.
// Services validate inputs, enforce ledger rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/metrics"
	"github.com/pkordes/triplog/internal/repo"
)

const platesKey = "plates"

// TripService implements the ledger operations over a TripRepo.
// The distinct-plate list is cached in process and dropped on every write.
type TripService struct {
	repo    repo.TripRepo
	plates  *cache.Cache
	metrics *metrics.Registry
}

// Option configures a TripService.
type Option func(*TripService)

// WithPlateCacheTTL sets how long the distinct-plate list is served from
// memory. A non-positive ttl disables caching.
func WithPlateCacheTTL(ttl time.Duration) Option {
	return func(s *TripService) {
		if ttl <= 0 {
			s.plates = nil
			return
		}
		s.plates = cache.New(ttl, 2*ttl)
	}
}

// WithMetrics attaches a metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *TripService) { s.metrics = m }
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, opts ...Option) *TripService {
	s := &TripService{
		repo:   r,
		plates: cache.New(5*time.Minute, 10*time.Minute),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates and persists a new trip. An empty status becomes Completed.
// Returns domain.ErrValidation if input violates ledger rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = withDefaults(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.invalidatePlates()
	return result, nil
}

// GetByID returns a single trip by id.
func (s *TripService) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns the trips matching f, newest first.
// A nil error with an empty slice means no trip matched.
func (s *TripService) List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	trips, err := s.repo.Query(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// Update replaces every mutable field of an existing trip.
// Returns domain.ErrValidation for invalid input, domain.ErrNotFound if the
// trip does not exist.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if trip.ID <= 0 {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w: id must be positive", domain.ErrValidation)
	}
	trip = withDefaults(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	result, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.invalidatePlates()
	return result, nil
}

// Delete removes a trip by id. Deleting a missing id succeeds.
func (s *TripService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.invalidatePlates()
	return nil
}

// DistinctPlates returns every plate in the ledger, alphabetically.
func (s *TripService) DistinctPlates(ctx context.Context) ([]string, error) {
	if s.plates != nil {
		if v, ok := s.plates.Get(platesKey); ok {
			s.metrics.ObservePlateCache(true)
			return v.([]string), nil
		}
		s.metrics.ObservePlateCache(false)
	}

	plates, err := s.repo.DistinctPlates(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.DistinctPlates: %w", err)
	}
	if plates == nil {
		plates = []string{}
	}
	if s.plates != nil {
		s.plates.SetDefault(platesKey, plates)
	}
	return plates, nil
}

func (s *TripService) invalidatePlates() {
	if s.plates != nil {
		s.plates.Delete(platesKey)
	}
}

func withDefaults(t domain.Trip) domain.Trip {
	if t.Status == "" {
		t.Status = domain.StatusCompleted
	}
	return t
}

// validateTrip enforces the rules common to Create and Update.
//   - Plate must be non-blank.
//   - TripDate must be set.
//   - Status must be one of the four ledger statuses.
//
// Stage times are not checked against each other; any order is accepted.
func validateTrip(t domain.Trip) error {
	if strings.TrimSpace(t.Plate) == "" {
		return fmt.Errorf("%w: plate is required", domain.ErrValidation)
	}
	if t.TripDate.IsZero() {
		return fmt.Errorf("%w: trip_date is required", domain.ErrValidation)
	}
	if !t.Status.Known() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, t.Status)
	}
	return nil
}
