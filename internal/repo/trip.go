// Package repo contains all database access logic for the trip ledger.
// It is the only package that reads or writes the trips table.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/timeofday"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with the
	// DB-generated id and registered_at populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by id.
	// Returns domain.ErrNotFound if no trip with that id exists.
	GetByID(ctx context.Context, id int64) (domain.Trip, error)

	// Update replaces every mutable field of the trip identified by trip.ID
	// and returns the stored record. Returns domain.ErrNotFound if no trip
	// with that id exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by id. Deleting an id that does not exist is not
	// an error, so repeated deletes succeed.
	Delete(ctx context.Context, id int64) error

	// Query returns the trips matching every set field of f, newest first
	// (trip_date DESC, id DESC). The result is never nil.
	Query(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error)

	// DistinctPlates returns every plate in the ledger once, alphabetically.
	DistinctPlates(ctx context.Context) ([]string, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, registered_at, trip_date, plate, driver, client, origin, destination,
		appointment_load, departure_load, arrival_unload, departure_unload,
		container, cargo, import_bl_number, manifest, note, status`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (trip_date, plate, driver, client, origin, destination,
		                   appointment_load, departure_load, arrival_unload, departure_unload,
		                   container, cargo, import_bl_number, manifest, note, status)
		VALUES (@trip_date, @plate, @driver, @client, @origin, @destination,
		        @appointment_load, @departure_load, @arrival_unload, @departure_unload,
		        @container, @cargo, @import_bl_number, @manifest, @note, @status)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, mutableArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// Update overwrites all mutable columns of a trip. id and registered_at are
// never touched.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET trip_date        = @trip_date,
		    plate            = @plate,
		    driver           = @driver,
		    client           = @client,
		    origin           = @origin,
		    destination      = @destination,
		    appointment_load = @appointment_load,
		    departure_load   = @departure_load,
		    arrival_unload   = @arrival_unload,
		    departure_unload = @departure_unload,
		    container        = @container,
		    cargo            = @cargo,
		    import_bl_number = @import_bl_number,
		    manifest         = @manifest,
		    note             = @note,
		    status           = @status
		WHERE id = @id
		RETURNING ` + tripColumns

	args := mutableArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM trips WHERE id = @id`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	return nil
}

// Query builds the WHERE clause from the set filter fields only.
func (r *pgTripRepo) Query(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	var (
		conds []string
		args  = pgx.NamedArgs{}
	)
	if f.DateFrom != nil {
		conds = append(conds, "trip_date >= @date_from")
		args["date_from"] = dateArg(*f.DateFrom)
	}
	if f.DateTo != nil {
		conds = append(conds, "trip_date <= @date_to")
		args["date_to"] = dateArg(*f.DateTo)
	}
	if f.PlateConstrained() {
		conds = append(conds, "plate = @plate")
		args["plate"] = f.Plate
	}
	if f.Driver != "" {
		conds = append(conds, "driver ILIKE @driver")
		args["driver"] = containsPattern(f.Driver)
	}
	if f.Client != "" {
		conds = append(conds, "client ILIKE @client")
		args["client"] = containsPattern(f.Client)
	}
	if f.StatusConstrained() {
		conds = append(conds, "status = @status")
		args["status"] = f.Status
	}

	q := `SELECT ` + tripColumns + ` FROM trips`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY trip_date DESC, id DESC"

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.Query: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.Query: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.Query: rows: %w", err)
	}

	return trips, nil
}

// DistinctPlates returns the unique plates ordered alphabetically.
func (r *pgTripRepo) DistinctPlates(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT plate FROM trips ORDER BY plate`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.DistinctPlates: %w", err)
	}
	plates, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.DistinctPlates: %w", err)
	}
	if plates == nil {
		plates = []string{}
	}
	return plates, nil
}

// mutableArgs maps every user-editable field to its named parameter.
// Empty optional text and absent times are stored as NULL.
func mutableArgs(t domain.Trip) pgx.NamedArgs {
	return pgx.NamedArgs{
		"trip_date":        dateArg(t.TripDate),
		"plate":            t.Plate,
		"driver":           textArg(t.Driver),
		"client":           textArg(t.Client),
		"origin":           textArg(t.Origin),
		"destination":      textArg(t.Destination),
		"appointment_load": timeArg(t.AppointmentLoad),
		"departure_load":   timeArg(t.DepartureLoad),
		"arrival_unload":   timeArg(t.ArrivalUnload),
		"departure_unload": timeArg(t.DepartureUnload),
		"container":        textArg(t.Container),
		"cargo":            textArg(t.Cargo),
		"import_bl_number": textArg(t.ImportOrBL),
		"manifest":         textArg(t.Manifest),
		"note":             textArg(t.Note),
		"status":           string(t.Status),
	}
}

// dateArg keeps only the calendar date of t, independent of its location.
func dateArg(t time.Time) pgtype.Date {
	return pgtype.Date{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func textArg(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func timeArg(t timeofday.Time) pgtype.Time {
	if !t.Valid {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

// containsPattern wraps s for a substring ILIKE, escaping LIKE metacharacters
// so that user input is matched literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// NULL text columns become "", NULL times become the absent timeofday.Time.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t        domain.Trip
		tripDate pgtype.Date
		text     [10]pgtype.Text
		stages   [4]pgtype.Time
	)

	err := s.Scan(
		&t.ID, &t.RegisteredAt, &tripDate, &t.Plate,
		&text[0], &text[1], &text[2], &text[3],
		&stages[0], &stages[1], &stages[2], &stages[3],
		&text[4], &text[5], &text[6], &text[7], &text[8], &text[9],
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.TripDate = tripDate.Time
	t.Driver, t.Client, t.Origin, t.Destination = text[0].String, text[1].String, text[2].String, text[3].String
	t.Container, t.Cargo, t.ImportOrBL, t.Manifest, t.Note = text[4].String, text[5].String, text[6].String, text[7].String, text[8].String
	t.Status = domain.Status(text[9].String)

	t.AppointmentLoad = stageTime(stages[0])
	t.DepartureLoad = stageTime(stages[1])
	t.ArrivalUnload = stageTime(stages[2])
	t.DepartureUnload = stageTime(stages[3])

	return t, nil
}

func stageTime(pt pgtype.Time) timeofday.Time {
	if !pt.Valid {
		return timeofday.Time{}
	}
	return timeofday.FromDuration(time.Duration(pt.Microseconds) * time.Microsecond)
}
