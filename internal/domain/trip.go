// Package domain contains the core data types for the trip ledger.
// It is imported by every other internal package (repo, service, report, handler)
// and depends only on the standard library and internal/timeofday.
package domain

import (
	"time"

	"github.com/pkordes/triplog/internal/timeofday"
)

// Trip is one logged movement of a truck: who drove it, for whom, where,
// the four handling-stage clock readings, cargo identifiers and outcome.
//
// ID and RegisteredAt are assigned by the database on insert and never change.
// Every other field is replaced wholesale on update.
type Trip struct {
	ID           int64
	RegisteredAt time.Time

	TripDate time.Time // calendar date; the time-of-day part is ignored
	Plate    string

	Driver      string
	Client      string
	Origin      string
	Destination string

	// Stage readings. No ordering is enforced between them.
	AppointmentLoad timeofday.Time
	DepartureLoad   timeofday.Time
	ArrivalUnload   timeofday.Time
	DepartureUnload timeofday.Time

	Container  string
	Cargo      string
	ImportOrBL string // import declaration or bill of lading number
	Manifest   string
	Note       string

	Status Status
}

// All is the filter value meaning "do not constrain this field".
// It is accepted for TripFilter.Plate and TripFilter.Status.
const All = "All"

// TripFilter narrows a trip query. Zero-valued fields impose no constraint;
// all set fields are combined with AND.
type TripFilter struct {
	DateFrom *time.Time // inclusive
	DateTo   *time.Time // inclusive

	Plate  string // exact match; "" or All means any
	Driver string // case-insensitive substring
	Client string // case-insensitive substring
	Status string // exact match; "" or All means any
}

// PlateConstrained reports whether the filter narrows by plate.
func (f TripFilter) PlateConstrained() bool {
	return f.Plate != "" && f.Plate != All
}

// StatusConstrained reports whether the filter narrows by status.
func (f TripFilter) StatusConstrained() bool {
	return f.Status != "" && f.Status != All
}
