package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/timeofday"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
// Omitted optional fields are stored as empty; a PUT replaces every field.
type TripRequest struct {
	TripDate    openapi_types.Date `json:"trip_date"`
	Plate       string             `json:"plate"`
	Driver      string             `json:"driver,omitempty"`
	Client      string             `json:"client,omitempty"`
	Origin      string             `json:"origin,omitempty"`
	Destination string             `json:"destination,omitempty"`

	AppointmentLoad timeofday.Time `json:"appointment_load"`
	DepartureLoad   timeofday.Time `json:"departure_load"`
	ArrivalUnload   timeofday.Time `json:"arrival_unload"`
	DepartureUnload timeofday.Time `json:"departure_unload"`

	Container      string `json:"container,omitempty"`
	Cargo          string `json:"cargo,omitempty"`
	ImportBLNumber string `json:"import_bl_number,omitempty"`
	Manifest       string `json:"manifest,omitempty"`
	Note           string `json:"note,omitempty"`
	Status         string `json:"status,omitempty"` // stored value or display label
}

// TripResponse is the JSON form of a stored trip.
type TripResponse struct {
	ID           int64              `json:"id"`
	RegisteredAt time.Time          `json:"registered_at"`
	TripDate     openapi_types.Date `json:"trip_date"`
	Plate        string             `json:"plate"`
	Driver       string             `json:"driver"`
	Client       string             `json:"client"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`

	AppointmentLoad timeofday.Time `json:"appointment_load"`
	DepartureLoad   timeofday.Time `json:"departure_load"`
	ArrivalUnload   timeofday.Time `json:"arrival_unload"`
	DepartureUnload timeofday.Time `json:"departure_unload"`

	Container      string `json:"container"`
	Cargo          string `json:"cargo"`
	ImportBLNumber string `json:"import_bl_number"`
	Manifest       string `json:"manifest"`
	Note           string `json:"note"`
	Status         string `json:"status"`
	StatusLabel    string `json:"status_label"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data []TripResponse `json:"data"`
}

// PlateList is the body of GET /plates.
type PlateList struct {
	Data []string `json:"data"`
}

// StatusOption pairs a stored status with its display label.
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatusList is the body of GET /statuses.
type StatusList struct {
	Data []StatusOption `json:"data"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDecodeError(w, err)
		return
	}

	created, err := s.trips.Create(r.Context(), requestToTrip(body))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?date_from=, ?date_to= (YYYY-MM-DD), ?plate=, ?driver=, ?client=
// and ?status=. Every given parameter narrows the result.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	trips, err := s.trips.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	data := make([]TripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{Data: data})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body TripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDecodeError(w, err)
		return
	}
	trip := requestToTrip(body)
	trip.ID = id

	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
// Deleting a trip that does not exist also answers 204.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "trip not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPlates handles GET /plates.
func (s *Server) ListPlates(w http.ResponseWriter, r *http.Request) {
	plates, err := s.trips.DistinctPlates(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, PlateList{Data: plates})
}

// ListStatuses handles GET /statuses.
func (s *Server) ListStatuses(w http.ResponseWriter, _ *http.Request) {
	data := make([]StatusOption, len(domain.Statuses))
	for i, st := range domain.Statuses {
		data[i] = StatusOption{Value: string(st), Label: st.Label()}
	}
	writeJSON(w, http.StatusOK, StatusList{Data: data})
}

// --- mapping helpers --------------------------------------------------------

// pathID parses the {id} URL parameter, writing a 400 response when it is
// not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeValidation, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// normalizePlate trims and uppercases a plate as entered by a user.
func normalizePlate(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// requestToTrip converts a request body into a domain.Trip. The plate is
// normalized and any display glyph is stripped from the status.
func requestToTrip(body TripRequest) domain.Trip {
	return domain.Trip{
		TripDate:        body.TripDate.Time,
		Plate:           normalizePlate(body.Plate),
		Driver:          strings.TrimSpace(body.Driver),
		Client:          strings.TrimSpace(body.Client),
		Origin:          strings.TrimSpace(body.Origin),
		Destination:     strings.TrimSpace(body.Destination),
		AppointmentLoad: body.AppointmentLoad,
		DepartureLoad:   body.DepartureLoad,
		ArrivalUnload:   body.ArrivalUnload,
		DepartureUnload: body.DepartureUnload,
		Container:       strings.TrimSpace(body.Container),
		Cargo:           strings.TrimSpace(body.Cargo),
		ImportOrBL:      strings.TrimSpace(body.ImportBLNumber),
		Manifest:        strings.TrimSpace(body.Manifest),
		Note:            body.Note,
		Status:          domain.ParseStatus(body.Status),
	}
}

// tripToResponse converts a domain.Trip into its JSON form.
func tripToResponse(t domain.Trip) TripResponse {
	return TripResponse{
		ID:              t.ID,
		RegisteredAt:    t.RegisteredAt,
		TripDate:        openapi_types.Date{Time: t.TripDate},
		Plate:           t.Plate,
		Driver:          t.Driver,
		Client:          t.Client,
		Origin:          t.Origin,
		Destination:     t.Destination,
		AppointmentLoad: t.AppointmentLoad,
		DepartureLoad:   t.DepartureLoad,
		ArrivalUnload:   t.ArrivalUnload,
		DepartureUnload: t.DepartureUnload,
		Container:       t.Container,
		Cargo:           t.Cargo,
		ImportBLNumber:  t.ImportOrBL,
		Manifest:        t.Manifest,
		Note:            t.Note,
		Status:          string(t.Status),
		StatusLabel:     t.Status.Label(),
	}
}

// parseFilter reads the trip filter query parameters shared by GET /trips
// and GET /reports/trips.
func parseFilter(q url.Values) (domain.TripFilter, error) {
	f := domain.TripFilter{
		Plate:  strings.TrimSpace(q.Get("plate")),
		Driver: strings.TrimSpace(q.Get("driver")),
		Client: strings.TrimSpace(q.Get("client")),
	}

	if st := strings.TrimSpace(q.Get("status")); st != "" && st != domain.All {
		f.Status = string(domain.ParseStatus(st))
	} else {
		f.Status = st
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"date_from", &f.DateFrom},
		{"date_to", &f.DateTo},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return domain.TripFilter{}, fmt.Errorf("%s must be a date in YYYY-MM-DD form", p.name)
		}
		*p.dst = &d
	}
	return f, nil
}
