package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/handler"
)

// mockExporter is a test double for handler.Exporter.
type mockExporter struct {
	export func(ctx context.Context, f domain.TripFilter, title string) (domain.Report, error)
}

func (m *mockExporter) Export(ctx context.Context, f domain.TripFilter, title string) (domain.Report, error) {
	return m.export(ctx, f, title)
}

var _ handler.Exporter = (*mockExporter)(nil)

func newExportHandler(exp handler.Exporter) http.Handler {
	return handler.NewServer(&mockTripServicer{}, exp, nil, "Trip Log", nil).Routes()
}

func TestExportTrips_200_Attachment(t *testing.T) {
	var gotFilter domain.TripFilter
	var gotTitle string
	exp := &mockExporter{
		export: func(_ context.Context, f domain.TripFilter, title string) (domain.Report, error) {
			gotFilter, gotTitle = f, title
			return domain.Report{
				Title:       title,
				Filename:    "Trip Log_20250704_0905.xlsx",
				GeneratedAt: time.Date(2025, 7, 4, 9, 5, 0, 0, time.UTC),
				Trips:       2,
				Content:     []byte("PK\x03\x04workbook"),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/trips?plate=ABC123&status=Cancelled", nil)
	rec := httptest.NewRecorder()

	newExportHandler(exp).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Trip Log", gotTitle, "title defaults to the configured one")
	assert.Equal(t, "ABC123", gotFilter.Plate)
	assert.Equal(t, "Cancelled", gotFilter.Status)

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Trip Log_20250704_0905.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04workbook", rec.Body.String())
}

func TestExportTrips_CustomTitle(t *testing.T) {
	var gotTitle string
	exp := &mockExporter{
		export: func(_ context.Context, _ domain.TripFilter, title string) (domain.Report, error) {
			gotTitle = title
			return domain.Report{Filename: "x.xlsx"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/trips?title=Night+Shift", nil)
	rec := httptest.NewRecorder()

	newExportHandler(exp).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Night Shift", gotTitle)
}

func TestExportTrips_500_OnFailure(t *testing.T) {
	exp := &mockExporter{
		export: func(_ context.Context, _ domain.TripFilter, _ string) (domain.Report, error) {
			return domain.Report{}, errors.New("report.Generator.Render: write: disk full")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/trips", nil)
	rec := httptest.NewRecorder()

	newExportHandler(exp).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Code)
}

func TestExportTrips_400_BadDate(t *testing.T) {
	exp := &mockExporter{
		export: func(_ context.Context, _ domain.TripFilter, _ string) (domain.Report, error) {
			t.Fatal("export must not run with an invalid filter")
			return domain.Report{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reports/trips?date_to=2025-13-01", nil)
	rec := httptest.NewRecorder()

	newExportHandler(exp).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
