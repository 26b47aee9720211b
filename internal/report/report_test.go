package report_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/report"
	"github.com/pkordes/triplog/internal/timeofday"
)

var fixedNow = time.Date(2025, 7, 4, 15, 30, 0, 0, time.UTC)

func newGenerator() *report.Generator {
	return report.New(report.WithClock(func() time.Time { return fixedNow }))
}

// render renders trips and opens the result for inspection.
func render(t *testing.T, trips []domain.Trip) *excelize.File {
	t.Helper()
	b, err := newGenerator().Render(trips, "Trip Log", fixedNow)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

// cellStyle returns the decoded style of a cell.
func cellStyle(t *testing.T, f *excelize.File, sheet, ref string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(sheet, ref)
	require.NoError(t, err)
	st, err := f.GetStyle(id)
	require.NoError(t, err)
	return st
}

// hasFill reports whether any fill colour of st contains color, ignoring case
// and any "#" or alpha prefix excelize may add.
func hasFill(st *excelize.Style, color string) bool {
	for _, c := range st.Fill.Color {
		if strings.Contains(strings.ToUpper(c), color) {
			return true
		}
	}
	return false
}

func mergedRanges(t *testing.T, f *excelize.File, sheet string) map[string]string {
	t.Helper()
	cells, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	out := map[string]string{}
	for _, mc := range cells {
		out[mc.GetStartAxis()+":"+mc.GetEndAxis()] = mc.GetCellValue()
	}
	return out
}

func sampleTrip(plate string, status domain.Status) domain.Trip {
	return domain.Trip{
		ID:       1,
		TripDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Plate:    plate,
		Status:   status,
	}
}

func TestRender_Empty(t *testing.T) {
	f := render(t, nil)

	rows, err := f.GetRows(report.TripsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "title + header + totals")

	assert.Equal(t, "DATE", cellValue(t, f, report.TripsSheet, "A2"))
	assert.Equal(t, "STATUS", cellValue(t, f, report.TripsSheet, "P2"))
	assert.Equal(t, "TOTAL TRIPS: 0", cellValue(t, f, report.TripsSheet, "A3"))
	assert.Contains(t, cellValue(t, f, report.TripsSheet, "A1"), "Total trips: 0")

	summary, err := f.GetRows(report.SummarySheet)
	require.NoError(t, err)
	assert.Len(t, summary, 7, "no client breakdown when no trip has a client")
	assert.Equal(t, "0", cellValue(t, f, report.SummarySheet, "B3"))
}

func TestRender_RowCountAndTotals(t *testing.T) {
	const n = 5
	trips := make([]domain.Trip, n)
	for i := range trips {
		trips[i] = sampleTrip(fmt.Sprintf("PLT%03d", i), domain.StatusCompleted)
	}

	f := render(t, trips)

	rows, err := f.GetRows(report.TripsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, n+3)

	totalRef := fmt.Sprintf("A%d", n+3)
	assert.Contains(t, cellValue(t, f, report.TripsSheet, totalRef), "5")

	merged := mergedRanges(t, f, report.TripsSheet)
	assert.Contains(t, merged, "A1:P1", "title spans every column")
	assert.Contains(t, merged, fmt.Sprintf("A%d:M%d", n+3, n+3))
	assert.Equal(t, "Completed: 5  |  Cancelled: 0  |  Breached: 0", merged[fmt.Sprintf("N%d:P%d", n+3, n+3)])
}

func TestRender_TitleRow(t *testing.T) {
	f := render(t, []domain.Trip{sampleTrip("ABC123", domain.StatusCompleted)})

	assert.Equal(t,
		"Trip Log  |  Generated: 04/07/2025 15:30  |  Total trips: 1",
		cellValue(t, f, report.TripsSheet, "A1"))
}

func TestRender_TitleRowUsesGivenStampInLocation(t *testing.T) {
	g := report.New(
		report.WithClock(func() time.Time {
			t.Fatal("render must not read the clock")
			return time.Time{}
		}),
		report.WithLocation(time.FixedZone("COT", -5*60*60)),
	)

	b, err := g.Render(nil, "Trip Log", time.Date(2025, 7, 4, 21, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		"Trip Log  |  Generated: 04/07/2025 16:00  |  Total trips: 0",
		cellValue(t, f, report.TripsSheet, "A1"))
}

func TestRender_Deterministic(t *testing.T) {
	trips := []domain.Trip{sampleTrip("ABC123", domain.StatusBreached)}
	g := newGenerator()

	a, err := g.Render(trips, "T", fixedNow)
	require.NoError(t, err)
	b, err := g.Render(trips, "T", fixedNow)
	require.NoError(t, err)

	fa, err := excelize.OpenReader(bytes.NewReader(a))
	require.NoError(t, err)
	fb, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)

	for _, sheet := range []string{report.TripsSheet, report.SummarySheet} {
		ra, err := fa.GetRows(sheet)
		require.NoError(t, err)
		rb, err := fb.GetRows(sheet)
		require.NoError(t, err)
		assert.Equal(t, ra, rb, sheet)
	}
}

// TestRender_CancelledAndCompleted covers the two-record scenario: summary
// counts and the cancellation styling on the detail row.
func TestRender_CancelledAndCompleted(t *testing.T) {
	f := render(t, []domain.Trip{
		sampleTrip("ABC123", domain.StatusCancelled),
		sampleTrip("XYZ999", domain.StatusCompleted),
	})

	want := map[string]string{
		"A3": "Total trips", "B3": "2",
		"B4": "1", // completed
		"B5": "1", // cancelled
		"B6": "0", // breached
		"B7": "0", // in progress
	}
	for ref, v := range want {
		assert.Equal(t, v, cellValue(t, f, report.SummarySheet, ref), ref)
	}

	assert.Equal(t, "ABC123", cellValue(t, f, report.TripsSheet, "B3"))
	cancelled := cellStyle(t, f, report.TripsSheet, "B3")
	assert.True(t, hasFill(cancelled, report.ColorCancelledFill), "cancelled row should carry the cancellation fill")
	require.NotNil(t, cancelled.Font)
	assert.Contains(t, strings.ToUpper(cancelled.Font.Color), report.ColorCancelledFont)

	assert.Equal(t, "XYZ999", cellValue(t, f, report.TripsSheet, "B4"))
	completed := cellStyle(t, f, report.TripsSheet, "B4")
	assert.False(t, hasFill(completed, report.ColorCancelledFill), "completed row must not carry the cancellation fill")
}

func TestRender_BreachedStyling(t *testing.T) {
	f := render(t, []domain.Trip{sampleTrip("BRC001", domain.StatusBreached)})

	st := cellStyle(t, f, report.TripsSheet, "A3")
	assert.True(t, hasFill(st, report.ColorBreachedFill))
}

func TestRender_BandingAlternates(t *testing.T) {
	f := render(t, []domain.Trip{
		sampleTrip("ROW003", domain.StatusCompleted),
		sampleTrip("ROW004", domain.StatusInProgress),
		sampleTrip("ROW005", domain.Status("Legacy")),
	})

	odd := cellStyle(t, f, report.TripsSheet, "A3")
	even := cellStyle(t, f, report.TripsSheet, "A4")
	unknown := cellStyle(t, f, report.TripsSheet, "A5")

	assert.NotEqual(t, odd.Fill.Color, even.Fill.Color, "adjacent plain rows alternate")
	assert.Equal(t, odd.Fill.Color, unknown.Fill.Color, "unknown status is banded like any other row")
	assert.Equal(t, "Legacy", cellValue(t, f, report.TripsSheet, "P5"), "unknown status is shown as stored")
}

func TestRender_TimesAndBlanks(t *testing.T) {
	trip := sampleTrip("TIM001", domain.StatusCompleted)
	trip.AppointmentLoad = timeofday.New(6, 5)
	trip.DepartureUnload = timeofday.New(23, 59)

	f := render(t, []domain.Trip{trip})

	assert.Equal(t, "2025-07-01", cellValue(t, f, report.TripsSheet, "A3"))
	assert.Equal(t, "06:05", cellValue(t, f, report.TripsSheet, "G3"))
	assert.Equal(t, "", cellValue(t, f, report.TripsSheet, "H3"), "absent time renders empty")
	assert.Equal(t, "", cellValue(t, f, report.TripsSheet, "I3"))
	assert.Equal(t, "23:59", cellValue(t, f, report.TripsSheet, "J3"))
	assert.Equal(t, "", cellValue(t, f, report.TripsSheet, "C3"), "absent driver renders empty")
}

func TestRender_FreezesBelowHeader(t *testing.T) {
	f := render(t, []domain.Trip{sampleTrip("FRZ001", domain.StatusCompleted)})

	panes, err := f.GetPanes(report.TripsSheet)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 2, panes.YSplit)
	assert.Equal(t, "A3", panes.TopLeftCell)
}

func TestRender_ClientBreakdown(t *testing.T) {
	mk := func(client string) domain.Trip {
		tr := sampleTrip("CLI001", domain.StatusCompleted)
		tr.Client = client
		return tr
	}
	f := render(t, []domain.Trip{mk("Beta"), mk("Alpha"), mk("Beta"), mk(""), mk("Gamma")})

	assert.Equal(t, "TRIPS BY CLIENT", cellValue(t, f, report.SummarySheet, "A9"))
	assert.Equal(t, "Beta", cellValue(t, f, report.SummarySheet, "A10"))
	assert.Equal(t, "2", cellValue(t, f, report.SummarySheet, "B10"))
	assert.Equal(t, "Alpha", cellValue(t, f, report.SummarySheet, "A11"))
	assert.Equal(t, "Gamma", cellValue(t, f, report.SummarySheet, "A12"))
	assert.Equal(t, "", cellValue(t, f, report.SummarySheet, "A13"))
}

func TestCountStatuses(t *testing.T) {
	c := report.CountStatuses([]domain.Trip{
		{Status: domain.StatusCompleted},
		{Status: domain.StatusCancelled},
		{Status: domain.StatusCancelled},
		{Status: domain.StatusInProgress},
		{Status: "Unknown"},
	})

	assert.Equal(t, report.Counts{Total: 5, Completed: 1, Cancelled: 2, InProgress: 1}, c)
}

func TestCountByClient_NoClients(t *testing.T) {
	assert.Nil(t, report.CountByClient([]domain.Trip{{Client: ""}, {Client: "  "}}))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Trip Log_20250704_1530.xlsx", report.Filename("Trip Log", fixedNow))
}
