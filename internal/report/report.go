// Package report renders a trip result set into a two-sheet xlsx workbook:
// a styled detail sheet with a totals row, and a summary sheet with status
// counts and a per-client breakdown.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/triplog/internal/domain"
	"github.com/pkordes/triplog/internal/timeofday"
)

// Sheet names of the rendered workbook, detail first.
const (
	TripsSheet   = "Trips"
	SummarySheet = "Summary"

	titleRow  = 1
	headerRow = 2
	firstRow  = 3
)

// column describes one detail-sheet column. Every report has all sixteen,
// whether or not the trips populate them.
type column struct {
	header   string
	width    float64
	centered bool
	value    func(domain.Trip) string
}

var columns = []column{
	{"DATE", 12, true, func(t domain.Trip) string { return t.TripDate.Format("2006-01-02") }},
	{"PLATE", 12, true, func(t domain.Trip) string { return t.Plate }},
	{"DRIVER", 22, false, func(t domain.Trip) string { return t.Driver }},
	{"CLIENT", 22, false, func(t domain.Trip) string { return t.Client }},
	{"ORIGIN", 18, false, func(t domain.Trip) string { return t.Origin }},
	{"DESTINATION", 18, false, func(t domain.Trip) string { return t.Destination }},
	{"APPT. LOAD", 14, true, func(t domain.Trip) string { return timeofday.Format(t.AppointmentLoad) }},
	{"DEP. LOAD", 14, true, func(t domain.Trip) string { return timeofday.Format(t.DepartureLoad) }},
	{"ARR. UNLOAD", 14, true, func(t domain.Trip) string { return timeofday.Format(t.ArrivalUnload) }},
	{"DEP. UNLOAD", 14, true, func(t domain.Trip) string { return timeofday.Format(t.DepartureUnload) }},
	{"CONTAINER", 16, false, func(t domain.Trip) string { return t.Container }},
	{"CARGO", 18, false, func(t domain.Trip) string { return t.Cargo }},
	{"IMPORT / BL", 18, false, func(t domain.Trip) string { return t.ImportOrBL }},
	{"MANIFEST", 14, false, func(t domain.Trip) string { return t.Manifest }},
	{"NOTE", 28, false, func(t domain.Trip) string { return t.Note }},
	{"STATUS", 14, true, func(t domain.Trip) string { return string(t.Status) }},
}

// totalsSpan is how many leading columns the "TOTAL TRIPS" cell covers; the
// remaining columns hold the per-status breakdown.
const totalsSpan = 13

// Generator renders workbooks. The zero value is not usable; call New.
type Generator struct {
	now func() time.Time
	loc *time.Location
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock fixes the "generated at" reading, making output reproducible.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLocation sets the time zone used for the generated-at stamp.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// New returns a Generator using the wall clock in UTC unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now, loc: time.UTC}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Now returns the generator's clock reading in its configured location.
// Callers read it once per report and pass the value to Render.
func (g *Generator) Now() time.Time {
	return g.now().In(g.loc)
}

// Counts holds the per-status aggregates shown in the totals row and the
// summary sheet. Trips with an unknown status count only toward Total.
type Counts struct {
	Total      int
	Completed  int
	Cancelled  int
	Breached   int
	InProgress int
}

// CountStatuses tallies trips by status.
func CountStatuses(trips []domain.Trip) Counts {
	c := Counts{Total: len(trips)}
	for _, t := range trips {
		switch t.Status {
		case domain.StatusCompleted:
			c.Completed++
		case domain.StatusCancelled:
			c.Cancelled++
		case domain.StatusBreached:
			c.Breached++
		case domain.StatusInProgress:
			c.InProgress++
		}
	}
	return c
}

// ClientCount is one row of the per-client breakdown.
type ClientCount struct {
	Client string
	Trips  int
}

// CountByClient groups trips by non-blank client, most trips first and
// alphabetical among ties. Returns nil when no trip has a client.
func CountByClient(trips []domain.Trip) []ClientCount {
	counts := map[string]int{}
	for _, t := range trips {
		if strings.TrimSpace(t.Client) == "" {
			continue
		}
		counts[t.Client]++
	}
	if len(counts) == 0 {
		return nil
	}

	out := make([]ClientCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, ClientCount{Client: c, Trips: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trips != out[j].Trips {
			return out[i].Trips > out[j].Trips
		}
		return out[i].Client < out[j].Client
	})
	return out
}

// Filename returns "{title}_{YYYYMMDD_HHMM}.xlsx".
func Filename(title string, at time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", title, at.Format("20060102_1504"))
}

// Render builds the workbook for trips and returns its xlsx bytes. at is the
// generated-at stamp written to the title row, shown in the generator's
// location. Only excelize failures produce an error.
func (g *Generator) Render(trips []domain.Trip, title string, at time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("report.Generator.Render: styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", TripsSheet); err != nil {
		return nil, fmt.Errorf("report.Generator.Render: %w", err)
	}
	counts := CountStatuses(trips)

	w := &sheetWriter{f: f, sheet: TripsSheet}
	g.writeTrips(w, st, trips, title, at.In(g.loc), counts)
	if w.err != nil {
		return nil, fmt.Errorf("report.Generator.Render: %s: %w", TripsSheet, w.err)
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("report.Generator.Render: %w", err)
	}
	sw := &sheetWriter{f: f, sheet: SummarySheet}
	writeSummary(sw, st, trips, counts)
	if sw.err != nil {
		return nil, fmt.Errorf("report.Generator.Render: %s: %w", SummarySheet, sw.err)
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report.Generator.Render: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeTrips(w *sheetWriter, st styles, trips []domain.Trip, title string, at time.Time, counts Counts) {
	w.set(cell(1, titleRow), fmt.Sprintf("%s  |  Generated: %s  |  Total trips: %d",
		title, at.Format("02/01/2006 15:04"), len(trips)))
	w.merge(cell(1, titleRow), cell(len(columns), titleRow))
	w.style(cell(1, titleRow), cell(len(columns), titleRow), st.title)
	w.rowHeight(titleRow, 30)

	for i, c := range columns {
		w.set(cell(i+1, headerRow), c.header)
		w.width(colName(i+1), c.width)
	}
	w.style(cell(1, headerRow), cell(len(columns), headerRow), st.header)
	w.rowHeight(headerRow, 30)

	for i, t := range trips {
		row := firstRow + i
		k := rowKind(t.Status, row)
		for j, c := range columns {
			ref := cell(j+1, row)
			w.set(ref, c.value(t))
			if c.centered {
				w.style(ref, ref, st.centered[k])
			} else {
				w.style(ref, ref, st.left[k])
			}
		}
		w.rowHeight(row, 18)
	}

	total := firstRow + len(trips)
	w.set(cell(1, total), fmt.Sprintf("TOTAL TRIPS: %d", counts.Total))
	w.merge(cell(1, total), cell(totalsSpan, total))
	w.set(cell(totalsSpan+1, total), fmt.Sprintf("Completed: %d  |  Cancelled: %d  |  Breached: %d",
		counts.Completed, counts.Cancelled, counts.Breached))
	w.merge(cell(totalsSpan+1, total), cell(len(columns), total))
	w.style(cell(1, total), cell(len(columns), total), st.total)

	w.freezeBelow(headerRow)
}

func writeSummary(w *sheetWriter, st styles, trips []domain.Trip, counts Counts) {
	w.set("A1", "Trip Summary")
	w.merge("A1", "D1")
	w.style("A1", "D1", st.title)
	w.rowHeight(1, 26)

	metrics := []struct {
		name  string
		value int
	}{
		{"Total trips", counts.Total},
		{domain.StatusCompleted.Label(), counts.Completed},
		{domain.StatusCancelled.Label(), counts.Cancelled},
		{domain.StatusBreached.Label(), counts.Breached},
		{domain.StatusInProgress.Label(), counts.InProgress},
	}
	w.set("A2", "METRIC")
	w.set("B2", "VALUE")
	w.style("A2", "B2", st.header)
	for i, m := range metrics {
		row := 3 + i
		w.set(cell(1, row), m.name)
		w.set(cell(2, row), m.value)
		w.style(cell(1, row), cell(1, row), st.left[kindPlain])
		w.style(cell(2, row), cell(2, row), st.metric)
	}

	if byClient := CountByClient(trips); byClient != nil {
		const groupRow = 9
		w.set(cell(1, groupRow), "TRIPS BY CLIENT")
		w.merge(cell(1, groupRow), cell(2, groupRow))
		w.style(cell(1, groupRow), cell(2, groupRow), st.header)
		for i, cc := range byClient {
			row := groupRow + 1 + i
			w.set(cell(1, row), cc.Client)
			w.set(cell(2, row), cc.Trips)
			w.style(cell(1, row), cell(1, row), st.left[kindPlain])
			w.style(cell(2, row), cell(2, row), st.centered[kindPlain])
		}
	}

	w.width("A", 30)
	w.width("B", 14)
	w.width("C", 14)
	w.width("D", 14)
}

// cell returns the A1-style reference for a 1-based column and row.
func cell(col, row int) string {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		// col and row are always positive here.
		panic(err)
	}
	return ref
}

func colName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(err)
	}
	return name
}

// sheetWriter records the first excelize error so the layout code reads as a
// flat list of cell operations.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) do(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

func (w *sheetWriter) set(ref string, v any) { w.do(w.f.SetCellValue(w.sheet, ref, v)) }

func (w *sheetWriter) merge(from, to string) { w.do(w.f.MergeCell(w.sheet, from, to)) }

func (w *sheetWriter) style(from, to string, id int) { w.do(w.f.SetCellStyle(w.sheet, from, to, id)) }

func (w *sheetWriter) width(col string, width float64) {
	w.do(w.f.SetColWidth(w.sheet, col, col, width))
}

func (w *sheetWriter) rowHeight(row int, height float64) {
	w.do(w.f.SetRowHeight(w.sheet, row, height))
}

// freezeBelow pins rows 1..row so the header stays visible when scrolling.
func (w *sheetWriter) freezeBelow(row int) {
	w.do(w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      row,
		TopLeftCell: cell(1, row+1),
		ActivePane:  "bottomLeft",
	}))
}
