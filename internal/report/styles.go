package report

import (
	"github.com/xuri/excelize/v2"

	"github.com/pkordes/triplog/internal/domain"
)

// Palette. Fill colours double as the markers tests look for.
const (
	colorTitleFill  = "0F2027"
	colorHeaderFill = "203A43"
	colorBandFill   = "EBF5FB"
	colorTotalFill  = "D5DBDB"

	ColorCancelledFill = "FADBD8"
	ColorCancelledFont = "C0392B"
	ColorBreachedFill  = "FDEBD0"
	ColorBreachedFont  = "D35400"
)

// kind selects the detail-row treatment.
type kind int

const (
	kindPlain kind = iota
	kindBand
	kindCancelled
	kindBreached
	numKinds
)

// rowKind applies status styling first and falls back to parity banding.
// Unknown statuses are banded like completed trips.
func rowKind(s domain.Status, row int) kind {
	switch s {
	case domain.StatusCancelled:
		return kindCancelled
	case domain.StatusBreached:
		return kindBreached
	}
	if row%2 == 0 {
		return kindBand
	}
	return kindPlain
}

type styles struct {
	title    int
	header   int
	total    int
	metric   int
	centered [numKinds]int
	left     [numKinds]int
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	left := &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true}

	add := func(s *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(s)
		return id
	}

	st.title = add(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      solid(colorTitleFill),
		Alignment: center,
	})
	st.header = add(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      solid(colorHeaderFill),
		Border:    thinBorder,
		Alignment: center,
	})
	st.total = add(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Bold: true, Size: 10},
		Fill:      solid(colorTotalFill),
		Border:    thinBorder,
		Alignment: center,
	})
	st.metric = add(&excelize.Style{
		Font:      &excelize.Font{Family: "Calibri", Bold: true, Size: 10},
		Border:    thinBorder,
		Alignment: center,
	})

	for k := kindPlain; k < numKinds; k++ {
		font := &excelize.Font{Family: "Calibri", Size: 9}
		var fill excelize.Fill
		switch k {
		case kindBand:
			fill = solid(colorBandFill)
		case kindCancelled:
			font.Color = ColorCancelledFont
			fill = solid(ColorCancelledFill)
		case kindBreached:
			font.Color = ColorBreachedFont
			fill = solid(ColorBreachedFill)
		}
		st.centered[k] = add(&excelize.Style{Font: font, Fill: fill, Border: thinBorder, Alignment: center})
		st.left[k] = add(&excelize.Style{Font: font, Fill: fill, Border: thinBorder, Alignment: left})
	}

	return st, err
}
