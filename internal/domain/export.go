package domain

import "time"

// Report is a rendered xlsx workbook for one filtered result set.
type Report struct {
	Title       string
	Filename    string // "{title}_{YYYYMMDD_HHMM}.xlsx"
	GeneratedAt time.Time
	Trips       int // rows in the detail sheet, excluding title, header and totals
	Content     []byte
}
