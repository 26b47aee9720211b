package domain

import (
	"strings"
	"unicode"
)

// Status is the outcome of a trip as stored in the ledger.
// Rows written by older builds may hold values outside the known set; those
// are kept and displayed verbatim rather than rejected.
type Status string

const (
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
	StatusBreached   Status = "Breached"
	StatusInProgress Status = "In Progress"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusCompleted, StatusCancelled, StatusBreached, StatusInProgress}

var statusGlyphs = map[Status]string{
	StatusCompleted:  "✅",
	StatusCancelled:  "❌",
	StatusBreached:   "⚠️",
	StatusInProgress: "🔄",
}

// ParseStatus converts a display label such as "❌ Cancelled" into its stored
// form by dropping any leading decorative glyph. An empty label yields
// StatusCompleted, the column default.
func ParseStatus(label string) Status {
	s := strings.TrimLeftFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusCompleted
	}
	return Status(s)
}

// Known reports whether s is one of the four ledger statuses.
func (s Status) Known() bool {
	_, ok := statusGlyphs[s]
	return ok
}

// Label returns the decorated display label, or the raw value when s is unknown.
func (s Status) Label() string {
	if g, ok := statusGlyphs[s]; ok {
		return g + " " + string(s)
	}
	return string(s)
}
