// Package timeofday normalizes the loosely-typed clock readings recorded at
// each handling stage of a trip (appointment, departures, arrival).
//
// Values arrive as database TIME columns, JSON strings typed by operators,
// or nothing at all. Normalize turns any of them into a Time or into the
// zero Time, which means "no time recorded". It never returns an error.
package timeofday

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Time is a wall-clock reading with minute precision.
// The zero value is the absent reading; Valid is false for it.
type Time struct {
	Hour   int
	Minute int
	Valid  bool
}

// New returns a valid Time, or the absent Time if hour or minute is out of range.
func New(hour, minute int) Time {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Time{}
	}
	return Time{Hour: hour, Minute: minute, Valid: true}
}

// Normalize converts v into a canonical Time.
//
//   - nil, NaN floats and invalid Times are absent.
//   - Time and time.Time pass through (seconds are dropped).
//   - Anything else is rendered as text; blanks around the colon are
//     dropped, then the first five characters must read "H:MM" or "HH:MM"
//     with an in-range hour and minute.
func Normalize(v any) Time {
	switch x := v.(type) {
	case nil:
		return Time{}
	case Time:
		if !x.Valid {
			return Time{}
		}
		return New(x.Hour, x.Minute)
	case *Time:
		if x == nil {
			return Time{}
		}
		return Normalize(*x)
	case time.Time:
		return New(x.Hour(), x.Minute())
	case *time.Time:
		if x == nil {
			return Time{}
		}
		return New(x.Hour(), x.Minute())
	case float64:
		if math.IsNaN(x) {
			return Time{}
		}
	case float32:
		if math.IsNaN(float64(x)) {
			return Time{}
		}
	case *string:
		if x == nil {
			return Time{}
		}
		return parseText(*x)
	}
	return parseText(fmt.Sprint(v))
}

// Parse is Normalize for text input.
func Parse(s string) Time {
	return parseText(s)
}

func parseText(s string) Time {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return Time{}
	}
	// Blanks around either side of the separator are typing noise.
	s = strings.TrimSpace(h) + ":" + strings.TrimSpace(m)
	if len(s) > 5 {
		s = s[:5]
	}
	h, m, _ = strings.Cut(s, ":")
	hour, err := strconv.Atoi(h)
	if err != nil {
		return Time{}
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return Time{}
	}
	return New(hour, minute)
}

// Format renders t as "HH:MM", or "" when t is absent.
func Format(t Time) string {
	if !t.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// String implements fmt.Stringer.
func (t Time) String() string {
	return Format(t)
}

// Duration returns the offset of t from midnight.
func (t Time) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// FromDuration builds a Time from an offset since midnight, as stored in a
// Postgres TIME column. Offsets outside one day are absent.
func FromDuration(d time.Duration) Time {
	if d < 0 || d >= 24*time.Hour {
		return Time{}
	}
	return New(int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// MarshalJSON encodes t as "HH:MM" or null.
func (t Time) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(Format(t))
}

// UnmarshalJSON accepts null, a string, or anything else JSON can hold,
// and degrades to the absent Time on malformed input.
func (t *Time) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = Time{}
		return nil
	}
	*t = Normalize(raw)
	return nil
}
