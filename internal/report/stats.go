package report

import (
	"sort"
	"time"

	"github.com/pkordes/triplog/internal/domain"
)

// Stats is the dashboard view of a result set: how many trips, split by
// status, by trip date and by client.
type Stats struct {
	Total    int
	ByStatus []StatusCount
	ByDay    []DayCount
	ByClient []ClientCount
}

// StatusCount is one slice of the per-status breakdown.
type StatusCount struct {
	Status domain.Status
	Trips  int
}

// DayCount is the number of trips dated on Day.
type DayCount struct {
	Day   time.Time
	Trips int
}

// Summarize computes Stats for trips. ByStatus lists only statuses that occur,
// most trips first and then in display order; values outside the known set
// sort last by name. ByDay runs oldest first. ByClient follows CountByClient
// and is nil when no trip has a client.
func Summarize(trips []domain.Trip) Stats {
	byStatus := map[domain.Status]int{}
	byDay := map[time.Time]int{}
	for _, t := range trips {
		byStatus[t.Status]++
		y, m, d := t.TripDate.Date()
		byDay[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}

	st := Stats{Total: len(trips), ByClient: CountByClient(trips)}

	for s, n := range byStatus {
		st.ByStatus = append(st.ByStatus, StatusCount{Status: s, Trips: n})
	}
	sort.Slice(st.ByStatus, func(i, j int) bool {
		a, b := st.ByStatus[i], st.ByStatus[j]
		if a.Trips != b.Trips {
			return a.Trips > b.Trips
		}
		ra, rb := statusRank(a.Status), statusRank(b.Status)
		if ra != rb {
			return ra < rb
		}
		return a.Status < b.Status
	})

	for day, n := range byDay {
		st.ByDay = append(st.ByDay, DayCount{Day: day, Trips: n})
	}
	sort.Slice(st.ByDay, func(i, j int) bool { return st.ByDay[i].Day.Before(st.ByDay[j].Day) })

	return st
}

func statusRank(s domain.Status) int {
	for i, known := range domain.Statuses {
		if s == known {
			return i
		}
	}
	return len(domain.Statuses)
}
