package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/triplog/internal/report"
)

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Total    int          `json:"total"`
	ByStatus []StatusStat `json:"by_status"`
	ByDay    []DayStat    `json:"by_day"`
	ByClient []ClientStat `json:"by_client"`
}

// StatusStat is one entry of StatsResponse.ByStatus.
type StatusStat struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Trips  int    `json:"trips"`
}

// DayStat is one entry of StatsResponse.ByDay.
type DayStat struct {
	Date  string `json:"date"`
	Trips int    `json:"trips"`
}

// ClientStat is one entry of StatsResponse.ByClient.
type ClientStat struct {
	Client string `json:"client"`
	Trips  int    `json:"trips"`
}

// GetStats handles GET /stats.
// Only ?date_from= and ?date_to= apply; with neither, the current month is used.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	st, err := s.stats.Stats(r.Context(), f.DateFrom, f.DateTo)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, statsToResponse(st))
}

func statsToResponse(st report.Stats) StatsResponse {
	resp := StatsResponse{
		Total:    st.Total,
		ByStatus: make([]StatusStat, len(st.ByStatus)),
		ByDay:    make([]DayStat, len(st.ByDay)),
		ByClient: make([]ClientStat, len(st.ByClient)),
	}
	for i, c := range st.ByStatus {
		resp.ByStatus[i] = StatusStat{Status: string(c.Status), Label: c.Status.Label(), Trips: c.Trips}
	}
	for i, c := range st.ByDay {
		resp.ByDay[i] = DayStat{Date: c.Day.Format(time.DateOnly), Trips: c.Trips}
	}
	for i, c := range st.ByClient {
		resp.ByClient[i] = ClientStat{Client: c.Client, Trips: c.Trips}
	}
	return resp
}
