package handler

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportTrips handles GET /reports/trips.
// It accepts the same filters as GET /trips plus ?title=, and answers with
// the rendered workbook as an attachment.
func (s *Server) ExportTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		title = s.reportTitle
	}

	rep, err := s.export.Export(r.Context(), f, title)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rep.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Content)
}
