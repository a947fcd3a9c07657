package http

import (
	"net/http"

	"pozoagua/internal/export"
)

func (s *Server) handleDaySummary(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.DaySummary(day))
}

func (s *Server) handleGlobalReport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Report(filter))
}

// handleSalesExport downloads the globally filtered sale set as CSV.
func (s *Server) handleSalesExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sales := s.app.FilteredSales(filter)
	csv := export.SalesCSV(sales, s.app.Clients(), s.app.Workers())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+export.SalesFilename(timeNow())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
