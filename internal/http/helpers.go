package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pozoagua/internal/report"
	"pozoagua/internal/state"
)

// timeNow is swapped in tests.
var timeNow = time.Now

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeAppError maps coordinator errors onto HTTP statuses. Anything not
// recognized is a validation failure from the domain layer.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, state.ErrDuplicatePlate),
		errors.Is(err, state.ErrNoCurrentWorker):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusUnprocessableEntity, err)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseDay parses the optional "fecha" query parameter (YYYY-MM-DD, local
// time). A missing parameter returns the zero time, meaning today.
func parseDay(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

// parseFilter reads the global report filter from the query string:
// fechaInicio, fechaFin (YYYY-MM-DD) and trabajador (ID or "todos").
func parseFilter(r *http.Request) (report.Filter, error) {
	var f report.Filter
	if v := strings.TrimSpace(r.URL.Query().Get("fechaInicio")); v != "" {
		from, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return report.Filter{}, err
		}
		f.From = from
	}
	if v := strings.TrimSpace(r.URL.Query().Get("fechaFin")); v != "" {
		to, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return report.Filter{}, err
		}
		f.To = to
	}
	f.WorkerID = strings.TrimSpace(r.URL.Query().Get("trabajador"))
	return f, nil
}

// parsePeriod reads the "periodo" query parameter, defaulting to semana.
func parsePeriod(r *http.Request) (report.Period, error) {
	v := strings.TrimSpace(r.URL.Query().Get("periodo"))
	switch report.Period(v) {
	case "":
		return report.PeriodWeek, nil
	case report.PeriodDay, report.PeriodWeek, report.PeriodMonth:
		return report.Period(v), nil
	}
	return "", errors.New("invalid period: must be dia, semana or mes")
}
