package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pozoagua/internal/core"
	"pozoagua/internal/export"
	"pozoagua/internal/report"
	"pozoagua/internal/state"
)

type createClientRequest struct {
	Name     string          `json:"nombre"`
	Plate    string          `json:"placa"`
	Capacity decimal.Decimal `json:"capacidadGalones"`
	Type     core.ClientType `json:"tipoCliente"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("buscar"))
	clients := s.app.SearchClients(query)
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	client, err := s.app.AddClient(r.Context(), state.ClientParams{
		Name:     req.Name,
		Plate:    req.Plate,
		Capacity: req.Capacity,
		Type:     req.Type,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// handleGetClient returns the client decorated with its lifetime gallon total.
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, ok := s.app.ClientWithGallons(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var client core.Client
	if err := decodeBody(r, &client); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	client.ID = r.PathValue("id")

	if err := s.app.UpdateClient(r.Context(), client); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clientReportResponse struct {
	Client core.Client        `json:"cliente"`
	Period report.Period      `json:"periodo"`
	Stats  report.PeriodStats `json:"estadisticas"`
	Sales  []core.Sale        `json:"ventas"`
}

func (s *Server) handleClientReport(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	client, ok := s.app.ClientWithGallons(id)
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNotFound)
		return
	}

	sales, stats, ok := s.app.ClientPeriodReport(id, period)
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNotFound)
		return
	}
	if sales == nil {
		sales = []core.Sale{}
	}
	writeJSON(w, http.StatusOK, clientReportResponse{
		Client: client,
		Period: period,
		Stats:  stats,
		Sales:  sales,
	})
}

func (s *Server) handleClientReportExport(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := r.PathValue("id")
	client, ok := s.app.ClientWithGallons(id)
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNotFound)
		return
	}
	sales, stats, ok := s.app.ClientPeriodReport(id, period)
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNotFound)
		return
	}
	if len(sales) == 0 {
		writeError(w, http.StatusUnprocessableEntity, errors.New("no sales in period"))
		return
	}

	now := timeNow()
	csv := export.ClientReportCSV(client, period, stats, sales, s.app.Workers(), now)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+export.ClientReportFilename(client.Name, period, now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
