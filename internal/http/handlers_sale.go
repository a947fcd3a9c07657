package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"pozoagua/internal/core"
	"pozoagua/internal/state"
)

type createSaleRequest struct {
	ClientID string          `json:"clienteId"`
	Gallons  decimal.Decimal `json:"galones"`
	Total    core.Money      `json:"precioTotal"`
	Paid     bool            `json:"pagado"`
	Notes    string          `json:"notas"`
}

func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("fecha") {
		day, err := parseDay(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sales := s.app.SalesForDay(day)
		if sales == nil {
			sales = []core.Sale{}
		}
		writeJSON(w, http.StatusOK, sales)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Sales())
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Dispensing more than the tank holds is an entry mistake; reject it
	// here so the coordinator never sees it.
	if client, ok := s.app.ClientWithGallons(req.ClientID); ok {
		if req.Gallons.GreaterThan(client.Capacity) {
			writeError(w, http.StatusUnprocessableEntity,
				errors.New("gallons exceed client tank capacity"))
			return
		}
	}

	sale, err := s.app.AddSale(r.Context(), state.SaleParams{
		ClientID: req.ClientID,
		Gallons:  req.Gallons,
		Total:    req.Total,
		Paid:     req.Paid,
		Notes:    req.Notes,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var sale core.Sale
	if err := decodeBody(r, &sale); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sale.ID = r.PathValue("id")

	if err := s.app.UpdateSale(r.Context(), sale); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
