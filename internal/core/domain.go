package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// Corriente clients pay at the moment the sale is recorded.
	Corriente ClientType = "corriente"
	// Credito clients settle later; their sales always start unpaid.
	Credito ClientType = "credito"
)

// WorkerAll is the sentinel worker filter meaning "no worker restriction".
const WorkerAll = "todos"

type (
	ClientType string

	Client struct {
		ID           string          `json:"id"`
		Name         string          `json:"nombre"`
		Plate        string          `json:"placa"`
		Capacity     decimal.Decimal `json:"capacidadGalones"`
		Type         ClientType      `json:"tipoCliente"`
		RegisteredAt time.Time       `json:"fechaRegistro"`
		// TotalGallons is derived from the sale history and never persisted.
		TotalGallons *decimal.Decimal `json:"totalGalones,omitempty"`
	}

	Sale struct {
		ID       string          `json:"id"`
		ClientID string          `json:"clienteId"`
		WorkerID string          `json:"trabajadorId"`
		Date     time.Time       `json:"fecha"`
		Gallons  decimal.Decimal `json:"galones"`
		Total    Money           `json:"precioTotal"`
		Paid     bool            `json:"pagado"`
		Notes    string          `json:"notas,omitempty"`
	}

	Worker struct {
		ID           string    `json:"id"`
		Name         string    `json:"nombre"`
		RegisteredAt time.Time `json:"fechaRegistro"`
	}

	// DaySummary aggregates the sales of a single local calendar day.
	DaySummary struct {
		Sales         int             `json:"totalVentas"`
		Gallons       decimal.Decimal `json:"totalGalones"`
		Income        Money           `json:"totalIngresos"`
		PendingSales  int             `json:"ventasPendientes"`
		PendingAmount Money           `json:"importePendiente"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyPlate      = errors.New("empty plate")
	ErrInvalidCapacity = errors.New("capacity must be positive")
	ErrInvalidType     = errors.New("invalid client type")
	ErrInvalidGallons  = errors.New("gallons must be positive")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingClient   = errors.New("missing client reference")
	ErrMissingWorker   = errors.New("missing worker reference")
	ErrMissingDate     = errors.New("missing sale date")
)

func init() {
	// Gallon quantities travel as bare JSON numbers, matching the stored
	// record shape of the original ledger.
	decimal.MarshalJSONWithoutQuotes = true
}

func (t ClientType) Valid() bool {
	return t == Corriente || t == Credito
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Plate) == "" {
		return ErrEmptyPlate
	}
	if !c.Capacity.IsPositive() {
		return ErrInvalidCapacity
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (s Sale) Validate() error {
	if strings.TrimSpace(s.ClientID) == "" {
		return ErrMissingClient
	}
	if strings.TrimSpace(s.WorkerID) == "" {
		return ErrMissingWorker
	}
	if s.Date.IsZero() {
		return ErrMissingDate
	}
	if !s.Gallons.IsPositive() {
		return ErrInvalidGallons
	}
	return s.Total.Validate()
}

func (w Worker) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
