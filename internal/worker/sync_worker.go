// Package worker copies confirmed sales from SQLite to the remote ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"pozoagua/internal/amqp"
	"pozoagua/internal/core"
	"pozoagua/internal/sheets"
)

// Storage is the slice of the repository the worker needs: the sale itself
// plus the collections used to resolve its references to display names.
type Storage interface {
	GetSale(ctx context.Context, id string) (core.Sale, error)
	ListClients(ctx context.Context) ([]core.Client, error)
	ListWorkers(ctx context.Context) ([]core.Worker, error)
}

// SyncWorker handles synchronization of sales from SQLite to the remote
// spreadsheet ledger.
type SyncWorker struct {
	storage Storage
	ledger  sheets.RowWriter
}

func NewSyncWorker(storage Storage, ledger sheets.RowWriter) *SyncWorker {
	return &SyncWorker{
		storage: storage,
		ledger:  ledger,
	}
}

// HandleSyncMessage processes a single sale sync message from AMQP. The sale
// is read back from storage so the mirrored row always reflects the stored
// record, not the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SaleSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	sale, err := w.storage.GetSale(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get sale from storage: %w", err)
	}

	row, err := w.buildRow(ctx, sale)
	if err != nil {
		return err
	}

	ref, err := w.ledger.AppendSale(ctx, row)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced sale",
		"id", sale.ID,
		"ledger_ref", ref,
		"client", row.Client,
		"gallons", sale.Gallons.String())

	return nil
}

// buildRow resolves the sale's client and worker references. A dangling
// reference (the record was deleted after the sale) becomes "N/A" rather
// than an error; the row is still worth mirroring.
func (w *SyncWorker) buildRow(ctx context.Context, sale core.Sale) (sheets.LedgerRow, error) {
	row := sheets.LedgerRow{
		Date:       sale.Date,
		Client:     "N/A",
		Plate:      "N/A",
		Gallons:    sale.Gallons,
		TotalPesos: sale.Total.Pesos,
		Paid:       sale.Paid,
		Worker:     "N/A",
		Notes:      sale.Notes,
	}

	clients, err := w.storage.ListClients(ctx)
	if err != nil {
		return sheets.LedgerRow{}, fmt.Errorf("list clients: %w", err)
	}
	for _, c := range clients {
		if c.ID == sale.ClientID {
			row.Client = c.Name
			row.Plate = c.Plate
			break
		}
	}

	workers, err := w.storage.ListWorkers(ctx)
	if err != nil {
		return sheets.LedgerRow{}, fmt.Errorf("list workers: %w", err)
	}
	for _, wk := range workers {
		if wk.ID == sale.WorkerID {
			row.Worker = wk.Name
			break
		}
	}

	return row, nil
}
