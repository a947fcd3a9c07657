// Package storage persists the three record collections and the
// current-worker pointer in a local SQLite database. The store is a flat
// key-based collection: load-all, save-one (full-record replacement) and
// delete-one per collection, with no cascades between them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"pozoagua/internal/core"
)

// ErrNotFound signals a lookup by an unknown identifier.
var ErrNotFound = errors.New("record not found")

const currentWorkerKey = "trabajador-actual"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListClients returns all clients in insertion order.
func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, plate, capacity_gallons, client_type, registered_at
		 FROM clients ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		var c core.Client
		var capacity, registered string
		if err := rows.Scan(&c.ID, &c.Name, &c.Plate, &capacity, &c.Type, &registered); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		if c.Capacity, err = decimal.NewFromString(capacity); err != nil {
			return nil, fmt.Errorf("parse capacity for client %s: %w", c.ID, err)
		}
		if c.RegisteredAt, err = parseTime(registered); err != nil {
			return nil, fmt.Errorf("parse registration date for client %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveClient upserts the full client record.
func (r *SQLiteRepository) SaveClient(ctx context.Context, c core.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, plate, capacity_gallons, client_type, registered_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   plate = excluded.plate,
		   capacity_gallons = excluded.capacity_gallons,
		   client_type = excluded.client_type,
		   registered_at = excluded.registered_at`,
		c.ID, c.Name, c.Plate, c.Capacity.String(), string(c.Type), formatTime(c.RegisteredAt))
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}

	slog.InfoContext(ctx, "Client saved", "id", c.ID, "plate", c.Plate)
	return nil
}

// DeleteClient removes the client record. Sales referencing it are kept.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// ListSales returns all sales in insertion order.
func (r *SQLiteRepository) ListSales(ctx context.Context) ([]core.Sale, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, worker_id, sold_at, gallons, total_pesos, paid, notes
		 FROM sales ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []core.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSale loads one sale by ID. Returns ErrNotFound for unknown IDs.
func (r *SQLiteRepository) GetSale(ctx context.Context, id string) (core.Sale, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, worker_id, sold_at, gallons, total_pesos, paid, notes
		 FROM sales WHERE id = ?`, id)
	s, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Sale{}, ErrNotFound
	}
	return s, err
}

// SaveSale upserts the full sale record.
func (r *SQLiteRepository) SaveSale(ctx context.Context, s core.Sale) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sales (id, client_id, worker_id, sold_at, gallons, total_pesos, paid, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   client_id = excluded.client_id,
		   worker_id = excluded.worker_id,
		   sold_at = excluded.sold_at,
		   gallons = excluded.gallons,
		   total_pesos = excluded.total_pesos,
		   paid = excluded.paid,
		   notes = excluded.notes`,
		s.ID, s.ClientID, s.WorkerID, formatTime(s.Date), s.Gallons.String(),
		s.Total.Pesos, boolToInt(s.Paid), s.Notes)
	if err != nil {
		return fmt.Errorf("save sale: %w", err)
	}

	slog.InfoContext(ctx, "Sale saved",
		"id", s.ID,
		"client_id", s.ClientID,
		"gallons", s.Gallons.String(),
		"total_pesos", s.Total.Pesos,
		"paid", s.Paid)
	return nil
}

// DeleteSale removes the sale record.
func (r *SQLiteRepository) DeleteSale(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

// ListWorkers returns all workers in insertion order.
func (r *SQLiteRepository) ListWorkers(ctx context.Context) ([]core.Worker, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, registered_at FROM workers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var out []core.Worker
	for rows.Next() {
		var w core.Worker
		var registered string
		if err := rows.Scan(&w.ID, &w.Name, &registered); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		if w.RegisteredAt, err = parseTime(registered); err != nil {
			return nil, fmt.Errorf("parse registration date for worker %s: %w", w.ID, err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SaveWorker upserts the full worker record.
func (r *SQLiteRepository) SaveWorker(ctx context.Context, w core.Worker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (id, name, registered_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   registered_at = excluded.registered_at`,
		w.ID, w.Name, formatTime(w.RegisteredAt))
	if err != nil {
		return fmt.Errorf("save worker: %w", err)
	}

	slog.InfoContext(ctx, "Worker saved", "id", w.ID, "name", w.Name)
	return nil
}

// DeleteWorker removes the worker record. Its sales keep the dangling ID.
func (r *SQLiteRepository) DeleteWorker(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	return nil
}

// CurrentWorkerID returns the designated current worker, or "" when unset.
func (r *SQLiteRepository) CurrentWorkerID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, currentWorkerKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get current worker: %w", err)
	}
	return id, nil
}

// SetCurrentWorkerID stores the current-worker pointer.
func (r *SQLiteRepository) SetCurrentWorkerID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentWorkerKey, id)
	if err != nil {
		return fmt.Errorf("set current worker: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (core.Sale, error) {
	var s core.Sale
	var soldAt, gallons string
	var paid int
	if err := row.Scan(&s.ID, &s.ClientID, &s.WorkerID, &soldAt, &gallons,
		&s.Total.Pesos, &paid, &s.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Sale{}, sql.ErrNoRows
		}
		return core.Sale{}, fmt.Errorf("scan sale: %w", err)
	}
	var err error
	if s.Gallons, err = decimal.NewFromString(gallons); err != nil {
		return core.Sale{}, fmt.Errorf("parse gallons for sale %s: %w", s.ID, err)
	}
	if s.Date, err = parseTime(soldAt); err != nil {
		return core.Sale{}, fmt.Errorf("parse date for sale %s: %w", s.ID, err)
	}
	s.Paid = paid != 0
	return s, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
