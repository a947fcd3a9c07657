// Package state owns the in-memory mirror of the record store: the three
// collections plus the current-worker pointer. Every mutation writes to the
// store first and updates the mirror only after the write is confirmed, so
// memory never drifts ahead of persistence. Reads delegate to the report
// engine over the current snapshot.
package state

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pozoagua/internal/core"
	"pozoagua/internal/report"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicatePlate  = errors.New("a client with this plate already exists")
	ErrNoCurrentWorker = errors.New("no current worker selected")
)

// Repository is the record store contract the coordinator depends on.
type Repository interface {
	ListClients(ctx context.Context) ([]core.Client, error)
	SaveClient(ctx context.Context, c core.Client) error
	DeleteClient(ctx context.Context, id string) error

	ListSales(ctx context.Context) ([]core.Sale, error)
	SaveSale(ctx context.Context, s core.Sale) error
	DeleteSale(ctx context.Context, id string) error

	ListWorkers(ctx context.Context) ([]core.Worker, error)
	SaveWorker(ctx context.Context, w core.Worker) error

	CurrentWorkerID(ctx context.Context) (string, error)
	SetCurrentWorkerID(ctx context.Context, id string) error
}

// Notifier publishes sale change events after confirmed writes. A nil
// notifier disables publishing; the app works without a broker.
type Notifier interface {
	PublishSaleChanged(ctx context.Context, saleID, action string) error
	PublishSaleSync(ctx context.Context, saleID string) error
}

type App struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time

	mu            sync.RWMutex
	clients       []core.Client
	sales         []core.Sale
	workers       []core.Worker
	currentWorker *core.Worker
}

func NewApp(repo Repository, notifier Notifier) *App {
	return &App{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// Load fills the mirrors from the store. An unavailable collection loads as
// empty rather than failing; the store is the durable copy either way.
func (a *App) Load(ctx context.Context) {
	clients, err := a.repo.ListClients(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load clients, starting empty", "error", err)
		clients = nil
	}
	sales, err := a.repo.ListSales(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load sales, starting empty", "error", err)
		sales = nil
	}
	workers, err := a.repo.ListWorkers(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load workers, starting empty", "error", err)
		workers = nil
	}

	var current *core.Worker
	if id, err := a.repo.CurrentWorkerID(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to load current worker pointer", "error", err)
	} else if id != "" {
		for i := range workers {
			if workers[i].ID == id {
				w := workers[i]
				current = &w
				break
			}
		}
	}

	a.mu.Lock()
	a.clients = clients
	a.sales = sales
	a.workers = workers
	a.currentWorker = current
	a.mu.Unlock()
}

// ReloadAll is the change-notification entry point: a coarse, all-or-nothing
// refresh of every mirror. Re-running it against unchanged data is a no-op.
func (a *App) ReloadAll(ctx context.Context) {
	slog.DebugContext(ctx, "Reloading all collections")
	a.Load(ctx)
}

// Clients returns a copy of the client mirror in insertion order.
func (a *App) Clients() []core.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]core.Client(nil), a.clients...)
}

// Sales returns a copy of the sale mirror in insertion order.
func (a *App) Sales() []core.Sale {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]core.Sale(nil), a.sales...)
}

// Workers returns a copy of the worker mirror in insertion order.
func (a *App) Workers() []core.Worker {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]core.Worker(nil), a.workers...)
}

// CurrentWorker returns the designated current worker, if any.
func (a *App) CurrentWorker() (core.Worker, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.currentWorker == nil {
		return core.Worker{}, false
	}
	return *a.currentWorker, true
}

type ClientParams struct {
	Name     string
	Plate    string
	Capacity decimal.Decimal
	Type     core.ClientType
}

// AddClient registers a new client. Plate uniqueness is enforced here, at
// creation time only, with a case-insensitive compare.
func (a *App) AddClient(ctx context.Context, p ClientParams) (core.Client, error) {
	c := core.Client{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(p.Name),
		Plate:        strings.ToUpper(strings.TrimSpace(p.Plate)),
		Capacity:     p.Capacity,
		Type:         p.Type,
		RegisteredAt: a.now(),
	}
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}

	a.mu.RLock()
	dup := hasPlate(a.clients, c.Plate)
	a.mu.RUnlock()
	if dup {
		return core.Client{}, ErrDuplicatePlate
	}

	if err := a.repo.SaveClient(ctx, c); err != nil {
		return core.Client{}, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, c)
	a.mu.Unlock()
	return c, nil
}

// UpdateClient replaces the full client record. The plate uniqueness check
// is not repeated on update, matching creation-time-only enforcement.
func (a *App) UpdateClient(ctx context.Context, c core.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}

	a.mu.RLock()
	idx := clientIndex(a.clients, c.ID)
	a.mu.RUnlock()
	if idx < 0 {
		return ErrNotFound
	}

	if err := a.repo.SaveClient(ctx, c); err != nil {
		return err
	}

	a.mu.Lock()
	a.clients[idx] = c
	a.mu.Unlock()
	return nil
}

// DeleteClient removes the client. Its sales stay untouched: there is no
// cascade, and lifetime totals computed from the sale set are unaffected.
func (a *App) DeleteClient(ctx context.Context, id string) error {
	if err := a.repo.DeleteClient(ctx, id); err != nil {
		return err
	}

	a.mu.Lock()
	kept := a.clients[:0]
	for _, c := range a.clients {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	a.clients = kept
	a.mu.Unlock()
	return nil
}

// SearchClients filters the client mirror by name or plate substring.
func (a *App) SearchClients(query string) []core.Client {
	return report.SearchClients(a.Clients(), query)
}

// ClientWithGallons returns the client decorated with its lifetime gallon
// total, or false when the ID is unknown.
func (a *App) ClientWithGallons(id string) (core.Client, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return report.ClientWithGallons(a.clients, a.sales, id)
}

type SaleParams struct {
	ClientID string
	Gallons  decimal.Decimal
	Total    core.Money
	Paid     bool
	Notes    string
}

// AddSale records a dispensing event attributed to the current worker, with
// the timestamp assigned at creation. For credito clients the sale is stored
// unpaid regardless of the requested flag; corriente clients take the flag
// as requested.
func (a *App) AddSale(ctx context.Context, p SaleParams) (core.Sale, error) {
	a.mu.RLock()
	current := a.currentWorker
	idx := clientIndex(a.clients, p.ClientID)
	var clientType core.ClientType
	if idx >= 0 {
		clientType = a.clients[idx].Type
	}
	a.mu.RUnlock()

	if current == nil {
		return core.Sale{}, ErrNoCurrentWorker
	}
	if idx < 0 {
		return core.Sale{}, ErrNotFound
	}

	paid := p.Paid
	if clientType == core.Credito {
		paid = false
	}

	s := core.Sale{
		ID:       uuid.NewString(),
		ClientID: p.ClientID,
		WorkerID: current.ID,
		Date:     a.now(),
		Gallons:  p.Gallons,
		Total:    p.Total,
		Paid:     paid,
		Notes:    strings.TrimSpace(p.Notes),
	}
	if err := s.Validate(); err != nil {
		return core.Sale{}, err
	}

	if err := a.repo.SaveSale(ctx, s); err != nil {
		return core.Sale{}, err
	}

	a.mu.Lock()
	a.sales = append(a.sales, s)
	a.mu.Unlock()

	a.notifySale(ctx, s.ID, "created")
	return s, nil
}

// UpdateSale replaces the full sale record, including an explicitly edited
// timestamp or paid flag.
func (a *App) UpdateSale(ctx context.Context, s core.Sale) error {
	if err := s.Validate(); err != nil {
		return err
	}

	a.mu.RLock()
	idx := saleIndex(a.sales, s.ID)
	a.mu.RUnlock()
	if idx < 0 {
		return ErrNotFound
	}

	if err := a.repo.SaveSale(ctx, s); err != nil {
		return err
	}

	a.mu.Lock()
	a.sales[idx] = s
	a.mu.Unlock()

	a.notifySale(ctx, s.ID, "updated")
	return nil
}

// DeleteSale removes the sale record.
func (a *App) DeleteSale(ctx context.Context, id string) error {
	if err := a.repo.DeleteSale(ctx, id); err != nil {
		return err
	}

	a.mu.Lock()
	kept := a.sales[:0]
	for _, s := range a.sales {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	a.sales = kept
	a.mu.Unlock()

	if a.notifier != nil {
		if err := a.notifier.PublishSaleChanged(ctx, id, "deleted"); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sale change", "id", id, "error", err)
		}
	}
	return nil
}

// SalesForDay returns the sales on the given local calendar day; a zero day
// means today.
func (a *App) SalesForDay(day time.Time) []core.Sale {
	if day.IsZero() {
		day = a.now()
	}
	return report.SalesOn(a.Sales(), day)
}

// DaySummary summarizes the given local calendar day; a zero day means today.
func (a *App) DaySummary(day time.Time) core.DaySummary {
	return report.Summarize(a.SalesForDay(day))
}

// ClientPeriodReport returns a client's sales within the period, newest
// first, together with the period summary. False when the client is unknown.
func (a *App) ClientPeriodReport(clientID string, p report.Period) ([]core.Sale, report.PeriodStats, bool) {
	a.mu.RLock()
	idx := clientIndex(a.clients, clientID)
	sales := append([]core.Sale(nil), a.sales...)
	a.mu.RUnlock()
	if idx < 0 {
		return nil, report.PeriodStats{}, false
	}

	period := report.ClientSalesInPeriod(sales, clientID, p, a.now())
	return period, report.SummarizePeriod(period), true
}

// GlobalReport is the full report view: headline stats, per-client and
// per-worker rollups over the filtered sale set, and the trailing-week
// per-day rollup over the unfiltered set.
type GlobalReport struct {
	Overall report.Stats          `json:"estadisticasGenerales"`
	Clients []report.ClientRollup `json:"porCliente"`
	Workers []report.WorkerRollup `json:"porTrabajador"`
	Days    []report.DayRollup    `json:"porDia"`
}

func (a *App) Report(f report.Filter) GlobalReport {
	a.mu.RLock()
	clients := append([]core.Client(nil), a.clients...)
	workers := append([]core.Worker(nil), a.workers...)
	sales := append([]core.Sale(nil), a.sales...)
	a.mu.RUnlock()

	filtered := report.FilterSales(sales, f)
	return GlobalReport{
		Overall: report.OverallStats(sales),
		Clients: report.ClientRollups(clients, filtered),
		Workers: report.WorkerRollups(workers, filtered),
		// The per-day view deliberately ignores the global filter.
		Days: report.DailyRollups(sales, a.now()),
	}
}

// FilteredSales applies the global report filter to the sale mirror.
func (a *App) FilteredSales(f report.Filter) []core.Sale {
	return report.FilterSales(a.Sales(), f)
}

// AddWorker registers a new worker.
func (a *App) AddWorker(ctx context.Context, name string) (core.Worker, error) {
	w := core.Worker{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		RegisteredAt: a.now(),
	}
	if err := w.Validate(); err != nil {
		return core.Worker{}, err
	}

	if err := a.repo.SaveWorker(ctx, w); err != nil {
		return core.Worker{}, err
	}

	a.mu.Lock()
	a.workers = append(a.workers, w)
	a.mu.Unlock()
	return w, nil
}

// SelectWorker designates the current worker; new sales are attributed to it.
func (a *App) SelectWorker(ctx context.Context, id string) error {
	a.mu.RLock()
	var found *core.Worker
	for i := range a.workers {
		if a.workers[i].ID == id {
			w := a.workers[i]
			found = &w
			break
		}
	}
	a.mu.RUnlock()
	if found == nil {
		return ErrNotFound
	}

	if err := a.repo.SetCurrentWorkerID(ctx, id); err != nil {
		return err
	}

	a.mu.Lock()
	a.currentWorker = found
	a.mu.Unlock()
	return nil
}

func (a *App) notifySale(ctx context.Context, id, action string) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.PublishSaleChanged(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sale change", "id", id, "error", err)
	}
	if err := a.notifier.PublishSaleSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sale sync", "id", id, "error", err)
	}
}

func hasPlate(clients []core.Client, plate string) bool {
	for _, c := range clients {
		if strings.EqualFold(c.Plate, plate) {
			return true
		}
	}
	return false
}

func clientIndex(clients []core.Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}

func saleIndex(sales []core.Sale, id string) int {
	for i := range sales {
		if sales[i].ID == id {
			return i
		}
	}
	return -1
}
