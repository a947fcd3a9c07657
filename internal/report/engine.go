// Package report derives every reporting view of the ledger from in-memory
// collection snapshots. All functions are pure: they read the slices they are
// given, perform no I/O, and take reference times as explicit parameters.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pozoagua/internal/core"
)

// Period selects the per-client report window.
type Period string

const (
	// PeriodDay matches the local calendar date of the reference time.
	PeriodDay Period = "dia"
	// PeriodWeek is a sliding window: sale timestamp >= now - 7 days.
	PeriodWeek Period = "semana"
	// PeriodMonth is a sliding window: sale timestamp >= now - 30 days.
	PeriodMonth Period = "mes"
)

func (p Period) Valid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

// SearchClients returns the clients whose name or plate contains the query,
// case-insensitively. A blank query returns the input unchanged, preserving
// insertion order; there is no ranking.
func SearchClients(clients []core.Client, query string) []core.Client {
	query = strings.TrimSpace(query)
	if query == "" {
		return clients
	}
	q := strings.ToLower(query)
	var out []core.Client
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Plate), q) {
			out = append(out, c)
		}
	}
	return out
}

// LifetimeGallons sums the gallons of every sale belonging to the client,
// regardless of date or paid state. Zero when the client has no sales.
func LifetimeGallons(sales []core.Sale, clientID string) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		if s.ClientID == clientID {
			total = total.Add(s.Gallons)
		}
	}
	return total
}

// ClientWithGallons looks up a client and attaches its lifetime gallon total
// as the derived TotalGallons field. The second return value reports whether
// the client exists; callers must treat false as "no such client", not as a
// client with zero gallons.
func ClientWithGallons(clients []core.Client, sales []core.Sale, clientID string) (core.Client, bool) {
	for _, c := range clients {
		if c.ID == clientID {
			total := LifetimeGallons(sales, clientID)
			c.TotalGallons = &total
			return c, true
		}
	}
	return core.Client{}, false
}

// SalesOn returns the sales whose timestamp falls on the same local calendar
// day as the given date. Only the date component matters.
func SalesOn(sales []core.Sale, day time.Time) []core.Sale {
	var out []core.Sale
	for _, s := range sales {
		if sameDay(s.Date, day) {
			out = append(out, s)
		}
	}
	return out
}

// Summarize computes the day summary for an already day-filtered sale set.
// Sums are exact; rounding for display happens elsewhere.
func Summarize(sales []core.Sale) core.DaySummary {
	sum := core.DaySummary{Gallons: decimal.Zero}
	for _, s := range sales {
		sum.Sales++
		sum.Gallons = sum.Gallons.Add(s.Gallons)
		if s.Paid {
			sum.Income = sum.Income.Add(s.Total)
		} else {
			sum.PendingSales++
			sum.PendingAmount = sum.PendingAmount.Add(s.Total)
		}
	}
	return sum
}

// ClientSalesInPeriod returns the client's sales within the period, newest
// first. PeriodDay compares local calendar dates; PeriodWeek and PeriodMonth
// use a sliding timestamp cutoff from now, so a sale recorded exactly seven
// days ago may fall in or out of the week depending on the current
// time-of-day. That asymmetry is intentional.
func ClientSalesInPeriod(sales []core.Sale, clientID string, p Period, now time.Time) []core.Sale {
	var cutoff time.Time
	switch p {
	case PeriodWeek:
		cutoff = now.AddDate(0, 0, -7)
	case PeriodMonth:
		cutoff = now.AddDate(0, 0, -30)
	}

	var out []core.Sale
	for _, s := range sales {
		if s.ClientID != clientID {
			continue
		}
		switch p {
		case PeriodDay:
			if !sameDay(s.Date, now) {
				continue
			}
		case PeriodWeek, PeriodMonth:
			if s.Date.Before(cutoff) {
				continue
			}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// PeriodStats is the summary block of a per-client period report.
type PeriodStats struct {
	Sales        int             `json:"totalVentas"`
	Gallons      decimal.Decimal `json:"totalGalones"`
	Billed       core.Money      `json:"totalFacturado"`
	Paid         core.Money      `json:"totalPagado"`
	Owed         core.Money      `json:"totalPendiente"`
	PendingSales int             `json:"ventasPendientes"`
}

// SummarizePeriod aggregates an already period-filtered sale set.
func SummarizePeriod(sales []core.Sale) PeriodStats {
	st := PeriodStats{Gallons: decimal.Zero}
	for _, s := range sales {
		st.Sales++
		st.Gallons = st.Gallons.Add(s.Gallons)
		st.Billed = st.Billed.Add(s.Total)
		if s.Paid {
			st.Paid = st.Paid.Add(s.Total)
		} else {
			st.Owed = st.Owed.Add(s.Total)
			st.PendingSales++
		}
	}
	return st
}

// Filter narrows the sale set for the global report. All dimensions are
// optional and combine conjunctively: a zero From or To disables that bound,
// and a blank or "todos" worker ID disables the worker restriction. The end
// bound is inclusive through the last instant of its calendar day.
type Filter struct {
	From     time.Time
	To       time.Time
	WorkerID string
}

// FilterSales applies the filter, preserving input order.
func FilterSales(sales []core.Sale, f Filter) []core.Sale {
	byWorker := f.WorkerID != "" && f.WorkerID != core.WorkerAll
	var end time.Time
	if !f.To.IsZero() {
		y, m, d := f.To.Date()
		end = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), f.To.Location())
	}

	var out []core.Sale
	for _, s := range sales {
		if !f.From.IsZero() && s.Date.Before(f.From) {
			continue
		}
		if !end.IsZero() && s.Date.After(end) {
			continue
		}
		if byWorker && s.WorkerID != f.WorkerID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ClientRollup is one row of the per-client report.
type ClientRollup struct {
	Client     core.Client     `json:"cliente"`
	Visits     int             `json:"numeroVisitas"`
	Gallons    decimal.Decimal `json:"totalGalones"`
	Billed     core.Money      `json:"totalGastado"`
	Paid       core.Money      `json:"totalPagado"`
	Owed       core.Money      `json:"totalDeuda"`
	LastVisit  time.Time       `json:"ultimaVisita"`
	AvgGallons decimal.Decimal `json:"promedioGalonesPorVisita"`
}

// ClientRollups aggregates the (already globally filtered) sale set per
// client. Clients without a matching sale are excluded entirely. Sorted by
// gallon total, descending.
func ClientRollups(clients []core.Client, sales []core.Sale) []ClientRollup {
	var out []ClientRollup
	for _, c := range clients {
		r := ClientRollup{Client: c, Gallons: decimal.Zero, AvgGallons: decimal.Zero}
		for _, s := range sales {
			if s.ClientID != c.ID {
				continue
			}
			r.Visits++
			r.Gallons = r.Gallons.Add(s.Gallons)
			r.Billed = r.Billed.Add(s.Total)
			if s.Paid {
				r.Paid = r.Paid.Add(s.Total)
			} else {
				r.Owed = r.Owed.Add(s.Total)
			}
			if s.Date.After(r.LastVisit) {
				r.LastVisit = s.Date
			}
		}
		if r.Visits == 0 {
			continue
		}
		r.AvgGallons = r.Gallons.Div(decimal.NewFromInt(int64(r.Visits)))
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Gallons.GreaterThan(out[j].Gallons)
	})
	return out
}

// WorkerRollup is one row of the per-worker report.
type WorkerRollup struct {
	Worker     core.Worker     `json:"trabajador"`
	Sales      int             `json:"totalVentas"`
	Gallons    decimal.Decimal `json:"totalGalones"`
	Income     core.Money      `json:"totalIngresos"`
	AvgGallons decimal.Decimal `json:"promedioGalonesPorVenta"`
}

// WorkerRollups aggregates the filtered sale set per worker. Workers without
// a matching sale are excluded. Sorted by sale count, descending.
func WorkerRollups(workers []core.Worker, sales []core.Sale) []WorkerRollup {
	var out []WorkerRollup
	for _, w := range workers {
		r := WorkerRollup{Worker: w, Gallons: decimal.Zero, AvgGallons: decimal.Zero}
		for _, s := range sales {
			if s.WorkerID != w.ID {
				continue
			}
			r.Sales++
			r.Gallons = r.Gallons.Add(s.Gallons)
			if s.Paid {
				r.Income = r.Income.Add(s.Total)
			}
		}
		if r.Sales == 0 {
			continue
		}
		r.AvgGallons = r.Gallons.Div(decimal.NewFromInt(int64(r.Sales)))
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sales > out[j].Sales
	})
	return out
}

// DayRollup is one day of the trailing-week report.
type DayRollup struct {
	Date    time.Time       `json:"fecha"`
	Sales   int             `json:"totalVentas"`
	Gallons decimal.Decimal `json:"totalGalones"`
	Income  core.Money      `json:"totalIngresos"`
}

// DailyRollups summarizes each of the last seven calendar days including
// today, oldest first. It always reads the full sale set; the global report
// filter does not apply to this view.
func DailyRollups(sales []core.Sale, now time.Time) []DayRollup {
	out := make([]DayRollup, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		sum := Summarize(SalesOn(sales, day))
		out = append(out, DayRollup{
			Date:    dayStart(day),
			Sales:   sum.Sales,
			Gallons: sum.Gallons,
			Income:  sum.Income,
		})
	}
	return out
}

// Stats is the headline block of the global report.
type Stats struct {
	Sales             int             `json:"totalVentas"`
	Gallons           decimal.Decimal `json:"totalGalones"`
	Income            core.Money      `json:"totalIngresos"`
	Pending           core.Money      `json:"totalPendiente"`
	AvgGallonsPerSale decimal.Decimal `json:"promedioGalonesPorVenta"`
	AvgPricePerGallon decimal.Decimal `json:"promedioPrecioPorGalon"`
}

// OverallStats aggregates the whole sale set. Averages are zero, never an
// error, when the denominators are empty.
func OverallStats(sales []core.Sale) Stats {
	st := Stats{
		Gallons:           decimal.Zero,
		AvgGallonsPerSale: decimal.Zero,
		AvgPricePerGallon: decimal.Zero,
	}
	for _, s := range sales {
		st.Sales++
		st.Gallons = st.Gallons.Add(s.Gallons)
		if s.Paid {
			st.Income = st.Income.Add(s.Total)
		} else {
			st.Pending = st.Pending.Add(s.Total)
		}
	}
	if st.Sales > 0 {
		st.AvgGallonsPerSale = st.Gallons.Div(decimal.NewFromInt(int64(st.Sales)))
	}
	if !st.Gallons.IsZero() {
		billed := st.Income.Add(st.Pending)
		st.AvgPricePerGallon = billed.PerGallon(st.Gallons)
	}
	return st
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
