package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pozoagua/internal/core"
)

func client(id, name, plate string, capacity float64, t core.ClientType) core.Client {
	return core.Client{
		ID:           id,
		Name:         name,
		Plate:        plate,
		Capacity:     decimal.NewFromFloat(capacity),
		Type:         t,
		RegisteredAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local),
	}
}

func sale(id, clientID, workerID string, date time.Time, gallons float64, pesos int64, paid bool) core.Sale {
	return core.Sale{
		ID:       id,
		ClientID: clientID,
		WorkerID: workerID,
		Date:     date,
		Gallons:  decimal.NewFromFloat(gallons),
		Total:    core.Money{Pesos: pesos},
		Paid:     paid,
	}
}

func TestSearchClients(t *testing.T) {
	clients := []core.Client{
		client("c1", "Juan Perez", "ABC123", 100, core.Corriente),
		client("c2", "Maria Lopez", "XYZ789", 50, core.Credito),
		client("c3", "Juana Diaz", "abc987", 80, core.Corriente),
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"blank query returns all in order", "", []string{"c1", "c2", "c3"}},
		{"whitespace query returns all", "   ", []string{"c1", "c2", "c3"}},
		{"match by name fragment", "juan", []string{"c1", "c3"}},
		{"match by plate case-insensitive", "ABC", []string{"c1", "c3"}},
		{"match by full plate", "xyz789", []string{"c2"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchClients(clients, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d clients, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("result[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestLifetimeGallons(t *testing.T) {
	now := time.Now()
	sales := []core.Sale{
		sale("v1", "c1", "w1", now, 80, 40000, true),
		sale("v2", "c1", "w1", now.AddDate(0, 0, -40), 20.5, 10000, false),
		sale("v3", "c2", "w1", now, 30, 15000, true),
	}

	if got := LifetimeGallons(sales, "c1"); !got.Equal(decimal.NewFromFloat(100.5)) {
		t.Errorf("lifetime gallons for c1 = %s, want 100.5", got)
	}
	if got := LifetimeGallons(sales, "missing"); !got.IsZero() {
		t.Errorf("lifetime gallons for unknown client = %s, want 0", got)
	}
}

func TestClientWithGallons(t *testing.T) {
	clients := []core.Client{client("c1", "Juan", "ABC123", 100, core.Corriente)}
	sales := []core.Sale{
		sale("v1", "c1", "w1", time.Now(), 80, 40000, true),
	}

	got, ok := ClientWithGallons(clients, sales, "c1")
	if !ok {
		t.Fatal("expected client c1 to be found")
	}
	if got.TotalGallons == nil || !got.TotalGallons.Equal(decimal.NewFromInt(80)) {
		t.Errorf("TotalGallons = %v, want 80", got.TotalGallons)
	}

	if _, ok := ClientWithGallons(clients, sales, "missing"); ok {
		t.Error("unknown client must report not found, not zero gallons")
	}
}

func TestSalesOnUsesCalendarDate(t *testing.T) {
	today := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	lateYesterday := time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local)
	earlyToday := time.Date(2025, 3, 10, 0, 1, 0, 0, time.Local)

	sales := []core.Sale{
		sale("v1", "c1", "w1", lateYesterday, 10, 5000, true),
		sale("v2", "c1", "w1", earlyToday, 20, 10000, true),
		sale("v3", "c1", "w1", today, 30, 15000, true),
	}

	got := SalesOn(sales, today)
	if len(got) != 2 {
		t.Fatalf("got %d sales, want 2", len(got))
	}
	if got[0].ID != "v2" || got[1].ID != "v3" {
		t.Errorf("got sales %s, %s; want v2, v3", got[0].ID, got[1].ID)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	sales := []core.Sale{
		sale("v1", "c1", "w1", now, 80, 40000, true),
		sale("v2", "c2", "w1", now, 30, 15000, false),
		sale("v3", "c3", "w1", now, 10, 6000, false),
	}

	sum := Summarize(sales)
	if sum.Sales != 3 {
		t.Errorf("Sales = %d, want 3", sum.Sales)
	}
	if !sum.Gallons.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Gallons = %s, want 120", sum.Gallons)
	}
	if sum.Income.Pesos != 40000 {
		t.Errorf("Income = %d, want 40000 (paid sales only)", sum.Income.Pesos)
	}
	if sum.PendingSales != 2 {
		t.Errorf("PendingSales = %d, want 2", sum.PendingSales)
	}
	if sum.PendingAmount.Pesos != 21000 {
		t.Errorf("PendingAmount = %d, want 21000", sum.PendingAmount.Pesos)
	}
	if sum.PendingSales+(sum.Sales-sum.PendingSales) != sum.Sales {
		t.Error("paid count + unpaid count must equal total count")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Sales != 0 || sum.PendingSales != 0 {
		t.Errorf("empty summary has counts: %+v", sum)
	}
	if !sum.PendingAmount.IsZero() {
		t.Error("zero unpaid count must imply zero unpaid sum")
	}
}

func TestClientSalesInPeriod(t *testing.T) {
	// Late-evening reference time: the sliding week window cuts midway
	// through a calendar day.
	now := time.Date(2025, 3, 10, 22, 0, 0, 0, time.Local)

	exactlySevenDays := now.AddDate(0, 0, -7)                             // 2025-03-03 22:00
	sevenDaysEarlier := time.Date(2025, 3, 3, 9, 0, 0, 0, time.Local)    // outside week window
	yesterdayLate := time.Date(2025, 3, 9, 23, 59, 0, 0, time.Local)     // inside week, not today
	today := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)              // today, before now
	twentyNineDays := now.AddDate(0, 0, -29)                             // inside month only
	fortyDays := now.AddDate(0, 0, -40)                                  // outside all windows

	sales := []core.Sale{
		sale("v-old", "c1", "w1", fortyDays, 5, 1000, true),
		sale("v-29d", "c1", "w1", twentyNineDays, 5, 1000, true),
		sale("v-7d-am", "c1", "w1", sevenDaysEarlier, 5, 1000, true),
		sale("v-7d", "c1", "w1", exactlySevenDays, 5, 1000, true),
		sale("v-yday", "c1", "w1", yesterdayLate, 5, 1000, true),
		sale("v-today", "c1", "w1", today, 5, 1000, true),
		sale("v-other", "c2", "w1", today, 5, 1000, true),
	}

	t.Run("day uses calendar date equality", func(t *testing.T) {
		got := ClientSalesInPeriod(sales, "c1", PeriodDay, now)
		if len(got) != 1 || got[0].ID != "v-today" {
			t.Fatalf("got %v, want only v-today", ids(got))
		}
	})

	t.Run("week uses sliding timestamp cutoff", func(t *testing.T) {
		got := ClientSalesInPeriod(sales, "c1", PeriodWeek, now)
		want := []string{"v-today", "v-yday", "v-7d"}
		if !equalIDs(got, want) {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	})

	t.Run("month window includes 29-day-old sale", func(t *testing.T) {
		got := ClientSalesInPeriod(sales, "c1", PeriodMonth, now)
		want := []string{"v-today", "v-yday", "v-7d", "v-7d-am", "v-29d"}
		if !equalIDs(got, want) {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	})

	t.Run("sorted newest first", func(t *testing.T) {
		got := ClientSalesInPeriod(sales, "c1", PeriodMonth, now)
		for i := 1; i < len(got); i++ {
			if got[i].Date.After(got[i-1].Date) {
				t.Fatalf("sales not sorted newest first at index %d", i)
			}
		}
	})
}

func TestFilterSales(t *testing.T) {
	d := func(day int, hour int) time.Time {
		return time.Date(2025, 3, day, hour, 0, 0, 0, time.Local)
	}
	sales := []core.Sale{
		sale("v1", "c1", "w1", d(1, 10), 10, 1000, true),
		sale("v2", "c1", "w2", d(5, 23), 10, 1000, true),
		sale("v3", "c2", "w1", d(9, 8), 10, 1000, true),
	}

	t.Run("no filter returns all", func(t *testing.T) {
		if got := FilterSales(sales, Filter{}); len(got) != 3 {
			t.Fatalf("got %d, want 3", len(got))
		}
	})

	t.Run("all sentinel disables worker filter", func(t *testing.T) {
		if got := FilterSales(sales, Filter{WorkerID: core.WorkerAll}); len(got) != 3 {
			t.Fatalf("got %d, want 3", len(got))
		}
	})

	t.Run("end date includes its whole day", func(t *testing.T) {
		got := FilterSales(sales, Filter{To: d(5, 0)})
		if !equalIDs(got, []string{"v1", "v2"}) {
			t.Fatalf("got %v, want v1 v2 (v2 at 23:00 on the end date)", ids(got))
		}
	})

	t.Run("start date is inclusive", func(t *testing.T) {
		got := FilterSales(sales, Filter{From: d(5, 23)})
		if !equalIDs(got, []string{"v2", "v3"}) {
			t.Fatalf("got %v, want v2 v3", ids(got))
		}
	})

	t.Run("dimensions combine conjunctively", func(t *testing.T) {
		got := FilterSales(sales, Filter{From: d(2, 0), To: d(9, 0), WorkerID: "w1"})
		if !equalIDs(got, []string{"v3"}) {
			t.Fatalf("got %v, want v3", ids(got))
		}
	})
}

func TestClientRollups(t *testing.T) {
	clients := []core.Client{
		client("c1", "Juan", "ABC123", 100, core.Corriente),
		client("c2", "Maria", "XYZ789", 50, core.Credito),
		client("c3", "Sin Ventas", "QQQ111", 60, core.Corriente),
	}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	sales := []core.Sale{
		sale("v1", "c1", "w1", now.AddDate(0, 0, -1), 40, 20000, true),
		sale("v2", "c1", "w1", now, 20, 10000, false),
		sale("v3", "c2", "w1", now, 90, 45000, false),
	}

	rollups := ClientRollups(clients, sales)

	if len(rollups) != 2 {
		t.Fatalf("got %d rollups, want 2 (zero-visit clients excluded)", len(rollups))
	}
	// c2 has 90 gallons, c1 has 60: sorted by gallons descending.
	if rollups[0].Client.ID != "c2" || rollups[1].Client.ID != "c1" {
		t.Fatalf("rollup order = %s, %s; want c2, c1", rollups[0].Client.ID, rollups[1].Client.ID)
	}

	c1 := rollups[1]
	if c1.Visits != 2 {
		t.Errorf("c1 visits = %d, want 2", c1.Visits)
	}
	if c1.Billed.Pesos != 30000 || c1.Paid.Pesos != 20000 || c1.Owed.Pesos != 10000 {
		t.Errorf("c1 money: billed=%d paid=%d owed=%d", c1.Billed.Pesos, c1.Paid.Pesos, c1.Owed.Pesos)
	}
	if !c1.LastVisit.Equal(now) {
		t.Errorf("c1 last visit = %s, want %s", c1.LastVisit, now)
	}
	if !c1.AvgGallons.Equal(decimal.NewFromInt(30)) {
		t.Errorf("c1 avg gallons = %s, want 30", c1.AvgGallons)
	}

	c2 := rollups[0]
	if c2.Owed.Pesos != 45000 {
		t.Errorf("c2 owed = %d, want 45000", c2.Owed.Pesos)
	}
}

func TestWorkerRollups(t *testing.T) {
	workers := []core.Worker{
		{ID: "w1", Name: "Pedro"},
		{ID: "w2", Name: "Ana"},
		{ID: "w3", Name: "Ocioso"},
	}
	now := time.Now()
	sales := []core.Sale{
		sale("v1", "c1", "w1", now, 10, 5000, true),
		sale("v2", "c1", "w2", now, 40, 20000, true),
		sale("v3", "c2", "w2", now, 20, 10000, false),
	}

	rollups := WorkerRollups(workers, sales)
	if len(rollups) != 2 {
		t.Fatalf("got %d rollups, want 2 (idle workers excluded)", len(rollups))
	}
	// w2 has two sales, w1 one: sorted by sale count descending.
	if rollups[0].Worker.ID != "w2" {
		t.Fatalf("first rollup = %s, want w2", rollups[0].Worker.ID)
	}
	if rollups[0].Income.Pesos != 20000 {
		t.Errorf("w2 income = %d, want 20000 (paid only)", rollups[0].Income.Pesos)
	}
	if !rollups[0].AvgGallons.Equal(decimal.NewFromInt(30)) {
		t.Errorf("w2 avg gallons = %s, want 30", rollups[0].AvgGallons)
	}
}

func TestDailyRollups(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.Local)
	sales := []core.Sale{
		sale("v1", "c1", "w1", now.AddDate(0, 0, -6), 10, 5000, true),
		sale("v2", "c1", "w1", now.AddDate(0, 0, -3), 20, 10000, false),
		sale("v3", "c1", "w1", now, 30, 15000, true),
		sale("v-old", "c1", "w1", now.AddDate(0, 0, -7), 99, 99000, true),
	}

	days := DailyRollups(sales, now)
	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	if !days[0].Date.Before(days[6].Date) {
		t.Fatal("days must be ordered oldest to newest")
	}
	if days[0].Sales != 1 || !days[0].Gallons.Equal(decimal.NewFromInt(10)) {
		t.Errorf("oldest day = %+v, want the 6-days-ago sale", days[0])
	}
	if days[3].Sales != 1 || days[3].Income.Pesos != 0 {
		t.Errorf("day -3 = %+v, want one unpaid sale and no income", days[3])
	}
	if days[6].Sales != 1 || days[6].Income.Pesos != 15000 {
		t.Errorf("today = %+v, want one paid sale of 15000", days[6])
	}
	for _, d := range days {
		if d.Sales == 0 && (d.Income.Pesos != 0 || !d.Gallons.IsZero()) {
			t.Errorf("empty day %s carries totals", d.Date)
		}
	}
}

func TestOverallStats(t *testing.T) {
	t.Run("empty set yields zero averages", func(t *testing.T) {
		st := OverallStats(nil)
		if !st.AvgGallonsPerSale.IsZero() || !st.AvgPricePerGallon.IsZero() {
			t.Errorf("averages on empty set: %+v", st)
		}
	})

	t.Run("averages include unpaid sales in billed total", func(t *testing.T) {
		now := time.Now()
		st := OverallStats([]core.Sale{
			sale("v1", "c1", "w1", now, 80, 40000, true),
			sale("v2", "c2", "w1", now, 20, 10000, false),
		})
		if st.Sales != 2 || !st.Gallons.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("totals: %+v", st)
		}
		if !st.AvgGallonsPerSale.Equal(decimal.NewFromInt(50)) {
			t.Errorf("avg gallons per sale = %s, want 50", st.AvgGallonsPerSale)
		}
		if !st.AvgPricePerGallon.Equal(decimal.NewFromInt(500)) {
			t.Errorf("avg price per gallon = %s, want 500", st.AvgPricePerGallon)
		}
	})
}

func ids(sales []core.Sale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.ID
	}
	return out
}

func equalIDs(sales []core.Sale, want []string) bool {
	if len(sales) != len(want) {
		return false
	}
	for i, s := range sales {
		if s.ID != want[i] {
			return false
		}
	}
	return true
}
