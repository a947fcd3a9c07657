// Package export renders report views as CSV documents for download.
//
// Rows are plain comma joins with no quoting. Embedded commas in free-text
// fields (client names, notes) therefore shift columns; this matches the
// files users already have and downstream tooling already accepts.
package export

import (
	"fmt"
	"strings"
	"time"

	"pozoagua/internal/core"
	"pozoagua/internal/report"
)

const timeLayout = "2006-01-02 15:04"

// SalesCSV renders the filtered sale set, one row per sale, resolving client
// and worker references to display values. Dangling references render as
// "N/A".
func SalesCSV(sales []core.Sale, clients []core.Client, workers []core.Worker) string {
	clientByID := make(map[string]core.Client, len(clients))
	for _, c := range clients {
		clientByID[c.ID] = c
	}
	workerByID := make(map[string]core.Worker, len(workers))
	for _, w := range workers {
		workerByID[w.ID] = w
	}

	lines := make([]string, 0, len(sales)+1)
	lines = append(lines, "Fecha,Cliente,Placa,Galones,Precio,Pagado,Trabajador,Notas")
	for _, s := range sales {
		clientName, plate := "N/A", "N/A"
		if c, ok := clientByID[s.ClientID]; ok {
			clientName, plate = c.Name, c.Plate
		}
		workerName := "N/A"
		if w, ok := workerByID[s.WorkerID]; ok {
			workerName = w.Name
		}
		lines = append(lines, strings.Join([]string{
			s.Date.Format(timeLayout),
			clientName,
			plate,
			s.Gallons.String(),
			fmt.Sprintf("%d", s.Total.Pesos),
			yesNo(s.Paid),
			workerName,
			s.Notes,
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// ClientReportCSV renders a per-client period report: a summary preamble
// followed by the sale detail rows.
func ClientReportCSV(client core.Client, period report.Period, stats report.PeriodStats, sales []core.Sale, workers []core.Worker, now time.Time) string {
	workerByID := make(map[string]core.Worker, len(workers))
	for _, w := range workers {
		workerByID[w.ID] = w
	}

	lines := []string{
		"REPORTE DE CLIENTE",
		"Cliente:," + client.Name,
		"Placa:," + client.Plate,
		"Período:," + string(period),
		"Fecha del reporte:," + now.Format(timeLayout),
		"",
		"RESUMEN",
		fmt.Sprintf("Total ventas:,%d", stats.Sales),
		"Total galones:," + stats.Gallons.String(),
		fmt.Sprintf("Total facturado:,%d", stats.Billed.Pesos),
		fmt.Sprintf("Total pagado:,%d", stats.Paid.Pesos),
		fmt.Sprintf("Total pendiente:,%d", stats.Owed.Pesos),
		"",
		"DETALLE DE VENTAS",
		"Fecha,Galones,Precio,Estado,Trabajador,Notas",
	}
	for _, s := range sales {
		workerName := "N/A"
		if w, ok := workerByID[s.WorkerID]; ok {
			workerName = w.Name
		}
		estado := "Pendiente"
		if s.Paid {
			estado = "Pagado"
		}
		lines = append(lines, strings.Join([]string{
			s.Date.Format(timeLayout),
			s.Gallons.String(),
			fmt.Sprintf("%d", s.Total.Pesos),
			estado,
			workerName,
			s.Notes,
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// SalesFilename names the download with today's date.
func SalesFilename(now time.Time) string {
	return fmt.Sprintf("reporte-ventas-%s.csv", now.Format("2006-01-02"))
}

// ClientReportFilename names the per-client download after the client and
// period.
func ClientReportFilename(clientName string, period report.Period, now time.Time) string {
	name := strings.Join(strings.Fields(clientName), "-")
	return fmt.Sprintf("reporte-%s-%s-%s.csv", name, period, now.Format("2006-01-02"))
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
