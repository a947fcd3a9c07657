// Package http exposes the record-keeping operations as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pozoagua/internal/state"
)

type Server struct {
	http.Server
	app *state.App
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, app *state.App) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		app: app,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /clientes", s.withRequestLog(s.handleListClients))
	mux.HandleFunc("POST /clientes", s.withRequestLog(s.handleCreateClient))
	mux.HandleFunc("GET /clientes/{id}", s.withRequestLog(s.handleGetClient))
	mux.HandleFunc("PUT /clientes/{id}", s.withRequestLog(s.handleUpdateClient))
	mux.HandleFunc("DELETE /clientes/{id}", s.withRequestLog(s.handleDeleteClient))
	mux.HandleFunc("GET /clientes/{id}/reporte", s.withRequestLog(s.handleClientReport))
	mux.HandleFunc("GET /clientes/{id}/reporte/export", s.withRequestLog(s.handleClientReportExport))

	mux.HandleFunc("GET /ventas", s.withRequestLog(s.handleListSales))
	mux.HandleFunc("POST /ventas", s.withRequestLog(s.handleCreateSale))
	mux.HandleFunc("PUT /ventas/{id}", s.withRequestLog(s.handleUpdateSale))
	mux.HandleFunc("DELETE /ventas/{id}", s.withRequestLog(s.handleDeleteSale))

	mux.HandleFunc("GET /resumen-dia", s.withRequestLog(s.handleDaySummary))
	mux.HandleFunc("GET /reportes", s.withRequestLog(s.handleGlobalReport))
	mux.HandleFunc("GET /reportes/export", s.withRequestLog(s.handleSalesExport))

	mux.HandleFunc("GET /trabajadores", s.withRequestLog(s.handleListWorkers))
	mux.HandleFunc("POST /trabajadores", s.withRequestLog(s.handleCreateWorker))
	mux.HandleFunc("GET /trabajadores/actual", s.withRequestLog(s.handleCurrentWorker))
	mux.HandleFunc("PUT /trabajadores/actual", s.withRequestLog(s.handleSelectWorker))

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

// withRequestLog adds security headers and request logging to responses.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
