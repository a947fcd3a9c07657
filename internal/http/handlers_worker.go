package http

import (
	"net/http"

	"pozoagua/internal/state"
)

type createWorkerRequest struct {
	Name string `json:"nombre"`
}

type selectWorkerRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Workers())
}

func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	worker, err := s.app.AddWorker(r.Context(), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (s *Server) handleCurrentWorker(w http.ResponseWriter, r *http.Request) {
	worker, ok := s.app.CurrentWorker()
	if !ok {
		writeError(w, http.StatusNotFound, state.ErrNoCurrentWorker)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleSelectWorker(w http.ResponseWriter, r *http.Request) {
	var req selectWorkerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.app.SelectWorker(r.Context(), req.ID); err != nil {
		writeAppError(w, err)
		return
	}
	worker, _ := s.app.CurrentWorker()
	writeJSON(w, http.StatusOK, worker)
}
