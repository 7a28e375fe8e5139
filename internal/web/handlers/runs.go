package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/namelink/internal/audit"
)

// ListRuns returns recorded resolution runs, newest first
func (h *APIHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 50)

	runs, err := h.Tracker.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if runs == nil {
		runs = []audit.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one run with its tier and method breakdown
func (h *APIHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := h.Tracker.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, audit.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	stats, err := h.Tracker.GetRunStats(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":   run,
		"stats": stats,
	})
}

// GetRunResults returns the stored rows of a run
func (h *APIHandler) GetRunResults(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rows, err := h.Tracker.Results(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if rows == nil {
		rows = []audit.ResultRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}
