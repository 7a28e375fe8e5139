package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/namelink/internal/audit"
	"github.com/namelink/internal/match"
)

// Config represents the handler feature toggles
type Config struct {
	Features struct {
		ResolveEnabled bool `json:"resolve_enabled"`
		RunsEnabled    bool `json:"runs_enabled"`
	} `json:"features"`
	BirthYearOffset int `json:"birth_year_offset"`
}

// APIHandler serves lookups and single-record resolution against a loaded corpus
type APIHandler struct {
	Engine  *match.Engine
	Tracker *audit.Tracker
	Config  *Config
}

// StatsResponse describes the loaded corpus and matching settings
type StatsResponse struct {
	Names            int              `json:"names"`
	Records          int              `json:"records"`
	ResolutionWindow int              `json:"resolution_window"`
	LookupWindow     int              `json:"lookup_window"`
	Metric           string           `json:"metric"`
	AcceptanceFloor  float64          `json:"acceptance_floor"`
	Tiers            match.MatchTiers `json:"tiers"`
}

// GetStats returns corpus statistics
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	cfg := h.Engine.Config()
	metric := cfg.Metric
	if metric == "" {
		metric = match.MetricRatio
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		Names:            h.Engine.Corpus().Len(),
		Records:          h.Engine.Corpus().Size(),
		ResolutionWindow: cfg.ResolutionWindow,
		LookupWindow:     cfg.LookupWindow,
		Metric:           string(metric),
		AcceptanceFloor:  cfg.AcceptanceFloor,
		Tiers:            *cfg.Tiers,
	})
}

// Health reports liveness
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return defaultVal
}
