package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/namelink/internal/match"
	"github.com/namelink/internal/normalize"
	"github.com/namelink/internal/web/metrics"
)

// Lookup returns the best corpus name for ?q= within the lookup window.
// No acceptance floor is applied.
func (h *APIHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter q required")
		return
	}

	result := h.Engine.Lookup(q)
	metrics.LookupsTotal.WithLabelValues(strconv.FormatBool(result.Exact)).Inc()
	writeJSON(w, http.StatusOK, result)
}

// NameRecord is a reference identity listed under a corpus name
type NameRecord struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	BirthYear *int   `json:"birth_year"`
}

// GetName lists the reference identities sharing a canonical name.
func (h *APIHandler) GetName(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	records := h.Engine.Corpus().Records(name)
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "name not found")
		return
	}

	out := make([]NameRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, NameRecord{ID: rec.ID, City: rec.City, BirthYear: rec.BirthYear})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":       name,
		"identities": out,
	})
}

// ResolveRequest is a single query record in raw form. Either Name or
// First/Last may be given; Region is used when City is empty. BirthYear
// takes precedence over an estimate from DegreeStart.
type ResolveRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	First       string `json:"first"`
	Last        string `json:"last"`
	City        string `json:"city"`
	Region      string `json:"region"`
	DegreeStart string `json:"degree_start"`
	BirthYear   *int   `json:"birth_year"`
}

// Resolve runs one query record through the full resolution pipeline.
func (h *APIHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	query, err := h.queryRecord(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Engine.ResolveOne(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	metrics.ResolutionsTotal.WithLabelValues(string(res.Final)).Inc()
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) queryRecord(req ResolveRequest) (match.Record, error) {
	name := normalize.CanonicalName(req.First, req.Last)
	if req.Name != "" {
		name = normalize.CanonicalName(req.Name, "")
	}

	city := req.City
	if city == "" {
		city = normalize.RegionCity(req.Region)
	}

	birth := req.BirthYear
	if birth == nil && req.DegreeStart != "" {
		offset := normalize.DefaultBirthYearOffset
		if h.Config != nil && h.Config.BirthYearOffset > 0 {
			offset = h.Config.BirthYearOffset
		}
		est, err := normalize.EstimateBirthYear(req.DegreeStart, offset)
		if err != nil {
			return match.Record{}, err
		}
		birth = est
	}

	return match.Record{
		ID:        req.ID,
		Name:      name,
		City:      city,
		BirthYear: birth,
		Kind:      match.KindQuery,
	}, nil
}
