package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelink/internal/audit"
	"github.com/namelink/internal/db"
	"github.com/namelink/internal/match"
)

func year(y int) *int {
	return &y
}

func testEngine(t *testing.T) *match.Engine {
	t.Helper()
	corpus, err := match.NewCorpus([]match.Record{
		{ID: "p1", Name: "jane doe", City: "Boston", BirthYear: year(1975)},
		{ID: "p2", Name: "john smith", City: "Denver", BirthYear: year(1985)},
		{ID: "p3", Name: "john smithe", City: "Austin", BirthYear: year(1950)},
	})
	require.NoError(t, err)

	cfg := match.DefaultEngineConfig()
	cfg.Workers = 1
	engine, err := match.NewEngine(corpus, cfg)
	require.NoError(t, err)
	return engine
}

func testServer(t *testing.T, cfg *Config, tracker *audit.Tracker) http.Handler {
	t.Helper()
	server, err := NewServer(cfg, testEngine(t), tracker)
	require.NoError(t, err)
	return server.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLookupEndpoint(t *testing.T) {
	h := testServer(t, DefaultConfig(), nil)

	rec := do(t, h, "GET", "/api/lookup?q=jon+smith", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got match.LookupResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "john smith", got.Best)
	assert.InDelta(t, 0.95, got.Score, 1e-9)
	assert.False(t, got.Exact)

	rec = do(t, h, "GET", "/api/lookup", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveEndpoint(t *testing.T) {
	h := testServer(t, DefaultConfig(), nil)

	rec := do(t, h, "POST", "/api/resolve",
		`{"id":"r1","first":"Jon","last":"Smith","region":"Denver, CO","degree_start":"1997"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res match.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "r1", res.QueryID)
	assert.Equal(t, "Jon Smith", res.QueryName)
	assert.Equal(t, match.StateUnmatched, res.Final, "names are case sensitive")

	rec = do(t, h, "POST", "/api/resolve", `{"id":"r2","name":"jon smith","city":"denver","birth_year":1980}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, match.StateMatched, res.Final)
	require.NotNil(t, res.Best)
	assert.Equal(t, "p2", res.Best.CandidateID)

	rec = do(t, h, "POST", "/api/resolve", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "POST", "/api/resolve", `{"name":"ann lee","degree_start":"autumn"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveCanBeDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.ResolveEnabled = false
	h := testServer(t, cfg, nil)

	rec := do(t, h, "POST", "/api/resolve", `{"name":"jane doe"}`)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestNamesEndpoint(t *testing.T) {
	h := testServer(t, DefaultConfig(), nil)

	rec := do(t, h, "GET", "/api/names/jane%20doe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p1"`)

	rec = do(t, h, "GET", "/api/names/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsHealthAndMetrics(t *testing.T) {
	h := testServer(t, DefaultConfig(), nil)

	rec := do(t, h, "GET", "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(3), stats["names"])
	assert.Equal(t, "ratio", stats["metric"])

	rec = do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, h, "GET", "/api/lookup?q=jane", "")
	rec = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "namelink_lookup_total")
	assert.Contains(t, rec.Body.String(), "namelink_http_requests_total")
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.APIKey = "secret"
	h := testServer(t, cfg, nil)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, "GET", "/api/stats", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/api/stats", "", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/health", "").Code, "health is not behind the key")
}

func TestRunEndpoints(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	tracker := audit.NewTracker(conn)
	require.NoError(t, tracker.EnsureSchema(context.Background()))

	runID, err := tracker.RecordRun(context.Background(), false, audit.RunInfo{QuerySource: "q.csv"}, &match.Outcome{
		Queries: 1,
		Matched: []match.Candidate{{QueryID: "r1", CandidateID: "p2", NameScore: 1, UniquenessScore: 1, CityScore: 1, BirthScore: 1, Method: "exact"}},
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Features.RunsEnabled = true
	h := testServer(t, cfg, tracker)

	rec := do(t, h, "GET", "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), runID)

	rec = do(t, h, "GET", "/api/runs/"+runID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matched":1`)

	rec = do(t, h, "GET", "/api/runs/"+runID+"/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"candidate_id":"p2"`)

	rec = do(t, h, "GET", "/api/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
