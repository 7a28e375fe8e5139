package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelink/internal/match"
)

func year(y int) *int {
	return &y
}

func records() ([]match.Record, []match.Record) {
	refs := []match.Record{
		{ID: "p1", Name: "jane doe", City: "Boston", BirthYear: year(1975)},
		{ID: "p2", Name: "john smith", City: "Denver", BirthYear: year(1985)},
	}
	queries := []match.Record{
		{ID: "r1", Name: "jon smith", City: "Denver", BirthYear: year(1980), Kind: match.KindQuery},
	}
	return refs, queries
}

func TestKeyTracksContent(t *testing.T) {
	refs, queries := records()
	cfg := match.DefaultEngineConfig()
	base := Key(refs, queries, cfg)

	assert.Len(t, base, 64)
	assert.Equal(t, base, Key(refs, queries, cfg))

	other := cfg
	other.Workers = cfg.Workers + 3
	other.Debug = true
	assert.Equal(t, base, Key(refs, queries, other), "workers and debug do not affect the key")

	other = cfg
	other.AcceptanceFloor = 0.7
	assert.NotEqual(t, base, Key(refs, queries, other))

	changed := append([]match.Record(nil), queries...)
	changed[0].BirthYear = nil
	assert.NotEqual(t, base, Key(refs, changed, cfg))

	assert.NotEqual(t, base, Key(queries, refs, cfg), "sections are not interchangeable")
}

func TestMemoryCache(t *testing.T) {
	c := New("")

	_, err := c.Get("k")
	assert.ErrorIs(t, err, ErrMiss)

	outcome := &match.Outcome{Queries: 2}
	require.NoError(t, c.Put("k", outcome))

	got, err := c.Get("k")
	require.NoError(t, err)
	assert.Same(t, outcome, got)
}

func TestDiskCacheSurvivesRestart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	refs, queries := records()
	key := Key(refs, queries, match.DefaultEngineConfig())

	outcome := &match.Outcome{
		Queries: 1,
		Matched: []match.Candidate{{QueryID: "r1", CandidateID: "p2", NameScore: 0.95, UniquenessScore: 1, CityScore: 1, BirthScore: 1}},
		Resolutions: []match.Resolution{
			{QueryID: "r1", QueryName: "jon smith", Resolved: match.StateFuzzy, Final: match.StateMatched, Candidates: 1},
		},
	}
	require.NoError(t, New(dir).Put(key, outcome))

	got, err := New(dir).Get(key)
	require.NoError(t, err)
	assert.Equal(t, outcome.Matched, got.Matched)
	assert.Equal(t, outcome.Resolutions, got.Resolutions)
	assert.Equal(t, 1, got.Queries)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestBrokenCacheFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	_, err := New(dir).Get("bad")
	assert.ErrorContains(t, err, "cache file broken")
}
