package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelink/internal/match"
)

func sampleOutcome() *match.Outcome {
	return &match.Outcome{
		Queries: 4,
		Matched: []match.Candidate{
			{QueryID: "r1", CandidateID: "p2", QueryName: "jon smith", CandidateName: "john smith",
				NameScore: 0.95, UniquenessScore: 1, CityScore: 1, BirthScore: 1},
		},
		Ambiguous: []match.Candidate{
			{QueryID: "r2", CandidateID: "p1", QueryName: "jane doe", CandidateName: "jane doe",
				NameScore: 1, UniquenessScore: 0.5, CityScore: 0, BirthScore: 1},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := NewExporter(dir, true).WriteCSV(sampleOutcome())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dir, MatchesFile))
	require.NoError(t, err)
	assert.Equal(t,
		"query_id,candidate_identity_id,query_name,candidate_name,name_score,uniqueness_score,city_score,birth_score\n"+
			"r1,p2,jon smith,john smith,0.95,1,1,1\n",
		string(data))

	data, err = os.ReadFile(filepath.Join(dir, AmbiguousFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "r2,p1,jane doe,jane doe,1,0.5,0,1\n")
}

func TestWriteCSVWithNoRowsKeepsHeader(t *testing.T) {
	dir := t.TempDir()
	_, err := NewExporter(dir, true).WriteCSV(&match.Outcome{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, AmbiguousFile))
	require.NoError(t, err)
	assert.Equal(t, "query_id,candidate_identity_id,query_name,candidate_name,name_score,uniqueness_score,city_score,birth_score\n", string(data))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	stats := match.CalculateStats(sampleOutcome())

	NewExporter(t.TempDir(), true).PrintSummary(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "clear matches = 25.00%")
	assert.Contains(t, out, "ambiguous matches = 25.00%")
	assert.Contains(t, out, "clear + ambiguous matches = 50.00%")
}
