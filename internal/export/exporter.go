package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"

	"github.com/namelink/internal/match"
)

const (
	MatchesFile   = "matches.csv"
	AmbiguousFile = "ambiguous_matches.csv"
)

// Header is the column order of both output files
var Header = []string{
	"query_id", "candidate_identity_id", "query_name", "candidate_name",
	"name_score", "uniqueness_score", "city_score", "birth_score",
}

// Exporter writes resolution outcomes to CSV files and summaries to a terminal
type Exporter struct {
	outputDir string
	colors    map[string]*color.Color
}

// NewExporter creates an exporter writing into outputDir
func NewExporter(outputDir string, noColor bool) *Exporter {
	colors := map[string]*color.Color{
		"title":     color.New(color.FgWhite, color.Bold),
		"matched":   color.New(color.FgGreen),
		"ambiguous": color.New(color.FgYellow),
		"combined":  color.New(color.FgCyan, color.Bold),
		"muted":     color.New(color.FgHiBlack),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &Exporter{outputDir: outputDir, colors: colors}
}

// WriteCSV writes matches.csv and ambiguous_matches.csv. Both files carry the
// header even when they have no rows. The written paths are returned.
func (e *Exporter) WriteCSV(outcome *match.Outcome) ([]string, error) {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, out := range []struct {
		name string
		rows []match.Candidate
	}{
		{MatchesFile, outcome.Matched},
		{AmbiguousFile, outcome.Ambiguous},
	} {
		path := filepath.Join(e.outputDir, out.name)
		if err := writeFile(path, out.rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, rows []match.Candidate) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// WriteRows writes the header and one line per candidate to w.
func WriteRows(w io.Writer, rows []match.Candidate) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, c := range rows {
		if err := writer.Write(Row(c)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Row renders a candidate in Header order. Scores use the shortest exact
// decimal form, so 1.0 prints as "1".
func Row(c match.Candidate) []string {
	return []string{
		c.QueryID,
		c.CandidateID,
		c.QueryName,
		c.CandidateName,
		formatScore(c.NameScore),
		formatScore(c.UniquenessScore),
		formatScore(c.CityScore),
		formatScore(c.BirthScore),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintSummary prints match percentages over all queries.
func (e *Exporter) PrintSummary(w io.Writer, stats match.BatchStats) {
	e.colors["title"].Fprintf(w, "=== Resolution Summary ===\n")
	e.colors["muted"].Fprintf(w, "queries: %d  exact: %d  fuzzy: %d  unmatched: %d  discarded: %d\n",
		stats.Queries, stats.Exact, stats.Fuzzy, stats.Unmatched, stats.Discarded)
	e.colors["matched"].Fprintf(w, "clear matches = %2.2f%%\n", stats.MatchedPct)
	e.colors["ambiguous"].Fprintf(w, "ambiguous matches = %2.2f%%\n", stats.AmbiguousPct)
	e.colors["combined"].Fprintf(w, "clear + ambiguous matches = %2.2f%%\n", stats.CombinedPct)
}
