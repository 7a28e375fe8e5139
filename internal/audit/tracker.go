package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/namelink/internal/db"
	"github.com/namelink/internal/debug"
	"github.com/namelink/internal/match"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Inserts are chunked to stay under SQLite's bound-parameter limit.
const insertBatchSize = 500

var resultColumns = []string{
	"run_id", "seq", "tier", "query_id", "candidate_id", "query_name", "candidate_name",
	"name_score", "uniqueness_score", "city_score", "birth_score", "method",
}

// Tracker persists resolution runs and their reported rows
type Tracker struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

// NewTracker creates a new audit tracker
func NewTracker(conn *db.Connection) *Tracker {
	return &Tracker{db: conn.DB, flavor: conn.Flavor()}
}

// Run is one stored resolution run
type Run struct {
	ID              string    `db:"id" json:"id"`
	StartedAt       time.Time `db:"started_at" json:"started_at"`
	ReferenceSource string    `db:"reference_source" json:"reference_source"`
	QuerySource     string    `db:"query_source" json:"query_source"`
	References      int       `db:"reference_count" json:"references"`
	Queries         int       `db:"query_count" json:"queries"`
	Matched         int       `db:"matched_count" json:"matched"`
	Ambiguous       int       `db:"ambiguous_count" json:"ambiguous"`
	CacheKey        string    `db:"cache_key" json:"cache_key"`
	Settings        string    `db:"settings" json:"settings"`
}

// RunInfo describes a run about to be recorded
type RunInfo struct {
	ReferenceSource string
	QuerySource     string
	References      int
	CacheKey        string
	Config          match.EngineConfig
}

// ResultRow is one stored matched or ambiguous row
type ResultRow struct {
	RunID           string  `db:"run_id" json:"run_id"`
	Seq             int     `db:"seq" json:"seq"`
	Tier            string  `db:"tier" json:"tier"`
	QueryID         string  `db:"query_id" json:"query_id"`
	CandidateID     string  `db:"candidate_id" json:"candidate_id"`
	QueryName       string  `db:"query_name" json:"query_name"`
	CandidateName   string  `db:"candidate_name" json:"candidate_name"`
	NameScore       float64 `db:"name_score" json:"name_score"`
	UniquenessScore float64 `db:"uniqueness_score" json:"uniqueness_score"`
	CityScore       float64 `db:"city_score" json:"city_score"`
	BirthScore      float64 `db:"birth_score" json:"birth_score"`
	Method          string  `db:"method" json:"method"`
}

// Candidate converts the row back into a match candidate.
func (r ResultRow) Candidate() match.Candidate {
	return match.Candidate{
		QueryID:         r.QueryID,
		CandidateID:     r.CandidateID,
		QueryName:       r.QueryName,
		CandidateName:   r.CandidateName,
		NameScore:       r.NameScore,
		UniquenessScore: r.UniquenessScore,
		CityScore:       r.CityScore,
		BirthScore:      r.BirthScore,
		Method:          r.Method,
	}
}

// RunStats breaks a stored run down by tier and name method
type RunStats struct {
	RunID    string         `json:"run_id"`
	ByTier   map[string]int `json:"by_tier"`
	ByMethod map[string]int `json:"by_method"`
	AvgTotal float64        `json:"avg_total"`
}

// EnsureSchema creates the run tables if they do not exist.
func (t *Tracker) EnsureSchema(ctx context.Context) error {
	runs := t.flavor.NewCreateTableBuilder()
	runs.CreateTable("match_run").IfNotExists()
	runs.Define("id", "TEXT", "PRIMARY KEY")
	runs.Define("started_at", "TIMESTAMP", "NOT NULL")
	runs.Define("reference_source", "TEXT", "NOT NULL")
	runs.Define("query_source", "TEXT", "NOT NULL")
	runs.Define("reference_count", "INTEGER", "NOT NULL")
	runs.Define("query_count", "INTEGER", "NOT NULL")
	runs.Define("matched_count", "INTEGER", "NOT NULL")
	runs.Define("ambiguous_count", "INTEGER", "NOT NULL")
	runs.Define("cache_key", "TEXT", "NOT NULL")
	runs.Define("settings", "TEXT", "NOT NULL")

	results := t.flavor.NewCreateTableBuilder()
	results.CreateTable("match_result").IfNotExists()
	results.Define("run_id", "TEXT", "NOT NULL", "REFERENCES match_run(id)")
	results.Define("seq", "INTEGER", "NOT NULL")
	results.Define("tier", "TEXT", "NOT NULL")
	results.Define("query_id", "TEXT", "NOT NULL")
	results.Define("candidate_id", "TEXT", "NOT NULL")
	results.Define("query_name", "TEXT", "NOT NULL")
	results.Define("candidate_name", "TEXT", "NOT NULL")
	results.Define("name_score", "DOUBLE PRECISION", "NOT NULL")
	results.Define("uniqueness_score", "DOUBLE PRECISION", "NOT NULL")
	results.Define("city_score", "DOUBLE PRECISION", "NOT NULL")
	results.Define("birth_score", "DOUBLE PRECISION", "NOT NULL")
	results.Define("method", "TEXT", "NOT NULL")
	results.Define("PRIMARY KEY (run_id, seq)")

	for _, ctb := range []*sqlbuilder.CreateTableBuilder{runs, results} {
		query, args := ctb.Build()
		if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// RecordRun stores a run summary and every matched and ambiguous row in one
// transaction. The new run id is returned.
func (t *Tracker) RecordRun(ctx context.Context, localDebug bool, info RunInfo, outcome *match.Outcome) (string, error) {
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)

	settings, err := json.Marshal(info.Config)
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}

	run := Run{
		ID:              uuid.New().String(),
		StartedAt:       time.Now().UTC(),
		ReferenceSource: info.ReferenceSource,
		QuerySource:     info.QuerySource,
		References:      info.References,
		Queries:         outcome.Queries,
		Matched:         len(outcome.Matched),
		Ambiguous:       len(outcome.Ambiguous),
		CacheKey:        info.CacheKey,
		Settings:        string(settings),
	}

	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ib := t.flavor.NewInsertBuilder()
	ib.InsertInto("match_run")
	ib.Cols("id", "started_at", "reference_source", "query_source", "reference_count",
		"query_count", "matched_count", "ambiguous_count", "cache_key", "settings")
	ib.Values(run.ID, run.StartedAt, run.ReferenceSource, run.QuerySource, run.References,
		run.Queries, run.Matched, run.Ambiguous, run.CacheKey, run.Settings)

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	rows := make([]ResultRow, 0, len(outcome.Matched)+len(outcome.Ambiguous))
	for _, c := range outcome.Matched {
		rows = append(rows, newResultRow(run.ID, len(rows), match.TierMatched, c))
	}
	for _, c := range outcome.Ambiguous {
		rows = append(rows, newResultRow(run.ID, len(rows), match.TierAmbiguous, c))
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		ib := t.flavor.NewInsertBuilder()
		ib.InsertInto("match_result")
		ib.Cols(resultColumns...)
		for _, r := range rows[start:end] {
			ib.Values(r.RunID, r.Seq, r.Tier, r.QueryID, r.CandidateID, r.QueryName, r.CandidateName,
				r.NameScore, r.UniquenessScore, r.CityScore, r.BirthScore, r.Method)
		}

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return "", fmt.Errorf("failed to insert results: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	debug.DebugOutput(localDebug, "Recorded run %s with %d result rows", run.ID, len(rows))
	return run.ID, nil
}

func newResultRow(runID string, seq int, tier match.Tier, c match.Candidate) ResultRow {
	return ResultRow{
		RunID:           runID,
		Seq:             seq,
		Tier:            tier.String(),
		QueryID:         c.QueryID,
		CandidateID:     c.CandidateID,
		QueryName:       c.QueryName,
		CandidateName:   c.CandidateName,
		NameScore:       c.NameScore,
		UniquenessScore: c.UniquenessScore,
		CityScore:       c.CityScore,
		BirthScore:      c.BirthScore,
		Method:          c.Method,
	}
}

// ListRuns returns the most recent runs first.
func (t *Tracker) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 || limit > 500 {
		limit = 50
	}

	sb := t.flavor.NewSelectBuilder()
	sb.Select("id", "started_at", "reference_source", "query_source", "reference_count",
		"query_count", "matched_count", "ambiguous_count", "cache_key", "settings")
	sb.From("match_run")
	sb.OrderBy("started_at DESC", "id")
	sb.Limit(limit)

	query, args := sb.Build()
	var runs []Run
	if err := t.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run.
func (t *Tracker) GetRun(ctx context.Context, runID string) (*Run, error) {
	sb := t.flavor.NewSelectBuilder()
	sb.Select("id", "started_at", "reference_source", "query_source", "reference_count",
		"query_count", "matched_count", "ambiguous_count", "cache_key", "settings")
	sb.From("match_run")
	sb.Where(sb.Equal("id", runID))

	query, args := sb.Build()
	var run Run
	if err := t.db.GetContext(ctx, &run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// Results returns the stored rows of a run, matched rows first, each tier in
// query input order.
func (t *Tracker) Results(ctx context.Context, runID string) ([]ResultRow, error) {
	sb := t.flavor.NewSelectBuilder()
	sb.Select(resultColumns...)
	sb.From("match_result")
	sb.Where(sb.Equal("run_id", runID))
	sb.OrderBy("seq")

	query, args := sb.Build()
	var rows []ResultRow
	if err := t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return rows, nil
}

// Outcome rebuilds the matched and ambiguous partitions of a stored run.
// Per-query resolutions are not stored.
func (t *Tracker) Outcome(ctx context.Context, runID string) (*match.Outcome, error) {
	run, err := t.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := t.Results(ctx, runID)
	if err != nil {
		return nil, err
	}

	outcome := &match.Outcome{Queries: run.Queries}
	for _, r := range rows {
		if r.Tier == match.TierMatched.String() {
			outcome.Matched = append(outcome.Matched, r.Candidate())
		} else {
			outcome.Ambiguous = append(outcome.Ambiguous, r.Candidate())
		}
	}
	return outcome, nil
}

// GetRunStats summarises a stored run by tier and method.
func (t *Tracker) GetRunStats(ctx context.Context, runID string) (*RunStats, error) {
	stats := &RunStats{
		RunID:    runID,
		ByTier:   make(map[string]int),
		ByMethod: make(map[string]int),
	}

	sb := t.flavor.NewSelectBuilder()
	sb.Select("tier", "method", "COUNT(*) AS n",
		"SUM(name_score + uniqueness_score + city_score + birth_score) AS total")
	sb.From("match_result")
	sb.Where(sb.Equal("run_id", runID))
	sb.GroupBy("tier", "method")

	query, args := sb.Build()
	rows, err := t.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get run statistics: %w", err)
	}
	defer rows.Close()

	var count int
	var sum float64
	for rows.Next() {
		var tier, method string
		var n int
		var total float64
		if err := rows.Scan(&tier, &method, &n, &total); err != nil {
			return nil, fmt.Errorf("failed to scan run statistics: %w", err)
		}
		stats.ByTier[tier] += n
		stats.ByMethod[method] += n
		count += n
		sum += total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if count > 0 {
		stats.AvgTotal = sum / float64(count)
	}
	return stats, nil
}
