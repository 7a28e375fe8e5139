package match

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/namelink/internal/debug"
	"github.com/namelink/internal/index"
)

// Engine resolves query records against a reference corpus
type Engine struct {
	corpus          *Corpus
	index           *index.PrefixIndex
	resolver        *Generator
	lookup          *Generator
	similarity      *SimilarityScorer
	featureComputer *FeatureComputer
	scorer          *Scorer
	config          EngineConfig
}

// EngineConfig holds configuration for the resolution engine
type EngineConfig struct {
	ResolutionWindow int
	LookupWindow     int
	Metric           Metric
	AcceptanceFloor  float64
	Tiers            *MatchTiers
	Birth            BirthWindow
	Workers          int
	Debug            bool
}

// DefaultEngineConfig returns the standard operating point
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ResolutionWindow: ResolutionWindow,
		LookupWindow:     LookupWindow,
		Metric:           MetricRatio,
		AcceptanceFloor:  DefaultAcceptanceFloor,
		Tiers:            DefaultTiers(),
		Birth:            DefaultBirthWindow(),
		Workers:          runtime.NumCPU(),
	}
}

// NewEngine builds the prefix index over the corpus once and wires the
// scoring components.
func NewEngine(corpus *Corpus, config EngineConfig) (*Engine, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	if config.Tiers == nil {
		config.Tiers = DefaultTiers()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	similarity, err := NewSimilarityScorer(config.Metric, config.AcceptanceFloor)
	if err != nil {
		return nil, err
	}

	done := debug.DebugTiming(config.Debug, "build prefix index")
	idx := index.Build(corpus.Names())
	done()
	debug.DebugOutput(config.Debug, "Indexed %d names into %d nodes", idx.Len(), idx.NodeCount())

	return &Engine{
		corpus:          corpus,
		index:           idx,
		resolver:        NewGenerator(idx, corpus.Names(), config.ResolutionWindow),
		lookup:          NewGenerator(idx, corpus.Names(), config.LookupWindow),
		similarity:      similarity,
		featureComputer: NewFeatureComputer(config.Birth),
		scorer:          NewScorerWithConfig(config.Tiers),
		config:          config,
	}, nil
}

// nameResult is the resolution of one distinct query name, shared by every
// query record carrying it.
type nameResult struct {
	state     State
	matched   string
	nameScore float64
	method    string
}

// Resolve runs every query through exact or fuzzy name resolution, feature
// scoring and classification. Matched and ambiguous rows come back in query
// input order; the worker count never changes the result.
func (e *Engine) Resolve(ctx context.Context, queries []Record) (*Outcome, error) {
	localDebug := e.config.Debug
	debug.DebugHeader(localDebug)
	defer debug.DebugFooter(localDebug)
	defer debug.DebugTiming(localDebug, fmt.Sprintf("resolve %d queries", len(queries)))()

	// Distinct names in first-seen order
	var names []string
	seen := make(map[string]int)
	for _, q := range queries {
		if _, ok := seen[q.Name]; !ok {
			seen[q.Name] = len(names)
			names = append(names, q.Name)
		}
	}

	results, err := e.resolveNames(ctx, names)
	if err != nil {
		return nil, err
	}

	// Candidates per query
	perQuery := make([][]Candidate, len(queries))
	for i, q := range queries {
		q.Kind = KindQuery
		perQuery[i] = e.candidatesFor(localDebug, q, results[seen[q.Name]])
	}

	// Second pass: uniqueness counts distinct query ids that produced
	// candidates under each query name
	ids := make(map[string]map[string]struct{})
	for i, q := range queries {
		if len(perQuery[i]) == 0 {
			continue
		}
		if ids[q.Name] == nil {
			ids[q.Name] = make(map[string]struct{})
		}
		ids[q.Name][q.ID] = struct{}{}
	}

	outcome := &Outcome{Queries: len(queries)}
	for i, q := range queries {
		res := results[seen[q.Name]]
		resolution := Resolution{
			QueryID:    q.ID,
			QueryName:  q.Name,
			Resolved:   res.state,
			Final:      StateUnmatched,
			Candidates: len(perQuery[i]),
		}

		uniqueness := UniquenessScore(len(ids[q.Name]))
		for j := range perQuery[i] {
			perQuery[i][j].UniquenessScore = uniqueness
		}

		if best, ok := e.scorer.SelectFirst(localDebug, perQuery[i]); ok {
			resolution.Best = &best
			switch e.scorer.Classify(best.Total()) {
			case TierMatched:
				resolution.Final = StateMatched
				outcome.Matched = append(outcome.Matched, best)
			case TierAmbiguous:
				resolution.Final = StateAmbiguous
				outcome.Ambiguous = append(outcome.Ambiguous, best)
			default:
				resolution.Final = StateDiscarded
			}
		}
		outcome.Resolutions = append(outcome.Resolutions, resolution)
	}

	debug.DebugOutput(localDebug, "Resolved %d queries: %d matched, %d ambiguous",
		len(queries), len(outcome.Matched), len(outcome.Ambiguous))
	return outcome, nil
}

// ResolveOne resolves a single query on its own, so its uniqueness is 1.
func (e *Engine) ResolveOne(ctx context.Context, query Record) (Resolution, error) {
	outcome, err := e.Resolve(ctx, []Record{query})
	if err != nil {
		return Resolution{}, err
	}
	return outcome.Resolutions[0], nil
}

// resolveNames fans distinct names out to a bounded pool of workers. Each
// worker writes only its own slots of the result slice.
func (e *Engine) resolveNames(ctx context.Context, names []string) ([]nameResult, error) {
	results := make([]nameResult, len(names))

	workers := e.config.Workers
	if workers > len(names) {
		workers = len(names)
	}

	jobs := make(chan int, len(names))
	for i := range names {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				results[i] = e.resolveName(e.config.Debug, names[i])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("resolution cancelled: %w", err)
	}
	return results, nil
}

// resolveName decides how a query name maps onto the corpus. An exact key
// always wins, even if some other corpus name would score higher.
func (e *Engine) resolveName(localDebug bool, name string) nameResult {
	if name == "" {
		return nameResult{state: StateUnmatched}
	}
	if e.corpus.Has(name) {
		return nameResult{state: StateExact, matched: name, nameScore: 1.0, method: methodExact}
	}

	block := e.resolver.Block(localDebug, name)
	score, best := e.similarity.ResolveMatch(name, block)
	if score == 0 || best == "" {
		debug.DebugOutput(localDebug, "No fuzzy match for %q (best %q, floor %.2f)", name, best, e.similarity.Floor())
		return nameResult{state: StateUnmatched}
	}

	debug.DebugOutput(localDebug, "Fuzzy match %q -> %q (%.2f)", name, best, score)
	return nameResult{state: StateFuzzy, matched: best, nameScore: score, method: methodFuzzy}
}

// candidatesFor scores query against every identity under its resolved name.
func (e *Engine) candidatesFor(localDebug bool, query Record, res nameResult) []Candidate {
	if res.state != StateExact && res.state != StateFuzzy {
		return nil
	}
	refs := e.corpus.Records(res.matched)
	cands := make([]Candidate, 0, len(refs))
	for _, ref := range refs {
		cands = append(cands, e.featureComputer.ComputeFeatures(localDebug, query, ref, res.nameScore, res.method))
	}
	return cands
}

// LookupResult is a reporting-mode best match for a single word
type LookupResult struct {
	Query  string  `json:"query"`
	Best   string  `json:"best"`
	Score  float64 `json:"score"`
	Window int     `json:"window"`
	Exact  bool    `json:"exact"`
}

// Lookup returns the raw best match for word within the narrow lookup
// window. No acceptance floor is applied.
func (e *Engine) Lookup(word string) LookupResult {
	block := e.lookup.Block(e.config.Debug, word)
	score, best := e.similarity.BestMatch(word, block)
	return LookupResult{
		Query:  word,
		Best:   best,
		Score:  score,
		Window: len(block),
		Exact:  e.index.Contains(word) && e.corpus.Has(word),
	}
}

// Stats summarises an outcome. Percentages are over all queries.
func (e *Engine) Stats(outcome *Outcome) BatchStats {
	return CalculateStats(outcome)
}

// CalculateStats summarises an outcome without needing an engine.
func CalculateStats(outcome *Outcome) BatchStats {
	stats := BatchStats{Queries: outcome.Queries}
	for _, r := range outcome.Resolutions {
		switch r.Resolved {
		case StateExact:
			stats.Exact++
		case StateFuzzy:
			stats.Fuzzy++
		default:
			stats.Unmatched++
		}
		if r.Final == StateDiscarded {
			stats.Discarded++
		}
	}
	stats.Matched = len(outcome.Matched)
	stats.Ambiguous = len(outcome.Ambiguous)

	if stats.Queries > 0 {
		stats.MatchedPct = 100 * float64(stats.Matched) / float64(stats.Queries)
		stats.AmbiguousPct = 100 * float64(stats.Ambiguous) / float64(stats.Queries)
		stats.CombinedPct = stats.MatchedPct + stats.AmbiguousPct
	}
	return stats
}

// Corpus returns the reference corpus.
func (e *Engine) Corpus() *Corpus {
	return e.corpus
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}
