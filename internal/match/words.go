package match

import (
	"sort"
	"time"

	"github.com/namelink/internal/index"
)

// DefaultProbe is the word scanned against the whole list for the naive timing.
const DefaultProbe = "pronounciation"

// WordPair is a known misspelling and its correct spelling
type WordPair struct {
	Correct     string
	Misspelling string
}

// WordResult is the best match found for one misspelling
type WordResult struct {
	Misspelling string  `json:"misspelling"`
	Correct     string  `json:"correct"`
	Best        string  `json:"best"`
	Ratio       float64 `json:"ratio"`
}

// WordReport holds per-word results sorted by ratio, best first, and the
// naive-versus-blocked timing comparison.
type WordReport struct {
	Results    []WordResult  `json:"results"`
	Naive      time.Duration `json:"naive"`
	AvgBlocked time.Duration `json:"avg_blocked"`
	Speedup    float64       `json:"speedup"`
}

// WordMatcher finds approximate matches for single words in a large list
type WordMatcher struct {
	words     []string
	generator *Generator
	scorer    *SimilarityScorer
}

// NewWordMatcher sorts a copy of words, indexes it and scores with metric.
func NewWordMatcher(words []string, width int, metric Metric) (*WordMatcher, error) {
	scorer, err := NewSimilarityScorer(metric, 0)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), words...)
	sort.Strings(sorted)

	return &WordMatcher{
		words:     sorted,
		generator: NewGenerator(index.Build(sorted), sorted, width),
		scorer:    scorer,
	}, nil
}

// Match returns the best word in the block around word. No floor is applied.
func (wm *WordMatcher) Match(word string) (float64, string) {
	return wm.scorer.BestMatch(word, wm.generator.Block(false, word))
}

// Naive scores probe against every word and reports how long that took.
func (wm *WordMatcher) Naive(probe string) time.Duration {
	start := time.Now()
	for _, w := range wm.words {
		wm.scorer.Score(probe, w)
	}
	return time.Since(start)
}

// Run matches every pair and times the blocked lookups against a naive scan
// of probe.
func (wm *WordMatcher) Run(pairs []WordPair, probe string) WordReport {
	report := WordReport{Naive: wm.Naive(probe)}
	if len(pairs) == 0 {
		return report
	}

	start := time.Now()
	for _, p := range pairs {
		ratio, best := wm.Match(p.Misspelling)
		report.Results = append(report.Results, WordResult{
			Misspelling: p.Misspelling,
			Correct:     p.Correct,
			Best:        best,
			Ratio:       ratio,
		})
	}
	report.AvgBlocked = time.Since(start) / time.Duration(len(pairs))

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].Ratio > report.Results[j].Ratio
	})

	if report.AvgBlocked > 0 {
		report.Speedup = float64(report.Naive) / float64(report.AvgBlocked)
	}
	return report
}
