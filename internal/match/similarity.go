package match

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// Metric selects the string similarity function
type Metric string

const (
	MetricRatio       Metric = "ratio"
	MetricLevenshtein Metric = "levenshtein"
	MetricJaroWinkler Metric = "jaro_winkler"
)

// DefaultAcceptanceFloor is the similarity a fuzzy name match must exceed
// before it is trusted during resolution.
const DefaultAcceptanceFloor = 0.80

// SimilarityFunc returns a symmetric similarity in [0,1]
type SimilarityFunc func(a, b string) float64

// SimilarityFor returns the function implementing m.
func SimilarityFor(m Metric) (SimilarityFunc, error) {
	switch m {
	case MetricRatio, "":
		return Ratio, nil
	case MetricLevenshtein:
		return LevenshteinRatio, nil
	case MetricJaroWinkler:
		return JaroWinkler, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", m)
	}
}

// Ratio is the indel similarity 2*LCS/(len(a)+len(b)) over runes, rounded to
// whole percent. One insertion or deletion in a ten character name still
// scores 0.95.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	lcs := matchr.LongestCommonSubsequence(a, b)
	return roundPercent(2 * float64(lcs) / float64(total))
}

// LevenshteinRatio is 1 - distance/longest over runes, rounded to whole percent.
func LevenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	d := levenshtein.ComputeDistance(a, b)
	return roundPercent(1 - float64(d)/float64(longest))
}

// JaroWinkler is the Jaro-Winkler similarity with the standard prefix boost.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return roundPercent(matchr.JaroWinkler(a, b, false))
}

// roundPercent rounds to whole percent, halves to even.
func roundPercent(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// SimilarityScorer picks the best candidate name for a query name
type SimilarityScorer struct {
	sim   SimilarityFunc
	floor float64
}

// NewSimilarityScorer creates a scorer for metric with the given acceptance floor
func NewSimilarityScorer(metric Metric, floor float64) (*SimilarityScorer, error) {
	sim, err := SimilarityFor(metric)
	if err != nil {
		return nil, err
	}
	return &SimilarityScorer{sim: sim, floor: floor}, nil
}

// Score returns the similarity of a and b.
func (s *SimilarityScorer) Score(a, b string) float64 {
	return s.sim(a, b)
}

// BestMatch returns the highest scoring candidate. Only a strictly higher
// score replaces the current best, so the earliest of tied candidates wins.
// With no candidate scoring above zero the result is (0, "").
func (s *SimilarityScorer) BestMatch(query string, candidates []string) (float64, string) {
	bestScore, bestName := 0.0, ""
	for _, cand := range candidates {
		if score := s.sim(query, cand); score > bestScore {
			bestScore = score
			bestName = cand
		}
	}
	return bestScore, bestName
}

// ResolveMatch is BestMatch with the acceptance floor applied: a best score
// at or below the floor is reported as 0. The best name is still returned.
func (s *SimilarityScorer) ResolveMatch(query string, candidates []string) (float64, string) {
	score, name := s.BestMatch(query, candidates)
	if score <= s.floor {
		return 0, name
	}
	return score, name
}

// Floor returns the acceptance floor.
func (s *SimilarityScorer) Floor() float64 {
	return s.floor
}
