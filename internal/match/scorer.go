package match

import (
	"github.com/namelink/internal/debug"
)

// Scorer classifies candidates by their total feature score
type Scorer struct {
	tiers *MatchTiers
}

// NewScorer creates a scorer with default tiers
func NewScorer() *Scorer {
	return &Scorer{tiers: DefaultTiers()}
}

// NewScorerWithConfig creates a scorer with custom tiers
func NewScorerWithConfig(tiers *MatchTiers) *Scorer {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &Scorer{tiers: tiers}
}

// Classify maps a total score onto a tier. Anything under the ambiguous
// threshold is rejected and never reported.
func (s *Scorer) Classify(total float64) Tier {
	switch {
	case total >= s.tiers.Matched:
		return TierMatched
	case total >= s.tiers.Ambiguous:
		return TierAmbiguous
	default:
		return TierRejected
	}
}

// SelectFirst returns the candidate reported for a query: the first identity
// in corpus load order under the resolved name. Later identities sharing the
// name are scored but never replace it, even with a higher total.
func (s *Scorer) SelectFirst(localDebug bool, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	first := candidates[0]
	debug.DebugOutput(localDebug, "Reporting first of %d candidates for %s: %s total=%.3f",
		len(candidates), first.QueryID, first.CandidateID, first.Total())
	return first, true
}

// Tiers returns the thresholds in use.
func (s *Scorer) Tiers() MatchTiers {
	return *s.tiers
}
