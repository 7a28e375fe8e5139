package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		total float64
		want  Tier
	}{
		{4.0, TierMatched},
		{3.0, TierMatched},
		{2.99, TierAmbiguous},
		{2.5, TierAmbiguous},
		{2.49, TierRejected},
		{0, TierRejected},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Classify(tt.total), "total %v", tt.total)
	}
}

func TestClassifyIsMonotonicInEachFeature(t *testing.T) {
	s := NewScorer()
	names := []float64{0, 0.81, 0.9, 1}
	uniques := []float64{0.1, 0.25, 0.5, 1}
	binary := []float64{0, 1}
	births := []float64{0, 0.5, 1}

	tier := func(c Candidate) int { return int(s.Classify(c.Total())) }

	for _, n := range names {
		for _, u := range uniques {
			for _, c := range binary {
				for _, b := range births {
					base := Candidate{NameScore: n, UniquenessScore: u, CityScore: c, BirthScore: b}

					up := base
					up.NameScore = 1
					assert.GreaterOrEqual(t, tier(up), tier(base))

					up = base
					up.UniquenessScore = 1
					assert.GreaterOrEqual(t, tier(up), tier(base))

					up = base
					up.CityScore = 1
					assert.GreaterOrEqual(t, tier(up), tier(base))

					up = base
					up.BirthScore = 1
					assert.GreaterOrEqual(t, tier(up), tier(base))
				}
			}
		}
	}
}

func TestSelectFirst(t *testing.T) {
	s := NewScorer()

	_, ok := s.SelectFirst(false, nil)
	assert.False(t, ok)

	got, ok := s.SelectFirst(false, []Candidate{
		{CandidateID: "a", NameScore: 1, CityScore: 0},
		{CandidateID: "b", NameScore: 1, CityScore: 1},
		{CandidateID: "c", NameScore: 1, CityScore: 1},
	})
	assert.True(t, ok)
	assert.Equal(t, "a", got.CandidateID, "a higher total later in load order does not win")
}

func TestCustomTiers(t *testing.T) {
	s := NewScorerWithConfig(&MatchTiers{Matched: 3.5, Ambiguous: 3.0})

	assert.Equal(t, TierAmbiguous, s.Classify(3.2))
	assert.Equal(t, TierRejected, s.Classify(2.9))
	assert.Equal(t, 3.5, s.Tiers().Matched)
	assert.Equal(t, "ambiguous", TierAmbiguous.String())
}
