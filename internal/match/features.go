package match

import (
	"github.com/namelink/internal/debug"
	"github.com/namelink/internal/normalize"
)

const (
	methodExact = "exact"
	methodFuzzy = "fuzzy"
)

// NeutralBirthScore is used when either side lacks a birth year.
const NeutralBirthScore = 0.5

// FeatureComputer scores a (query, reference) pair on each feature
type FeatureComputer struct {
	birth BirthWindow
}

// NewFeatureComputer creates a feature computer with the given birth window
func NewFeatureComputer(birth BirthWindow) *FeatureComputer {
	return &FeatureComputer{birth: birth}
}

// ComputeFeatures builds the candidate for query against ref. nameScore is 1
// for an exact name hit or the accepted fuzzy similarity. Uniqueness is
// filled in later, once all queries are resolved.
func (fc *FeatureComputer) ComputeFeatures(localDebug bool, query, ref Record, nameScore float64, method string) Candidate {
	cand := Candidate{
		QueryID:       query.ID,
		CandidateID:   ref.ID,
		QueryName:     query.Name,
		CandidateName: ref.Name,
		NameScore:     nameScore,
		CityScore:     CityScore(query.City, ref.City),
		BirthScore:    fc.BirthScore(query.BirthYear, ref.BirthYear),
		Method:        method,
	}

	debug.DebugOutput(localDebug, "Features %s -> %s: name=%.2f city=%.0f birth=%.1f (%s)",
		cand.QueryID, cand.CandidateID, cand.NameScore, cand.CityScore, cand.BirthScore, method)
	return cand
}

// CityScore is 1 when both cities normalize to the same non-empty string.
// There is no partial credit and a missing city is a mismatch.
func CityScore(queryCity, refCity string) float64 {
	q := normalize.City(queryCity)
	if q == "" {
		return 0
	}
	if q == normalize.City(refCity) {
		return 1
	}
	return 0
}

// BirthScore compares an estimated birth year with a confirmed one. It is 1
// when confirmed-estimate falls inside the window, 0 outside it, and neutral
// when either year is missing.
func (fc *FeatureComputer) BirthScore(estimate, confirmed *int) float64 {
	if estimate == nil || confirmed == nil {
		return NeutralBirthScore
	}
	diff := *confirmed - *estimate
	if diff >= fc.birth.Min && diff <= fc.birth.Max {
		return 1
	}
	return 0
}

// UniquenessScore rewards rare query names: 1/count of queries that
// resolved under the same name.
func UniquenessScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	return 1 / float64(count)
}
