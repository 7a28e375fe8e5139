package match

// Kind tags which side of the linkage a record comes from.
type Kind int

const (
	// KindReference records carry a confirmed birth year.
	KindReference Kind = iota
	// KindQuery records carry an estimated birth year.
	KindQuery
)

func (k Kind) String() string {
	if k == KindQuery {
		return "query"
	}
	return "reference"
}

// Record is a normalized person record from either source
type Record struct {
	ID        string
	Name      string // canonical name, the matching key
	City      string
	BirthYear *int // confirmed for references, estimated for queries
	Kind      Kind
}

// Candidate is one scored (query, reference identity) pair
type Candidate struct {
	QueryID         string  `json:"query_id"`
	CandidateID     string  `json:"candidate_id"`
	QueryName       string  `json:"query_name"`
	CandidateName   string  `json:"candidate_name"`
	NameScore       float64 `json:"name_score"`
	UniquenessScore float64 `json:"uniqueness_score"`
	CityScore       float64 `json:"city_score"`
	BirthScore      float64 `json:"birth_score"`
	Method          string  `json:"method"` // "exact" | "fuzzy"
}

// Total sums the four feature scores.
func (c Candidate) Total() float64 {
	return c.NameScore + c.UniquenessScore + c.CityScore + c.BirthScore
}

// Tier is the classification of a candidate's total score
type Tier int

const (
	TierRejected Tier = iota
	TierAmbiguous
	TierMatched
)

func (t Tier) String() string {
	switch t {
	case TierMatched:
		return "matched"
	case TierAmbiguous:
		return "ambiguous"
	default:
		return "rejected"
	}
}

// MatchTiers defines the classification thresholds on the total score
type MatchTiers struct {
	Matched   float64 `yaml:"matched" validate:"gtfield=Ambiguous"`
	Ambiguous float64 `yaml:"ambiguous" validate:"gte=0"`
}

// DefaultTiers returns the recommended tier thresholds
func DefaultTiers() *MatchTiers {
	return &MatchTiers{
		Matched:   3.0,
		Ambiguous: 2.5,
	}
}

// BirthWindow is the accepted range of confirmed minus estimated birth year.
// Estimates are biased early, so the range is one-sided.
type BirthWindow struct {
	Min int `yaml:"min"`
	Max int `yaml:"max" validate:"gtefield=Min"`
}

// DefaultBirthWindow returns the inclusive [0, 12] window.
func DefaultBirthWindow() BirthWindow {
	return BirthWindow{Min: 0, Max: 12}
}

// State tracks a query record through resolution and classification
type State string

const (
	StateUnresolved State = "unresolved"
	StateExact      State = "exact"
	StateFuzzy      State = "fuzzy"
	StateUnmatched  State = "unmatched"
	StateMatched    State = "matched"
	StateAmbiguous  State = "ambiguous"
	StateDiscarded  State = "discarded"
)

// Resolution records where a single query ended up
type Resolution struct {
	QueryID    string     `json:"query_id"`
	QueryName  string     `json:"query_name"`
	Resolved   State      `json:"resolved"` // exact | fuzzy | unmatched
	Final      State      `json:"final"`    // matched | ambiguous | discarded | unmatched
	Best       *Candidate `json:"best,omitempty"`
	Candidates int        `json:"candidates"`
}

// Outcome is the partitioned result of a resolution run
type Outcome struct {
	Matched     []Candidate  `json:"matched"`
	Ambiguous   []Candidate  `json:"ambiguous"`
	Resolutions []Resolution `json:"resolutions"`
	Queries     int          `json:"queries"`
}

// BatchStats summarises an outcome
type BatchStats struct {
	Queries      int     `json:"queries"`
	Exact        int     `json:"exact"`
	Fuzzy        int     `json:"fuzzy"`
	Unmatched    int     `json:"unmatched"`
	Matched      int     `json:"matched"`
	Ambiguous    int     `json:"ambiguous"`
	Discarded    int     `json:"discarded"`
	MatchedPct   float64 `json:"matched_pct"`
	AmbiguousPct float64 `json:"ambiguous_pct"`
	CombinedPct  float64 `json:"combined_pct"`
}
