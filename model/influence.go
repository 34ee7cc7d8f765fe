package model

// InfluenceLevel classifies how close a point sits to a line. Levels are
// ordered: Zenith > Gold > Strong > Moderate > Weak.
type InfluenceLevel int

const (
	LevelWeak InfluenceLevel = iota
	LevelModerate
	LevelStrong
	LevelGold
	LevelZenith
)

func (l InfluenceLevel) String() string {
	switch l {
	case LevelZenith:
		return "zenith"
	case LevelGold:
		return "gold"
	case LevelStrong:
		return "strong"
	case LevelModerate:
		return "moderate"
	case LevelWeak:
		return "weak"
	default:
		return "unknown"
	}
}

// Weight returns the aggregation weight applied to an influence's score
// when folding a location's influences into its aggregate score.
func (l InfluenceLevel) Weight() float64 {
	switch l {
	case LevelZenith:
		return 1.0
	case LevelGold:
		return 0.85
	case LevelStrong:
		return 0.6
	case LevelModerate:
		return 0.35
	default:
		return 0.15
	}
}

// LineInfluence is the result of scoring one line against one point.
// Values are computed fresh per query and never mutated.
type LineInfluence struct {
	Line       Line
	DistanceKm float64
	// DeviationDeg is the angular deviation for local-space lines; zero
	// for every other kind.
	DeviationDeg float64
	Level        InfluenceLevel
	Score        float64
	// FromAnchor reports that the zenith anchor produced the
	// classification; AnchorDistanceKm is then the distance to it.
	FromAnchor       bool
	AnchorDistanceKm float64
}

// QualityTier labels an aggregate score. The same breakpoints must be used
// by any consumer-facing label.
type QualityTier string

const (
	TierExceptional QualityTier = "exceptional"
	TierStrong      QualityTier = "strong"
	TierNotable     QualityTier = "notable"
	TierModerate    QualityTier = "moderate"
	TierMinimal     QualityTier = "minimal"
)

// TierForScore maps an aggregate score to its quality tier.
func TierForScore(score float64) QualityTier {
	switch {
	case score >= 80:
		return TierExceptional
	case score >= 60:
		return TierStrong
	case score >= 40:
		return TierNotable
	case score >= 20:
		return TierModerate
	default:
		return TierMinimal
	}
}

// LocationAnalysis aggregates all line influences for one point.
// Immutable once produced.
type LocationAnalysis struct {
	Coordinate Coordinate
	// Influences are sorted by score descending.
	Influences     []LineInfluence
	AggregateScore float64
	// DominantBodies are the bodies of the top influences, deduplicated,
	// in score-descending order.
	DominantBodies []Body
	QualityTier    QualityTier
}

// Candidate is a point supplied by the external gazetteer. Population and
// timezone are passthrough metadata; the engine never interprets them.
type Candidate struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Country    string     `json:"country"`
	Coordinate Coordinate `json:"coordinate"`
	Population int64      `json:"population,omitempty"`
	Timezone   string     `json:"timezone,omitempty"`
}

// Nature tags a category as helping or hindering at a location.
type Nature string

const (
	NatureBeneficial  Nature = "beneficial"
	NatureChallenging Nature = "challenging"
	NatureNeutral     Nature = "neutral"
)

// CategoryScore is one category's contribution at a candidate.
// Score is always non-negative; the nature's sign is applied only when
// folding into the candidate total.
type CategoryScore struct {
	Category string  `json:"category"`
	Nature   Nature  `json:"nature"`
	Score    float64 `json:"score"`
}

// CandidateResult is the scanner's verdict for one candidate. TotalScore
// is signed: challenging categories subtract from it.
type CandidateResult struct {
	Candidate  Candidate       `json:"candidate"`
	TotalScore float64         `json:"totalScore"`
	Categories []CategoryScore `json:"categories"`

	BeneficialCategories  int `json:"beneficialCategories"`
	ChallengingCategories int `json:"challengingCategories"`
}

// RankedCountry groups a country's candidates for display. Countries are
// ordered by their best candidate; no separate country score exists.
type RankedCountry struct {
	Country    string            `json:"country"`
	Candidates []CandidateResult `json:"candidates"`

	BeneficialCount  int `json:"beneficialCount"`
	ChallengingCount int `json:"challengingCount"`
}
