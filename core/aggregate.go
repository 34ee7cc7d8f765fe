package core

import (
	"math"
	"sort"

	"github.com/luminastro/influence-engine/model"
)

// dominantBodyCount is how many top influences contribute their bodies to
// LocationAnalysis.DominantBodies (before deduplication).
const dominantBodyCount = 3

// saturationScale controls how fast the weighted influence sum saturates
// toward 100. A lone zenith influence (weighted sum 100) lands at ~90.
const saturationScale = 43.0

// rankWeights applies diminishing returns to the strongest influences.
// Only the top len(rankWeights) contribute, so a pile of weak lines can
// never out-rank one zenith line: the weak-only ceiling is
// 25 × 0.15 × 2.38 ≈ 8.9 before saturation.
var rankWeights = [...]float64{1.0, 0.6, 0.35, 0.2, 0.1, 0.08, 0.05}

// Analyze scores every line against the point and folds the results into
// a single interpretation. No influence is discarded: weak results still
// count toward the aggregate, down-weighted by their level.
//
// The result is independent of the order of lines; only their content
// matters.
func Analyze(p model.Coordinate, lines []model.Line) model.LocationAnalysis {
	influences := make([]model.LineInfluence, 0, len(lines))
	for _, line := range lines {
		influences = append(influences, ScoreLine(p, line))
	}
	sortInfluences(influences)

	sum := 0.0
	for i, inf := range influences {
		if i >= len(rankWeights) {
			break
		}
		sum += inf.Score * inf.Level.Weight() * rankWeights[i]
	}
	aggregate := 0.0
	if sum > 0 {
		aggregate = 100 * (1 - math.Exp(-sum/saturationScale))
	}

	return model.LocationAnalysis{
		Coordinate:     p,
		Influences:     influences,
		AggregateScore: aggregate,
		DominantBodies: dominantBodies(influences),
		QualityTier:    model.TierForScore(aggregate),
	}
}

// sortInfluences orders by score descending with a full content-based
// tie-break, so equal-score influences land in the same order no matter
// how the input was arranged.
func sortInfluences(influences []model.LineInfluence) {
	sort.Slice(influences, func(i, j int) bool {
		a, b := influences[i], influences[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.Line.PrimaryBody() != b.Line.PrimaryBody() {
			return a.Line.PrimaryBody() < b.Line.PrimaryBody()
		}
		if a.Line.AngleTag() != b.Line.AngleTag() {
			return a.Line.AngleTag() < b.Line.AngleTag()
		}
		return a.Line.Kind() < b.Line.Kind()
	})
}

func dominantBodies(influences []model.LineInfluence) []model.Body {
	bodies := make([]model.Body, 0, dominantBodyCount)
	seen := make(map[model.Body]struct{}, dominantBodyCount)
	for i, inf := range influences {
		if i >= dominantBodyCount {
			break
		}
		body := inf.Line.PrimaryBody()
		if _, dup := seen[body]; dup {
			continue
		}
		seen[body] = struct{}{}
		bodies = append(bodies, body)
	}
	return bodies
}
