package core

import (
	"math"

	"github.com/luminastro/influence-engine/model"
)

// Influence band thresholds, in kilometres. Scores fall linearly inside
// each band and are continuous across the boundaries.
const (
	// ZenithRadiusKm is the band around a line's anchor point where the
	// body is close enough to "overhead" to outrank any path distance.
	ZenithRadiusKm = 200.0
	GoldMaxKm      = 200.0
	StrongMaxKm    = 350.0
	ModerateMaxKm  = 500.0
	// ZeroScoreKm is where a weak influence's score bottoms out. It is
	// also the provable floor used by the scanner's pre-filter: beyond
	// this distance a line contributes exactly zero.
	ZeroScoreKm = 1000.0
)

// LocalSpaceKmPerDeg converts a local-space line's angular deviation into
// an equivalent distance so every kind shares one threshold table. 24 km
// per degree puts the outer edge of the traditional 80–240 km orb at 10°.
const LocalSpaceKmPerDeg = 24.0

// ScoreLine scores one line against one point. It is total over valid
// input: structural violations (an empty non-anchored path) are rejected
// by Line.Validate at construction time, not here.
func ScoreLine(p model.Coordinate, line model.Line) model.LineInfluence {
	switch l := line.(type) {
	case model.DirectionalLine:
		return scoreDirectional(p, l)
	case model.AspectLine:
		return scoreByDistance(line, PerpendicularDistanceToPathKm(p, l.Path))
	case model.ParanLine:
		return scoreByDistance(line, math.Abs(p.Lat-l.LatitudeDeg)*KmPerDegree)
	case model.LocalSpaceLine:
		return scoreLocalSpace(p, l)
	default:
		// The sum type is closed; this arm exists only to satisfy the
		// compiler.
		return model.LineInfluence{Line: line, Level: model.LevelWeak}
	}
}

func scoreDirectional(p model.Coordinate, l model.DirectionalLine) model.LineInfluence {
	if l.Anchor != nil {
		anchorDist := HaversineKm(p, *l.Anchor)
		if anchorDist <= ZenithRadiusKm {
			// Zenith strictly dominates any path classification: the body
			// overhead is a different physical configuration than the body
			// merely angular.
			return model.LineInfluence{
				Line:             l,
				DistanceKm:       anchorDist,
				Level:            model.LevelZenith,
				Score:            100 - (anchorDist/ZenithRadiusKm)*15,
				FromAnchor:       true,
				AnchorDistanceKm: anchorDist,
			}
		}
		if len(l.Path) == 0 {
			// Anchor-only line: the anchor is the whole geometry.
			inf := scoreByDistance(l, anchorDist)
			inf.AnchorDistanceKm = anchorDist
			return inf
		}
		inf := scoreByDistance(l, PerpendicularDistanceToPathKm(p, l.Path))
		inf.AnchorDistanceKm = anchorDist
		return inf
	}
	return scoreByDistance(l, PerpendicularDistanceToPathKm(p, l.Path))
}

func scoreLocalSpace(p model.Coordinate, l model.LocalSpaceLine) model.LineInfluence {
	deviation := 0.0
	if HaversineKm(p, l.Origin) > 0 {
		deviation = AngularDeviationDeg(InitialBearingDeg(l.Origin, p), l.AzimuthDeg)
	}
	inf := scoreByDistance(l, deviation*LocalSpaceKmPerDeg)
	inf.DeviationDeg = deviation
	return inf
}

// scoreByDistance maps a distance through the shared threshold table.
func scoreByDistance(line model.Line, distanceKm float64) model.LineInfluence {
	level, score := levelAndScore(distanceKm)
	return model.LineInfluence{
		Line:       line,
		DistanceKm: distanceKm,
		Level:      level,
		Score:      score,
	}
}

func levelAndScore(d float64) (model.InfluenceLevel, float64) {
	switch {
	case d <= GoldMaxKm:
		return model.LevelGold, 85 - (d/GoldMaxKm)*20
	case d <= StrongMaxKm:
		return model.LevelStrong, 65 - ((d-GoldMaxKm)/(StrongMaxKm-GoldMaxKm))*20
	case d <= ModerateMaxKm:
		return model.LevelModerate, 45 - ((d-StrongMaxKm)/(ModerateMaxKm-StrongMaxKm))*20
	default:
		score := 25 - ((d-ModerateMaxKm)/(ZeroScoreKm-ModerateMaxKm))*25
		return model.LevelWeak, math.Max(score, 0)
	}
}
