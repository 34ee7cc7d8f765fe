package scout

import (
	"math"

	"github.com/luminastro/influence-engine/core"
	"github.com/luminastro/influence-engine/model"
)

// lineBounds is a latitude/longitude box around one line, buffered by the
// zero-score radius. A candidate outside every box provably scores zero on
// every line, so skipping it cannot change the ranking.
type lineBounds struct {
	minLat, maxLat float64
	minLng, maxLng float64
	// wraps marks a box crossing the antimeridian: the longitude test
	// becomes lng >= minLng OR lng <= maxLng.
	wraps bool
	// global boxes match every candidate; used for line kinds whose
	// influence has no provable longitude bound.
	global bool
}

func (b lineBounds) contains(c model.Coordinate) bool {
	if b.global {
		return true
	}
	if c.Lat < b.minLat || c.Lat > b.maxLat {
		return false
	}
	if b.wraps {
		return c.Lng >= b.minLng || c.Lng <= b.maxLng
	}
	return c.Lng >= b.minLng && c.Lng <= b.maxLng
}

// prefilter is the per-scan collection of line boxes. A nil prefilter
// treats every candidate as relevant.
type prefilter struct {
	bounds []lineBounds
}

// newPrefilter builds buffered boxes for every line. Path-backed lines are
// simplified first; the simplification tolerance is folded into the buffer
// so the box stays a true outer bound of the original path's influence.
func newPrefilter(lines []model.Line, simplifyToleranceDeg float64) *prefilter {
	bounds := make([]lineBounds, 0, len(lines))
	for _, line := range lines {
		bounds = append(bounds, boundsForLine(line, simplifyToleranceDeg))
	}
	return &prefilter{bounds: bounds}
}

// relevant reports whether any line's box contains the candidate.
func (pf *prefilter) relevant(c model.Coordinate) bool {
	if pf == nil {
		return true
	}
	for _, b := range pf.bounds {
		if b.contains(c) {
			return true
		}
	}
	return false
}

func boundsForLine(line model.Line, simplifyToleranceDeg float64) lineBounds {
	switch l := line.(type) {
	case model.DirectionalLine:
		var points []model.Coordinate
		if len(l.Path) > 0 {
			points = core.SimplifyPath(l.Path, simplifyToleranceDeg)
		}
		if l.Anchor != nil {
			points = append(points, *l.Anchor)
		}
		return boundsForPoints(points, bufferDeg(simplifyToleranceDeg))
	case model.AspectLine:
		return boundsForPoints(core.SimplifyPath(l.Path, simplifyToleranceDeg), bufferDeg(simplifyToleranceDeg))
	case model.ParanLine:
		// A paran is a full latitude circle: bound the latitude band only.
		buffer := core.ZeroScoreKm / core.KmPerDegree
		return lineBounds{
			minLat: l.LatitudeDeg - buffer,
			maxLat: l.LatitudeDeg + buffer,
			minLng: -180,
			maxLng: 180,
		}
	default:
		// Local-space rays reach any longitude, so they are never
		// pre-filtered away.
		return lineBounds{global: true}
	}
}

// bufferDeg is the box buffer in degrees of latitude: the zero-score
// radius plus any slack introduced by path simplification.
func bufferDeg(simplifyToleranceDeg float64) float64 {
	buffer := core.ZeroScoreKm / core.KmPerDegree
	if simplifyToleranceDeg > 0 {
		buffer += simplifyToleranceDeg
	}
	return buffer
}

func boundsForPoints(points []model.Coordinate, buffer float64) lineBounds {
	if len(points) == 0 {
		return lineBounds{global: true}
	}

	b := lineBounds{minLat: 90, maxLat: -90, minLng: 180, maxLng: -180}
	var maxGap float64
	for i, p := range points {
		b.minLat = math.Min(b.minLat, p.Lat)
		b.maxLat = math.Max(b.maxLat, p.Lat)
		b.minLng = math.Min(b.minLng, p.Lng)
		b.maxLng = math.Max(b.maxLng, p.Lng)
		if i > 0 {
			maxGap = math.Max(maxGap, math.Abs(p.Lng-points[i-1].Lng))
		}
	}

	// A consecutive longitude jump over 180° means the path crosses the
	// antimeridian; rebuild the box in wrapped space.
	if maxGap > 180 {
		return wrappedBounds(points, buffer)
	}

	extendForArcBulge(points, &b)
	b.minLat -= buffer
	b.maxLat += buffer
	lngBuffer := longitudeBuffer(b.minLat, b.maxLat, buffer)
	if lngBuffer >= 180 {
		b.minLng, b.maxLng = -180, 180
		return b
	}
	b.minLng -= lngBuffer
	b.maxLng += lngBuffer
	if b.minLng < -180 || b.maxLng > 180 {
		// Buffering pushed the box past the antimeridian.
		b.minLng = wrapLng(b.minLng)
		b.maxLng = wrapLng(b.maxLng)
		b.wraps = true
	}
	return b
}

// wrappedBounds treats eastern and western longitudes separately: the box
// runs from the smallest positive longitude eastward across ±180 to the
// largest negative one.
func wrappedBounds(points []model.Coordinate, buffer float64) lineBounds {
	b := lineBounds{minLat: 90, maxLat: -90, minLng: 180, maxLng: -180, wraps: true}
	for _, p := range points {
		b.minLat = math.Min(b.minLat, p.Lat)
		b.maxLat = math.Max(b.maxLat, p.Lat)
		if p.Lng >= 0 {
			b.minLng = math.Min(b.minLng, p.Lng)
		} else {
			b.maxLng = math.Max(b.maxLng, p.Lng)
		}
	}
	extendForArcBulge(points, &b)
	b.minLat -= buffer
	b.maxLat += buffer
	lngBuffer := longitudeBuffer(b.minLat, b.maxLat, buffer)
	b.minLng -= lngBuffer
	b.maxLng += lngBuffer
	if b.minLng <= b.maxLng {
		// The buffered halves overlap; the box spans all longitudes.
		b.minLng, b.maxLng = -180, 180
		b.wraps = false
	}
	return b
}

// extendForArcBulge widens the latitude bounds to cover great-circle
// segments that bulge poleward of their endpoints: a sparse path's
// vertices understate the arc between them. A segment holds a latitude
// extremum only when the bearing's north-south component changes sign
// along it; the extremum then sits at the circle's vertex latitude
// (Clairaut's relation).
func extendForArcBulge(points []model.Coordinate, b *lineBounds) {
	for i := 1; i < len(points); i++ {
		s1, s2 := points[i-1], points[i]
		northAt1 := math.Cos(core.InitialBearingDeg(s1, s2) * math.Pi / 180)
		forwardAt2 := math.Mod(core.InitialBearingDeg(s2, s1)+180, 360)
		northAt2 := math.Cos(forwardAt2 * math.Pi / 180)
		if northAt1 == 0 || northAt1*northAt2 > 0 {
			continue
		}
		vertex := vertexLatitudeDeg(s1, core.InitialBearingDeg(s1, s2))
		if northAt1 > 0 {
			b.maxLat = math.Max(b.maxLat, vertex)
		} else {
			b.minLat = math.Min(b.minLat, -vertex)
		}
	}
}

// vertexLatitudeDeg is the highest latitude reached by the great circle
// through p with the given bearing.
func vertexLatitudeDeg(p model.Coordinate, bearingDeg float64) float64 {
	latRad := p.Lat * math.Pi / 180
	bearingRad := bearingDeg * math.Pi / 180
	return math.Acos(math.Abs(math.Sin(bearingRad)*math.Cos(latRad))) * 180 / math.Pi
}

// longitudeBuffer widens the latitude buffer by the worst-case meridian
// convergence inside the box. Near the poles a fixed km radius spans many
// degrees of longitude; past 85° the box just goes global in longitude.
func longitudeBuffer(minLat, maxLat, latBuffer float64) float64 {
	extreme := math.Max(math.Abs(minLat), math.Abs(maxLat))
	if extreme >= 85 {
		return 360
	}
	return latBuffer / math.Cos(extreme*math.Pi/180)
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
