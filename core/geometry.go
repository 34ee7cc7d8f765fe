package core

import (
	"math"

	"github.com/luminastro/influence-engine/model"
)

// EarthRadiusKm is the mean Earth radius used for all spherical geometry
// in the scoring layer (kilometres). Spherical error versus WGS84 stays
// under ~0.5%, well inside the influence bands.
const EarthRadiusKm = 6371.0

// KmPerDegree is the surface distance of one degree of latitude.
const KmPerDegree = 111.0

const degToRad = math.Pi / 180.0

// HaversineKm returns the great-circle distance between two points.
// Symmetric; zero for identical points; at most ~20015 km (antipodes).
func HaversineKm(a, b model.Coordinate) float64 {
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// InitialBearingDeg returns the initial great-circle bearing from one
// point toward another, in degrees clockwise from north, in [0, 360).
func InitialBearingDeg(from, to model.Coordinate) float64 {
	lat1 := from.Lat * degToRad
	lat2 := to.Lat * degToRad
	dLng := (to.Lng - from.Lng) * degToRad

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	bearing := math.Atan2(y, x) / degToRad
	return math.Mod(bearing+360, 360)
}

// AngularDeviationDeg returns the minimal absolute difference between two
// bearings, in [0, 180].
func AngularDeviationDeg(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// EquirectangularKm is a trig-light distance approximation, accurate
// within a few percent below ~1000 km at mid latitudes. Used only for
// fast rejection; never for scoring.
func EquirectangularKm(a, b model.Coordinate) float64 {
	cosLat := math.Cos((a.Lat + b.Lat) / 2 * degToRad)
	dx := (b.Lng - a.Lng) * cosLat
	dy := b.Lat - a.Lat
	return 111.32 * math.Sqrt(dx*dx+dy*dy)
}

// crossTrackKm returns the cross-track and signed along-track distances of
// a point relative to the great circle through s1→s2, in kilometres.
func crossTrackKm(p, s1, s2 model.Coordinate) (cross, along float64) {
	d13 := HaversineKm(p, s1) / EarthRadiusKm
	bearing13 := InitialBearingDeg(s1, p) * degToRad
	bearing12 := InitialBearingDeg(s1, s2) * degToRad

	sinXT := math.Sin(d13) * math.Sin(bearing13-bearing12)
	xt := math.Asin(clamp(sinXT, -1, 1))
	cross = math.Abs(xt) * EarthRadiusKm

	// cos(xt) ~ 0 only when the point sits ~10000 km off the circle,
	// far beyond any influence band, but guard the division anyway.
	cosXT := math.Cos(xt)
	if math.Abs(cosXT) < 1e-10 {
		cosXT = math.Copysign(1e-10, cosXT)
	}
	at := math.Acos(clamp(math.Cos(d13)/cosXT, -1, 1))
	if math.IsNaN(at) {
		at = 0
	}
	if math.Cos(bearing13-bearing12) < 0 {
		at = -at
	}
	return cross, at * EarthRadiusKm
}

// distanceToSegmentKm returns the minimum distance from a point to a
// great-circle segment. Segments that cross the antimeridian are split at
// ±180° first so Pacific distances come out right.
func distanceToSegmentKm(p, s1, s2 model.Coordinate) float64 {
	if math.Abs(s2.Lng-s1.Lng) > 180 {
		crossLat, crossLng := datelineCrossing(s1, s2)
		oppositeLng := 180.0
		if crossLng == 180.0 {
			oppositeLng = -180.0
		}
		d1 := segmentDistanceKm(p, s1, model.Coordinate{Lat: crossLat, Lng: crossLng})
		d2 := segmentDistanceKm(p, model.Coordinate{Lat: crossLat, Lng: oppositeLng}, s2)
		return math.Min(d1, d2)
	}
	return segmentDistanceKm(p, s1, s2)
}

func segmentDistanceKm(p, s1, s2 model.Coordinate) float64 {
	cross, along := crossTrackKm(p, s1, s2)
	length := HaversineKm(s1, s2)
	switch {
	case along < 0:
		return HaversineKm(p, s1)
	case along > length:
		return HaversineKm(p, s2)
	default:
		return cross
	}
}

// datelineCrossing interpolates the latitude at which the segment crosses
// the antimeridian, and reports which meridian (+180 or -180) it crosses.
func datelineCrossing(s1, s2 model.Coordinate) (lat, lng float64) {
	lng2 := unwrapLongitude(s2.Lng, s1.Lng)
	crossing := 180.0
	if lng2 < s1.Lng {
		crossing = -180.0
	}
	t := (crossing - s1.Lng) / (lng2 - s1.Lng)
	return s1.Lat + t*(s2.Lat-s1.Lat), crossing
}

// unwrapLongitude shifts lng by whole turns until it is within 180° of ref.
func unwrapLongitude(lng, ref float64) float64 {
	d := lng - ref
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return ref + d
}

// PerpendicularDistanceToPathKm returns the minimum distance from a point
// to a sampled polyline. O(len(path)) per query; paths are sampled at no
// more than a few hundred points.
func PerpendicularDistanceToPathKm(p model.Coordinate, path []model.Coordinate) float64 {
	switch len(path) {
	case 0:
		return math.Inf(1)
	case 1:
		return HaversineKm(p, path[0])
	}
	min := math.Inf(1)
	for i := 0; i < len(path)-1; i++ {
		if d := distanceToSegmentKm(p, path[i], path[i+1]); d < min {
			min = d
		}
	}
	return min
}

// CircleAroundPoint generates a closed polyline of steps+1 points at a
// fixed great-circle radius from center. Used for region pre-filtering
// and presentation geometry, never for scoring.
func CircleAroundPoint(center model.Coordinate, radiusKm float64, steps int) []model.Coordinate {
	if steps < 3 {
		steps = 3
	}
	lat1 := center.Lat * degToRad
	lng1 := center.Lng * degToRad
	angular := radiusKm / EarthRadiusKm

	out := make([]model.Coordinate, 0, steps+1)
	for i := 0; i <= steps; i++ {
		bearing := float64(i) / float64(steps) * 2 * math.Pi
		lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
			math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
		lng2 := lng1 + math.Atan2(
			math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
			math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
		)
		out = append(out, model.NewCoordinate(lat2/degToRad, lng2/degToRad))
	}
	return out
}

// LatitudeCircle generates a closed polyline following a parallel.
func LatitudeCircle(lat float64, steps int) []model.Coordinate {
	if steps < 3 {
		steps = 3
	}
	out := make([]model.Coordinate, 0, steps+1)
	for i := 0; i <= steps; i++ {
		lng := -180.0 + float64(i)/float64(steps)*360.0
		out = append(out, model.NewCoordinate(lat, lng))
	}
	return out
}

// SimplifyPath reduces a polyline with the Douglas-Peucker algorithm.
// Tolerance is in degrees (0.1° ≈ 11 km at the equator). Simplified paths
// feed the pre-filter only; scoring always walks the full path.
func SimplifyPath(path []model.Coordinate, toleranceDeg float64) []model.Coordinate {
	if len(path) <= 2 || toleranceDeg <= 0 {
		return path
	}

	first, last := path[0], path[len(path)-1]
	maxDist := 0.0
	maxIdx := 0
	for i := 1; i < len(path)-1; i++ {
		if d := planarPointToLineDeg(path[i], first, last); d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= toleranceDeg {
		return []model.Coordinate{first, last}
	}
	left := SimplifyPath(path[:maxIdx+1], toleranceDeg)
	right := SimplifyPath(path[maxIdx:], toleranceDeg)

	// Merge into a fresh slice: left may alias the input's backing array,
	// and the input path must never be mutated.
	merged := make([]model.Coordinate, 0, len(left)+len(right)-1)
	merged = append(merged, left[:len(left)-1]...)
	return append(merged, right...)
}

// planarPointToLineDeg is the 2D perpendicular distance used by the
// simplifier; degrees in, degrees out.
func planarPointToLineDeg(p, a, b model.Coordinate) float64 {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat
	if dx == 0 && dy == 0 {
		return math.Hypot(p.Lng-a.Lng, p.Lat-a.Lat)
	}
	num := math.Abs(dy*p.Lng - dx*p.Lat + b.Lng*a.Lat - b.Lat*a.Lng)
	return num / math.Hypot(dx, dy)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
