package core

import (
	"fmt"
	"hash/fnv"
	"io"
	"sync"

	"github.com/luminastro/influence-engine/model"
)

// LineSetHash fingerprints a line set for memoization. Order-sensitive by
// design: callers that want order-insensitive keys sort first. The hash
// never affects correctness, only cache hit rates.
func LineSetHash(lines []model.Line) uint64 {
	h := fnv.New64a()
	for _, line := range lines {
		fmt.Fprintf(h, "%d|%s|%s|", line.Kind(), line.PrimaryBody(), line.AngleTag())
		switch l := line.(type) {
		case model.DirectionalLine:
			if l.Anchor != nil {
				fmt.Fprintf(h, "a%.6f,%.6f|", l.Anchor.Lat, l.Anchor.Lng)
			}
			hashPath(h, l.Path)
		case model.AspectLine:
			fmt.Fprintf(h, "%s|%t|", l.Aspect, l.Harmonious)
			hashPath(h, l.Path)
		case model.ParanLine:
			fmt.Fprintf(h, "%s|%.6f|", l.Secondary, l.LatitudeDeg)
		case model.LocalSpaceLine:
			fmt.Fprintf(h, "%.6f,%.6f|%.6f|", l.Origin.Lat, l.Origin.Lng, l.AzimuthDeg)
		}
	}
	return h.Sum64()
}

// hashPath folds every vertex into the stream. Path length alone is not
// enough: re-computed charts produce equal-length paths with entirely
// different geometry, and a collision here would let the cache serve the
// wrong analysis.
func hashPath(w io.Writer, path []model.Coordinate) {
	fmt.Fprintf(w, "n%d|", len(path))
	for _, p := range path {
		fmt.Fprintf(w, "%.6f,%.6f|", p.Lat, p.Lng)
	}
}

type cacheKey struct {
	lat, lng float64
	lineHash uint64
}

// AnalysisCache memoizes Analyze results keyed by (point, line-set hash).
// Strictly an optimization for callers that re-query the same points
// against an unchanged line set; safe for concurrent use.
type AnalysisCache struct {
	mu sync.RWMutex
	m  map[cacheKey]model.LocationAnalysis
}

// NewAnalysisCache returns an empty cache.
func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{m: make(map[cacheKey]model.LocationAnalysis)}
}

// Analyze returns the memoized analysis for the point, computing and
// storing it on a miss. lineHash must be LineSetHash(lines).
func (c *AnalysisCache) Analyze(p model.Coordinate, lines []model.Line, lineHash uint64) model.LocationAnalysis {
	key := cacheKey{lat: p.Lat, lng: p.Lng, lineHash: lineHash}

	c.mu.RLock()
	cached, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	analysis := Analyze(p, lines)
	c.mu.Lock()
	c.m[key] = analysis
	c.mu.Unlock()
	return analysis
}

// Len reports the number of memoized entries.
func (c *AnalysisCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
