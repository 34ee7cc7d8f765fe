package scout

import (
	"fmt"

	"github.com/luminastro/influence-engine/model"
)

// Grid latitude range, covering the populated band of the globe.
const (
	gridMinLat = -60.0
	gridMaxLat = 70.0
)

// GenerateGridCandidates builds a regular lat/lng grid for gazetteer-free
// scans. Latitudes run -60 to 70 inclusive; longitudes cover the full
// circle without duplicating the antimeridian. IDs encode the coordinate,
// so grid candidates sort deterministically like any other candidate.
func GenerateGridCandidates(resolutionDeg float64) []model.Candidate {
	if resolutionDeg <= 0 {
		return nil
	}

	var candidates []model.Candidate
	for lat := gridMinLat; lat <= gridMaxLat; lat += resolutionDeg {
		for lng := -180.0; lng < 180; lng += resolutionDeg {
			candidates = append(candidates, model.Candidate{
				ID:         fmt.Sprintf("grid_%+07.2f_%+08.2f", lat, lng),
				Name:       fmt.Sprintf("Grid %.2f, %.2f", lat, lng),
				Coordinate: model.Coordinate{Lat: lat, Lng: lng},
			})
		}
	}
	return candidates
}
