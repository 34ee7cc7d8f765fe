package model

import "fmt"

// Coordinate is a geographic position in decimal degrees. Latitude is
// normalized to [-90, 90] and longitude to (-180, 180].
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate returns a normalized coordinate.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Lat: lat, Lng: lng}.Normalized()
}

// Normalized clamps latitude into [-90, 90] and wraps longitude into
// (-180, 180].
func (c Coordinate) Normalized() Coordinate {
	lat := c.Lat
	if lat > 90 {
		lat = 90
	} else if lat < -90 {
		lat = -90
	}
	lng := c.Lng
	for lng <= -180 {
		lng += 360
	}
	for lng > 180 {
		lng -= 360
	}
	return Coordinate{Lat: lat, Lng: lng}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lng)
}

// Body identifies the celestial body a line belongs to.
type Body string

const (
	BodySun       Body = "Sun"
	BodyMoon      Body = "Moon"
	BodyMercury   Body = "Mercury"
	BodyVenus     Body = "Venus"
	BodyMars      Body = "Mars"
	BodyJupiter   Body = "Jupiter"
	BodySaturn    Body = "Saturn"
	BodyUranus    Body = "Uranus"
	BodyNeptune   Body = "Neptune"
	BodyPluto     Body = "Pluto"
	BodyChiron    Body = "Chiron"
	BodyNorthNode Body = "NorthNode"
)

// Angle is one of the four chart angles a directional line crosses.
type Angle string

const (
	AngleMC  Angle = "MC"
	AngleIC  Angle = "IC"
	AngleASC Angle = "ASC"
	AngleDSC Angle = "DSC"
)
