package model

import "fmt"

// LineKind discriminates the Line variants.
type LineKind int

const (
	KindDirectional LineKind = iota
	KindAspect
	KindParan
	KindLocalSpace
)

func (k LineKind) String() string {
	switch k {
	case KindDirectional:
		return "directional"
	case KindAspect:
		return "aspect"
	case KindParan:
		return "paran"
	case KindLocalSpace:
		return "local-space"
	default:
		return "unknown"
	}
}

// Line is an influence-producing feature. It is a closed sum type: exactly
// one implementation exists per kind, each carrying only the fields its
// scoring path reads. Construct variants directly and call Validate before
// handing them to a scan.
type Line interface {
	Kind() LineKind
	// PrimaryBody is the body whose influence the line carries.
	PrimaryBody() Body
	// AngleTag is the angle component used by category rules: the chart
	// angle for directional/aspect lines, "PARAN" for parans and "LS" for
	// local-space lines.
	AngleTag() string
	// Validate checks the structural invariants of the variant.
	Validate() error

	sealedLine()
}

// DirectionalLine is a planet × angle line. It carries a sampled path, a
// zenith anchor (the point where the body is exactly overhead), or both.
type DirectionalLine struct {
	Planet Body
	Angle  Angle
	Path   []Coordinate
	Anchor *Coordinate
}

func (l DirectionalLine) Kind() LineKind    { return KindDirectional }
func (l DirectionalLine) PrimaryBody() Body { return l.Planet }
func (l DirectionalLine) AngleTag() string  { return string(l.Angle) }
func (l DirectionalLine) sealedLine()       {}

func (l DirectionalLine) Validate() error {
	if l.Planet == "" {
		return fmt.Errorf("directional line: missing planet")
	}
	switch l.Angle {
	case AngleMC, AngleIC, AngleASC, AngleDSC:
	default:
		return fmt.Errorf("directional line %s: invalid angle %q", l.Planet, l.Angle)
	}
	if len(l.Path) == 0 && l.Anchor == nil {
		return fmt.Errorf("directional line %s %s: needs a path or an anchor", l.Planet, l.Angle)
	}
	return nil
}

// AspectLine is a planet × aspect-type line, such as a trine or square to
// an angle. Harmonious records the aspect's polarity.
type AspectLine struct {
	Planet     Body
	Angle      Angle
	Aspect     string
	Harmonious bool
	Path       []Coordinate
}

func (l AspectLine) Kind() LineKind    { return KindAspect }
func (l AspectLine) PrimaryBody() Body { return l.Planet }
func (l AspectLine) AngleTag() string  { return string(l.Angle) }
func (l AspectLine) sealedLine()       {}

func (l AspectLine) Validate() error {
	if l.Planet == "" {
		return fmt.Errorf("aspect line: missing planet")
	}
	if l.Aspect == "" {
		return fmt.Errorf("aspect line %s: missing aspect type", l.Planet)
	}
	if len(l.Path) == 0 {
		return fmt.Errorf("aspect line %s %s: empty path", l.Planet, l.Aspect)
	}
	return nil
}

// ParanLine marks the latitude band where two planetary lines are angular
// simultaneously. It is evaluated analytically by latitude distance, so it
// carries no path.
type ParanLine struct {
	Primary        Body
	Secondary      Body
	PrimaryAngle   Angle
	SecondaryAngle Angle
	LatitudeDeg    float64
}

func (l ParanLine) Kind() LineKind    { return KindParan }
func (l ParanLine) PrimaryBody() Body { return l.Primary }
func (l ParanLine) AngleTag() string  { return "PARAN" }
func (l ParanLine) sealedLine()       {}

func (l ParanLine) Validate() error {
	if l.Primary == "" || l.Secondary == "" {
		return fmt.Errorf("paran line: both bodies are required")
	}
	if l.LatitudeDeg < -90 || l.LatitudeDeg > 90 {
		return fmt.Errorf("paran line %s/%s: latitude %.2f out of range", l.Primary, l.Secondary, l.LatitudeDeg)
	}
	return nil
}

// LocalSpaceLine is a radial direction from a fixed origin, scored by
// angular deviation of the origin→point bearing from the azimuth.
type LocalSpaceLine struct {
	Planet     Body
	Origin     Coordinate
	AzimuthDeg float64
}

func (l LocalSpaceLine) Kind() LineKind    { return KindLocalSpace }
func (l LocalSpaceLine) PrimaryBody() Body { return l.Planet }
func (l LocalSpaceLine) AngleTag() string  { return "LS" }
func (l LocalSpaceLine) sealedLine()       {}

func (l LocalSpaceLine) Validate() error {
	if l.Planet == "" {
		return fmt.Errorf("local-space line: missing planet")
	}
	if l.AzimuthDeg < 0 || l.AzimuthDeg >= 360 {
		return fmt.Errorf("local-space line %s: azimuth %.2f out of [0, 360)", l.Planet, l.AzimuthDeg)
	}
	return nil
}

// ValidateLines checks every line in the set and reports the first
// structural violation. Scans reject malformed sets up front rather than
// scoring them partially.
func ValidateLines(lines []Line) error {
	for i, line := range lines {
		if line == nil {
			return fmt.Errorf("line %d: nil", i)
		}
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}
