package scout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/luminastro/influence-engine/model"
)

// lineDoc is the JSON wire form of a line: a "kind" discriminator plus the
// union of every variant's fields. Decoding picks the fields the kind
// needs and ignores the rest.
type lineDoc struct {
	Kind   string `json:"kind"`
	Planet string `json:"planet"`
	Angle  string `json:"angle"`

	Path   []model.Coordinate `json:"path,omitempty"`
	Anchor *model.Coordinate  `json:"anchor,omitempty"`

	Aspect     string `json:"aspect,omitempty"`
	Harmonious bool   `json:"harmonious,omitempty"`

	Secondary      string  `json:"secondary,omitempty"`
	SecondaryAngle string  `json:"secondaryAngle,omitempty"`
	LatitudeDeg    float64 `json:"latitudeDeg,omitempty"`

	Origin     *model.Coordinate `json:"origin,omitempty"`
	AzimuthDeg float64           `json:"azimuthDeg,omitempty"`
}

func (d lineDoc) toLine() (model.Line, error) {
	switch d.Kind {
	case "directional":
		return model.DirectionalLine{
			Planet: model.Body(d.Planet),
			Angle:  model.Angle(d.Angle),
			Path:   d.Path,
			Anchor: d.Anchor,
		}, nil
	case "aspect":
		return model.AspectLine{
			Planet:     model.Body(d.Planet),
			Angle:      model.Angle(d.Angle),
			Aspect:     d.Aspect,
			Harmonious: d.Harmonious,
			Path:       d.Path,
		}, nil
	case "paran":
		return model.ParanLine{
			Primary:        model.Body(d.Planet),
			Secondary:      model.Body(d.Secondary),
			PrimaryAngle:   model.Angle(d.Angle),
			SecondaryAngle: model.Angle(d.SecondaryAngle),
			LatitudeDeg:    d.LatitudeDeg,
		}, nil
	case "local-space":
		line := model.LocalSpaceLine{
			Planet:     model.Body(d.Planet),
			AzimuthDeg: d.AzimuthDeg,
		}
		if d.Origin != nil {
			line.Origin = *d.Origin
		}
		return line, nil
	default:
		return nil, fmt.Errorf("unknown line kind %q", d.Kind)
	}
}

// LoadLines reads a JSON array of line documents. Structural validation
// happens at scan setup, not here; loading only rejects unknown kinds and
// malformed JSON.
func LoadLines(path string) ([]model.Line, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lines file: %w", err)
	}
	var docs []lineDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parse lines file %s: %w", path, err)
	}

	lines := make([]model.Line, 0, len(docs))
	for i, doc := range docs {
		line, err := doc.toLine()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// LoadCandidates reads a JSON array of candidates from the external
// gazetteer's export format.
func LoadCandidates(path string) ([]model.Candidate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}
	var candidates []model.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("parse candidates file %s: %w", path, err)
	}
	for i := range candidates {
		// The ID is the ranking tie-break, so every candidate needs one;
		// gazetteer exports without explicit IDs fall back to the name.
		if candidates[i].ID == "" {
			candidates[i].ID = candidates[i].Name
		}
		if candidates[i].ID == "" {
			return nil, fmt.Errorf("candidate %d: missing id and name", i)
		}
	}
	return candidates, nil
}
