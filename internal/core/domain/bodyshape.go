package domain

import "strings"

const (
	ShapePear             = "Pear/Triangle"
	ShapeApple            = "Apple/Round"
	ShapeHourglass        = "Hourglass"
	ShapeInvertedTriangle = "Inverted Triangle"
	ShapeRectangle        = "Rectangle/Straight"
	ShapeVShape           = "V-Shape/Athletic"
	ShapeOval             = "Oval/Apple"
)

// hybridSeparator joins the feminine and masculine labels for non-binary results.
const hybridSeparator = " or "

// KnownShapes lists every non-hybrid label in a stable order.
var KnownShapes = []string{
	ShapePear,
	ShapeApple,
	ShapeHourglass,
	ShapeInvertedTriangle,
	ShapeRectangle,
	ShapeVShape,
	ShapeOval,
}

type BodyShapeResult struct {
	Shape           string   `json:"shape" yaml:"shape"`
	Description     string   `json:"description" yaml:"description"`
	Confidence      float64  `json:"confidence" yaml:"confidence"`
	Characteristics []string `json:"characteristics" yaml:"characteristics"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`
}

func HybridShape(feminine, masculine string) string {
	return feminine + hybridSeparator + masculine
}

// ShapeComponents splits a hybrid label into its parts. Plain labels come back as a single element.
func ShapeComponents(shape string) []string {
	shape = strings.TrimSpace(shape)
	if shape == "" {
		return nil
	}
	parts := strings.Split(shape, hybridSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// CanonicalShape maps a case-insensitive label (plain or hybrid) onto the
// exact labels used throughout the catalog rules.
func CanonicalShape(shape string) (string, bool) {
	parts := ShapeComponents(shape)
	if len(parts) == 0 {
		return "", false
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		found := ""
		for _, known := range KnownShapes {
			if strings.EqualFold(part, known) {
				found = known
				break
			}
		}
		if found == "" {
			return "", false
		}
		out = append(out, found)
	}
	return strings.Join(out, hybridSeparator), true
}

func IsKnownShape(shape string) bool {
	_, ok := CanonicalShape(shape)
	return ok
}
