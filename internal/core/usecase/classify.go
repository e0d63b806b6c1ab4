package usecase

import (
	"math"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

type proportions struct {
	bust      float64
	waist     float64
	hips      float64
	shoulders float64
}

type shapeRule struct {
	shape      string
	confidence float64
	matches    func(p proportions) bool
}

// Order matters: the first matching rule wins.
var feminineRules = []shapeRule{
	{
		shape:      domain.ShapePear,
		confidence: 0.85,
		matches: func(p proportions) bool {
			return p.hips-p.waist > 7 && p.bust < p.hips-5
		},
	},
	{
		shape:      domain.ShapeApple,
		confidence: 0.80,
		matches: func(p proportions) bool {
			return p.bust-p.waist < 10 && ratio(p.waist, p.hips) > 0.85
		},
	},
	{
		shape:      domain.ShapeHourglass,
		confidence: 0.90,
		matches: func(p proportions) bool {
			return math.Abs(p.bust-p.hips) < 8 && p.bust-p.waist > 8 && p.hips-p.waist > 8
		},
	},
	{
		shape:      domain.ShapeInvertedTriangle,
		confidence: 0.85,
		matches: func(p proportions) bool {
			return p.bust > p.hips+5 || p.shoulders > p.hips+5
		},
	},
}

var feminineDefault = shapeRule{shape: domain.ShapeRectangle, confidence: 0.80}

var masculineRules = []shapeRule{
	{
		shape:      domain.ShapeVShape,
		confidence: 0.90,
		matches: func(p proportions) bool {
			return ratio(p.shoulders, p.waist) > 1.3 && ratio(p.bust, p.waist) > 1.2
		},
	},
	{
		shape:      domain.ShapeRectangle,
		confidence: 0.85,
		matches: func(p proportions) bool {
			return ratio(p.shoulders, p.waist) < 1.2
		},
	},
}

var masculineDefault = shapeRule{shape: domain.ShapeOval, confidence: 0.80}

type BodyShapeClassifier struct{}

func NewBodyShapeClassifier() *BodyShapeClassifier {
	return &BodyShapeClassifier{}
}

// Classify never fails; incomplete input lands on the cascade's default rule.
func (c *BodyShapeClassifier) Classify(m domain.Measurements) domain.BodyShapeResult {
	m = NormalizeMeasurements(m)
	p := proportions{bust: m.Bust, waist: m.Waist, hips: m.Hips, shoulders: m.Shoulders}

	var result domain.BodyShapeResult
	switch m.Gender {
	case domain.GenderMan:
		result = describeShape(runCascade(masculineRules, masculineDefault, p))
	case domain.GenderNonBinary:
		result = mergeHybrid(
			describeShape(runCascade(feminineRules, feminineDefault, p)),
			describeShape(runCascade(masculineRules, masculineDefault, p)),
		)
	default:
		result = describeShape(runCascade(feminineRules, feminineDefault, p))
	}

	switch {
	case m.IsTeen():
		result.Recommendations = append(result.Recommendations, "Prioritize comfortable, age-appropriate pieces you can move freely in")
	case m.IsSenior():
		result.Recommendations = append(result.Recommendations, "Invest in quality fabrics and cuts that allow ease of movement")
	}
	return result
}

func runCascade(rules []shapeRule, fallback shapeRule, p proportions) shapeRule {
	for _, rule := range rules {
		if rule.matches(p) {
			return rule
		}
	}
	return fallback
}

func describeShape(rule shapeRule) domain.BodyShapeResult {
	profile := shapeProfiles[rule.shape]
	return domain.BodyShapeResult{
		Shape:           rule.shape,
		Description:     profile.description,
		Confidence:      rule.confidence,
		Characteristics: append([]string(nil), profile.characteristics...),
		Recommendations: append([]string(nil), profile.styleNotes...),
	}
}

func mergeHybrid(feminine, masculine domain.BodyShapeResult) domain.BodyShapeResult {
	characteristics := make([]string, 0, len(feminine.Characteristics)+len(masculine.Characteristics))
	characteristics = append(characteristics, feminine.Characteristics...)
	characteristics = append(characteristics, masculine.Characteristics...)

	recommendations := make([]string, 0, len(feminine.Recommendations)+len(masculine.Recommendations))
	recommendations = append(recommendations, feminine.Recommendations...)
	recommendations = append(recommendations, masculine.Recommendations...)

	return domain.BodyShapeResult{
		Shape:           domain.HybridShape(feminine.Shape, masculine.Shape),
		Description:     feminine.Description + " " + masculine.Description,
		Confidence:      math.Max(feminine.Confidence, masculine.Confidence),
		Characteristics: characteristics,
		Recommendations: recommendations,
	}
}

// ratio returns NaN for a non-positive denominator so comparisons fail closed.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return math.NaN()
	}
	return num / den
}
