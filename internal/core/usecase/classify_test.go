package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

func TestClassifyFeminineShapes(t *testing.T) {
	cases := []struct {
		name       string
		m          domain.Measurements
		shape      string
		confidence float64
	}{
		{
			name:       "pear",
			m:          domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 65, Hips: 100, Shoulders: 90},
			shape:      domain.ShapePear,
			confidence: 0.85,
		},
		{
			name:       "apple",
			m:          domain.Measurements{Gender: domain.GenderWoman, Bust: 100, Waist: 95, Hips: 105},
			shape:      domain.ShapeApple,
			confidence: 0.80,
		},
		{
			name:       "hourglass",
			m:          domain.Measurements{Gender: domain.GenderWoman, Bust: 92, Waist: 66, Hips: 94},
			shape:      domain.ShapeHourglass,
			confidence: 0.90,
		},
		{
			name:       "inverted triangle",
			m:          domain.Measurements{Gender: domain.GenderWoman, Bust: 105, Waist: 80, Hips: 95},
			shape:      domain.ShapeInvertedTriangle,
			confidence: 0.85,
		},
		{
			name:       "rectangle default",
			m:          domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 80, Hips: 88},
			shape:      domain.ShapeRectangle,
			confidence: 0.80,
		},
	}

	classifier := NewBodyShapeClassifier()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifier.Classify(tc.m)
			if got.Shape != tc.shape {
				t.Fatalf("expected shape %q, got %q", tc.shape, got.Shape)
			}
			if got.Confidence != tc.confidence {
				t.Fatalf("expected confidence %.2f, got %.2f", tc.confidence, got.Confidence)
			}
			if got.Description == "" || len(got.Characteristics) == 0 || len(got.Recommendations) == 0 {
				t.Fatalf("expected populated profile text, got %+v", got)
			}
		})
	}
}

func TestClassifyFirstMatchingRuleWins(t *testing.T) {
	// Satisfies both the pear and the hourglass predicates.
	m := domain.Measurements{Gender: domain.GenderWoman, Bust: 88, Waist: 65, Hips: 95}
	got := NewBodyShapeClassifier().Classify(m)
	if got.Shape != domain.ShapePear {
		t.Fatalf("expected pear to win over hourglass, got %q", got.Shape)
	}
}

func TestClassifyMasculineShapes(t *testing.T) {
	classifier := NewBodyShapeClassifier()

	vShape := classifier.Classify(domain.Measurements{Gender: domain.GenderMan, Bust: 110, Waist: 85, Shoulders: 130})
	if vShape.Shape != domain.ShapeVShape || vShape.Confidence != 0.90 {
		t.Fatalf("expected v-shape 0.90, got %q %.2f", vShape.Shape, vShape.Confidence)
	}

	rect := classifier.Classify(domain.Measurements{Gender: domain.GenderMan, Bust: 95, Waist: 90, Shoulders: 100})
	if rect.Shape != domain.ShapeRectangle || rect.Confidence != 0.85 {
		t.Fatalf("expected rectangle 0.85, got %q %.2f", rect.Shape, rect.Confidence)
	}

	oval := classifier.Classify(domain.Measurements{Gender: domain.GenderMan, Bust: 100, Waist: 90, Shoulders: 110})
	if oval.Shape != domain.ShapeOval || oval.Confidence != 0.80 {
		t.Fatalf("expected oval 0.80, got %q %.2f", oval.Shape, oval.Confidence)
	}
}

func TestClassifyZeroWaistFallsToDefault(t *testing.T) {
	got := NewBodyShapeClassifier().Classify(domain.Measurements{Gender: domain.GenderMan, Bust: 100, Shoulders: 120})
	if got.Shape != domain.ShapeOval {
		t.Fatalf("expected default oval for zero waist, got %q", got.Shape)
	}
}

func TestClassifyNonBinaryHybrid(t *testing.T) {
	m := domain.Measurements{Gender: domain.GenderNonBinary, Bust: 90, Waist: 65, Hips: 100, Shoulders: 100}
	got := NewBodyShapeClassifier().Classify(m)

	want := domain.HybridShape(domain.ShapePear, domain.ShapeVShape)
	if got.Shape != want {
		t.Fatalf("expected hybrid %q, got %q", want, got.Shape)
	}
	if got.Confidence != 0.90 {
		t.Fatalf("expected max component confidence 0.90, got %.2f", got.Confidence)
	}
	parts := domain.ShapeComponents(got.Shape)
	if len(parts) != 2 || parts[0] != domain.ShapePear || parts[1] != domain.ShapeVShape {
		t.Fatalf("unexpected components: %v", parts)
	}
	if len(got.Characteristics) != len(shapeProfiles[domain.ShapePear].characteristics)+len(shapeProfiles[domain.ShapeVShape].characteristics) {
		t.Fatalf("expected merged characteristics, got %d", len(got.Characteristics))
	}
}

func TestClassifyAgeNotes(t *testing.T) {
	classifier := NewBodyShapeClassifier()
	base := domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 65, Hips: 100}
	plain := classifier.Classify(base)

	teen := base
	teen.AgeBracket = "Teen"
	gotTeen := classifier.Classify(teen)
	if len(gotTeen.Recommendations) != len(plain.Recommendations)+1 {
		t.Fatalf("expected one extra note for teen, got %d vs %d", len(gotTeen.Recommendations), len(plain.Recommendations))
	}
	if last := gotTeen.Recommendations[len(gotTeen.Recommendations)-1]; !strings.Contains(last, "age-appropriate") {
		t.Fatalf("unexpected teen note %q", last)
	}

	senior := base
	senior.AgeBracket = "65+"
	gotSenior := classifier.Classify(senior)
	if last := gotSenior.Recommendations[len(gotSenior.Recommendations)-1]; !strings.Contains(last, "ease of movement") {
		t.Fatalf("unexpected senior note %q", last)
	}
}

func TestClassifyDoesNotShareProfileSlices(t *testing.T) {
	classifier := NewBodyShapeClassifier()
	m := domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 65, Hips: 100, AgeBracket: "teen"}
	_ = classifier.Classify(m)
	again := classifier.Classify(domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 65, Hips: 100})
	if len(again.Recommendations) != len(shapeProfiles[domain.ShapePear].styleNotes) {
		t.Fatalf("age note leaked into shared profile: %v", again.Recommendations)
	}
}

func TestClassifyImperialInput(t *testing.T) {
	m := domain.Measurements{Gender: domain.GenderWoman, Bust: 36, Waist: 26, Hips: 40, Units: domain.UnitsImperial}
	got := NewBodyShapeClassifier().Classify(m)
	if got.Shape != domain.ShapePear {
		t.Fatalf("expected pear after unit conversion, got %q", got.Shape)
	}
}

func TestNormalizeMeasurementsImperial(t *testing.T) {
	got := NormalizeMeasurements(domain.Measurements{
		Gender: "Woman",
		Height: 65,
		Weight: 150,
		Bust:   36,
		Units:  domain.UnitsImperial,
	})
	if got.Units != domain.UnitsMetric {
		t.Fatalf("expected metric units, got %q", got.Units)
	}
	if got.Gender != domain.GenderWoman {
		t.Fatalf("expected lowercased gender, got %q", got.Gender)
	}
	if got.Height != 165.1 || got.Weight != 68 || got.Bust != 91.4 {
		t.Fatalf("unexpected conversion: height=%.1f weight=%.1f bust=%.1f", got.Height, got.Weight, got.Bust)
	}
}

func TestValidateMeasurements(t *testing.T) {
	cases := []struct {
		name    string
		m       domain.Measurements
		wantErr bool
	}{
		{name: "valid woman", m: domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 70, Hips: 95}},
		{name: "valid man", m: domain.Measurements{Gender: "MAN", Bust: 100, Waist: 85, Shoulders: 115}},
		{name: "missing gender", m: domain.Measurements{Bust: 90, Waist: 70, Hips: 95}, wantErr: true},
		{name: "unknown gender", m: domain.Measurements{Gender: "other", Bust: 90, Waist: 70, Hips: 95}, wantErr: true},
		{name: "woman without hips", m: domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 70}, wantErr: true},
		{name: "man without shoulders", m: domain.Measurements{Gender: domain.GenderMan, Bust: 100, Waist: 85}, wantErr: true},
		{name: "non-binary needs both", m: domain.Measurements{Gender: domain.GenderNonBinary, Bust: 90, Waist: 70, Hips: 95}, wantErr: true},
		{name: "negative height", m: domain.Measurements{Gender: domain.GenderWoman, Height: -1, Bust: 90, Waist: 70, Hips: 95}, wantErr: true},
		{name: "bad units", m: domain.Measurements{Gender: domain.GenderWoman, Bust: 90, Waist: 70, Hips: 95, Units: "stone"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMeasurements(tc.m)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !domain.IsKind(err, domain.ErrInvalidInput) {
					t.Fatalf("expected invalid input kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateMeasurements() error = %v", err)
			}
		})
	}
}
