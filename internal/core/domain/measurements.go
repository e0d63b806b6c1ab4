package domain

type Gender string

const (
	GenderWoman     Gender = "woman"
	GenderMan       Gender = "man"
	GenderNonBinary Gender = "non-binary"
)

type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// Measurements are body measurements as entered by the shopper.
// Metric values are centimetres and kilograms, imperial values inches and pounds.
type Measurements struct {
	Gender     Gender     `json:"gender" yaml:"gender" validate:"required,oneof=woman man non-binary"`
	AgeBracket string     `json:"age_bracket,omitempty" yaml:"age_bracket,omitempty"`
	Height     float64    `json:"height" yaml:"height" validate:"gte=0"`
	Weight     float64    `json:"weight" yaml:"weight" validate:"gte=0"`
	Bust       float64    `json:"bust" yaml:"bust" validate:"gt=0"`
	Waist      float64    `json:"waist" yaml:"waist" validate:"gt=0"`
	Hips       float64    `json:"hips" yaml:"hips" validate:"gte=0"`
	Shoulders  float64    `json:"shoulders" yaml:"shoulders" validate:"gte=0"`
	Units      UnitSystem `json:"units" yaml:"units" validate:"omitempty,oneof=metric imperial"`
}

func (m Measurements) IsTeen() bool {
	switch m.AgeBracket {
	case "teen", "under-18", "13-17":
		return true
	default:
		return false
	}
}

func (m Measurements) IsSenior() bool {
	switch m.AgeBracket {
	case "senior", "55-64", "65+":
		return true
	default:
		return false
	}
}
