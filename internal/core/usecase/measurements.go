package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kirillkom/shape-stylist/internal/core/domain"
)

const (
	cmPerInch  = 2.54
	kgPerPound = 0.45359237
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeMeasurements converts imperial input to metric. Metric input is returned unchanged.
func NormalizeMeasurements(m domain.Measurements) domain.Measurements {
	out := m
	out.Gender = domain.Gender(strings.ToLower(strings.TrimSpace(string(m.Gender))))
	out.AgeBracket = strings.ToLower(strings.TrimSpace(m.AgeBracket))
	if !strings.EqualFold(string(m.Units), string(domain.UnitsImperial)) {
		out.Units = domain.UnitsMetric
		return out
	}

	out.Height = roundTenth(m.Height * cmPerInch)
	out.Weight = roundTenth(m.Weight * kgPerPound)
	out.Bust = roundTenth(m.Bust * cmPerInch)
	out.Waist = roundTenth(m.Waist * cmPerInch)
	out.Hips = roundTenth(m.Hips * cmPerInch)
	out.Shoulders = roundTenth(m.Shoulders * cmPerInch)
	out.Units = domain.UnitsMetric
	return out
}

// ValidateMeasurements checks the fields each classification path depends on.
func ValidateMeasurements(m domain.Measurements) error {
	m.Gender = domain.Gender(strings.ToLower(strings.TrimSpace(string(m.Gender))))
	if err := validate.Struct(m); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "validate measurements", err)
	}
	switch m.Gender {
	case domain.GenderWoman:
		if m.Hips <= 0 {
			return domain.WrapError(domain.ErrInvalidInput, "validate measurements", fmt.Errorf("hips are required for gender %q", m.Gender))
		}
	case domain.GenderMan:
		if m.Shoulders <= 0 {
			return domain.WrapError(domain.ErrInvalidInput, "validate measurements", fmt.Errorf("shoulders are required for gender %q", m.Gender))
		}
	case domain.GenderNonBinary:
		if m.Hips <= 0 || m.Shoulders <= 0 {
			return domain.WrapError(domain.ErrInvalidInput, "validate measurements", fmt.Errorf("hips and shoulders are required for gender %q", m.Gender))
		}
	}
	return nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
