package bioenergetic

import (
	"fmt"

	"github.com/san-kum/foodweb/internal/dynamo"
)

// FunctionalResponse parameterises F_ij. Hill = 1 is a type II response,
// Hill = 2 a type III response.
type FunctionalResponse struct {
	Hill           float64
	HalfSaturation float64
	Interference   float64
	// Preference ω; nil means equal preference 1/n over the n prey.
	Preference [][]float64
}

func DefaultFunctionalResponse() FunctionalResponse {
	return FunctionalResponse{
		Hill:           1.0,
		HalfSaturation: 0.5,
		Interference:   0.0,
	}
}

func (f FunctionalResponse) validate(s int) error {
	if f.Hill < 1 {
		return fmt.Errorf("%w: hill exponent must be >= 1, got %v", dynamo.ErrParameterBounds, f.Hill)
	}
	if f.HalfSaturation <= 0 {
		return fmt.Errorf("%w: half-saturation density must be positive, got %v", dynamo.ErrParameterBounds, f.HalfSaturation)
	}
	if f.Interference < 0 {
		return fmt.Errorf("%w: interference must be non-negative, got %v", dynamo.ErrParameterBounds, f.Interference)
	}
	if f.Preference != nil && len(f.Preference) != s {
		return fmt.Errorf("%w: preference matrix has %d rows for %d species", dynamo.ErrDimensionMismatch, len(f.Preference), s)
	}
	return nil
}
