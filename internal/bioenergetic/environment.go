package bioenergetic

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
)

// Productivity selects how producers share the carrying capacity.
type Productivity int

const (
	// SpeciesSpecific gives every producer its own K.
	SpeciesSpecific Productivity = iota
	// SystemWide makes all producers compete for a single K.
	SystemWide
)

func (p Productivity) String() string {
	if p == SystemWide {
		return "system"
	}
	return "species"
}

func ParseProductivity(s string) (Productivity, error) {
	switch strings.ToLower(s) {
	case "species", "species-specific", "":
		return SpeciesSpecific, nil
	case "system", "system-wide":
		return SystemWide, nil
	}
	return SpeciesSpecific, fmt.Errorf("%w: unknown productivity %q", dynamo.ErrParameterBounds, s)
}

// Environment carries the carrying capacity. K holds a single value, one
// value per species (consumer entries ignored), or one value per producer
// in producer order.
type Environment struct {
	K            []float64
	Productivity Productivity
}

func SpeciesK(k ...float64) Environment {
	return Environment{K: k, Productivity: SpeciesSpecific}
}

func SystemK(k float64) Environment {
	return Environment{K: []float64{k}, Productivity: SystemWide}
}

// resolve returns per-species K (zero for consumers) and, for system-wide
// productivity, the shared total.
func (e Environment) resolve(web *foodweb.FoodWeb) ([]float64, float64, error) {
	if len(e.K) == 0 {
		return nil, 0, fmt.Errorf("%w: carrying capacity not set", dynamo.ErrParameterBounds)
	}
	for _, k := range e.K {
		if !(k > 0) || math.IsInf(k, 0) {
			return nil, 0, fmt.Errorf("%w: carrying capacity must be positive and finite, got %v", dynamo.ErrParameterBounds, k)
		}
	}

	s := web.Richness()
	producers := web.Producers()
	perSpecies := make([]float64, s)

	if e.Productivity == SystemWide {
		if len(e.K) != 1 {
			return nil, 0, fmt.Errorf("%w: system-wide productivity takes a single K, got %d values", dynamo.ErrParameterBounds, len(e.K))
		}
		for _, p := range producers {
			perSpecies[p] = e.K[0]
		}
		return perSpecies, e.K[0], nil
	}

	switch len(e.K) {
	case 1:
		for _, p := range producers {
			perSpecies[p] = e.K[0]
		}
	case s:
		for _, p := range producers {
			perSpecies[p] = e.K[p]
		}
	case len(producers):
		for i, p := range producers {
			perSpecies[p] = e.K[i]
		}
	default:
		return nil, 0, fmt.Errorf("%w: got %d carrying capacities for %d species (%d producers)",
			dynamo.ErrDimensionMismatch, len(e.K), s, len(producers))
	}
	return perSpecies, 0, nil
}
