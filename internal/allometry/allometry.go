// Package allometry holds body-mass and temperature scaling laws.
//
// The carrying-capacity law follows the Boltzmann-Arrhenius form
//
//	K(M, k0, T) = k0 · M^β · exp(E_k·(T0 − T) / (k_B·T·T0))
//
// Temperatures are in Kelvin. Inputs are not validated: a non-positive
// temperature yields the IEEE result of the expression. Use
// [ValidateKelvin] when inputs come from users.
package allometry

import (
	"fmt"
	"math"
)

const (
	// Beta is the body-mass exponent of carrying capacity.
	Beta = 0.28
	// ActivationEnergy E_k in eV.
	ActivationEnergy = 0.71
	// ReferenceTemperature T0 in Kelvin (20 °C).
	ReferenceTemperature = 293.15
	// Boltzmann constant k_B in eV/K.
	Boltzmann = 8.617e-5
)

// CarryingCapacity evaluates K(M, k0, T).
func CarryingCapacity(mass, k0, temperature float64) float64 {
	return k0 * math.Pow(mass, Beta) * boltzmannFactor(temperature)
}

// CarryingCapacities broadcasts CarryingCapacity over a vector of masses.
func CarryingCapacities(masses []float64, k0, temperature float64) []float64 {
	out := make([]float64, len(masses))
	f := boltzmannFactor(temperature)
	for i, m := range masses {
		out[i] = k0 * math.Pow(m, Beta) * f
	}
	return out
}

// CarryingCapacityGrid evaluates the law elementwise over paired masses and
// temperatures. Both slices must have the same length.
func CarryingCapacityGrid(masses, temperatures []float64, k0 float64) ([]float64, error) {
	if len(masses) != len(temperatures) {
		return nil, fmt.Errorf("allometry: %d masses but %d temperatures", len(masses), len(temperatures))
	}
	out := make([]float64, len(masses))
	for i := range masses {
		out[i] = CarryingCapacity(masses[i], k0, temperatures[i])
	}
	return out, nil
}

// ValidateKelvin reports temperatures that cannot be absolute temperatures.
func ValidateKelvin(temperature float64) error {
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return fmt.Errorf("allometry: temperature must be a positive Kelvin value, got %v", temperature)
	}
	return nil
}

// CelsiusToKelvin converts °C to K.
func CelsiusToKelvin(c float64) float64 { return c + 273.15 }

func boltzmannFactor(temperature float64) float64 {
	return math.Exp(ActivationEnergy * (ReferenceTemperature - temperature) / (Boltzmann * temperature * ReferenceTemperature))
}
