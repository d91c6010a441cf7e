package config

import "sort"

// Presets are ready-made studies selectable by name.
var Presets = map[string]*Config{
	// Producer and one consumer: the textbook paradox of enrichment.
	"rosenzweig": {
		Topology: "chain", Species: 2, BodyMassRatio: 1, ConsumerClass: "invertebrate",
		K: []float64{0.5}, Productivity: "species", Integrator: "rk4",
		Dt: 0.1, Duration: 1500, Window: 2000, ExtinctionThreshold: 1e-6,
		Response:       ResponseConfig{Hill: 1, HalfSaturation: 0.5},
		InitialBiomass: []float64{0.1, 0.1},
		Sweep:          SweepConfig{Start: 0.1, Stop: 2, Step: 0.05, ContinueOnError: true},
	},
	"chain": {
		Topology: "chain", Species: 3, BodyMassRatio: 10, ConsumerClass: "invertebrate",
		K: []float64{1}, Productivity: "species", Integrator: "rk4",
		Dt: 0.1, Duration: 3000, Window: 2000, ExtinctionThreshold: 1e-6,
		Response:       ResponseConfig{Hill: 1.2, HalfSaturation: 0.5},
		InitialBiomass: []float64{0.5, 0.2, 0.1},
		Sweep:          SweepConfig{Start: 0.25, Stop: 5, Points: 20},
	},
	"niche": {
		Topology: "niche", Species: 20, Connectance: 0.15, BodyMassRatio: 100, ConsumerClass: "invertebrate",
		K: []float64{1}, Productivity: "species", Integrator: "rk4",
		Dt: 0.1, Duration: 2000, Window: 1000, Seed: 1, ExtinctionThreshold: 1e-6,
		Response: ResponseConfig{Hill: 1.2, HalfSaturation: 0.5},
		Sweep:    SweepConfig{Start: 0.5, Stop: 10, Points: 20, ContinueOnError: true},
	},
	// Two producers sharing one K under a common grazer.
	"competition": {
		Topology: "matrix", BodyMassRatio: 1, ConsumerClass: "invertebrate",
		Matrix: [][]int{
			{0, 0, 0},
			{0, 0, 0},
			{1, 1, 0},
		},
		K: []float64{1}, Productivity: "system", Integrator: "rk4",
		Dt: 0.1, Duration: 2000, Window: 1000, ExtinctionThreshold: 1e-6,
		Response:       ResponseConfig{Hill: 1, HalfSaturation: 0.5},
		InitialBiomass: []float64{0.3, 0.2, 0.1},
		Sweep:          SweepConfig{Start: 0.25, Stop: 4, Points: 16},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
