package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
	"github.com/san-kum/foodweb/internal/integrators"
)

type TopologyBuilder func(cfg Config, rng *rand.Rand) (*foodweb.FoodWeb, error)

type Registry struct {
	topologies  map[string]TopologyBuilder
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		topologies:  make(map[string]TopologyBuilder),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.topologies["niche"] = func(cfg Config, rng *rand.Rand) (*foodweb.FoodWeb, error) {
		opts := foodweb.DefaultNicheOptions()
		if cfg.BodyMassRatio > 0 {
			opts.BodyMassRatio = cfg.BodyMassRatio
		}
		if cfg.ConnectanceTolerance > 0 {
			opts.Tolerance = cfg.ConnectanceTolerance
		}
		return foodweb.Niche(cfg.Species, cfg.Connectance, rng, opts)
	}
	r.topologies["chain"] = func(cfg Config, _ *rand.Rand) (*foodweb.FoodWeb, error) {
		return foodweb.Chain(cfg.Species, bodyMass(cfg)...)
	}
	r.topologies["matrix"] = func(cfg Config, _ *rand.Rand) (*foodweb.FoodWeb, error) {
		return foodweb.FromMatrix(cfg.Matrix, bodyMass(cfg)...)
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }

	return r
}

func bodyMass(cfg Config) []foodweb.Option {
	if cfg.BodyMassRatio > 0 {
		return []foodweb.Option{foodweb.WithBodyMassRatio(cfg.BodyMassRatio)}
	}
	return nil
}

func (r *Registry) BuildTopology(cfg Config, rng *rand.Rand) (*foodweb.FoodWeb, error) {
	fn, ok := r.topologies[cfg.Topology]
	if !ok {
		return nil, fmt.Errorf("unknown topology: %s", cfg.Topology)
	}
	return fn(cfg, rng)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListTopologies() []string {
	return sortedKeys(r.topologies)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
