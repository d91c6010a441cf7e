package bioenergetic

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/integrators"
)

type SimConfig struct {
	dynamo.Config
	// Integrator defaults to RK4 when nil.
	Integrator dynamo.Integrator
	Metrics    []dynamo.Metric
	Verbose    bool
	Logger     *slog.Logger
}

func DefaultSimConfig() SimConfig {
	return SimConfig{Config: dynamo.DefaultConfig()}
}

// Simulate integrates the web described by p from initial biomass b0 up to
// cfg.Duration.
func Simulate(ctx context.Context, p Params, b0 []float64, cfg SimConfig) (*dynamo.Result, error) {
	if len(b0) != p.Web.Richness() {
		return nil, fmt.Errorf("%w: %d initial biomasses for %d species", dynamo.ErrDimensionMismatch, len(b0), p.Web.Richness())
	}
	for i, b := range b0 {
		if b < 0 {
			return nil, fmt.Errorf("%w: negative initial biomass %v for species %d", dynamo.ErrParameterBounds, b, i)
		}
	}

	integ := cfg.Integrator
	if integ == nil {
		integ = integrators.NewRK4()
	}

	s := dynamo.New(NewModel(p), integ)
	for _, m := range cfg.Metrics {
		s.AddMetric(m)
	}
	if cfg.Verbose {
		logger := cfg.Logger
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		s.AddObserver(&extinctionLogger{logger: logger})
	}

	return s.Run(ctx, dynamo.State(b0), cfg.Config)
}

// InitialBiomass draws S uniform biomasses in [lo, hi).
func InitialBiomass(rng *rand.Rand, s int, lo, hi float64) []float64 {
	b := make([]float64, s)
	for i := range b {
		b[i] = lo + rng.Float64()*(hi-lo)
	}
	return b
}

type extinctionLogger struct {
	logger *slog.Logger
	alive  []bool
}

func (e *extinctionLogger) OnStep(x dynamo.State, t float64) {
	if e.alive == nil {
		e.alive = make([]bool, len(x))
		for i, v := range x {
			e.alive[i] = v > 0
		}
		return
	}
	for i, v := range x {
		if e.alive[i] && v == 0 {
			e.logger.Info("species extinct", "species", i, "t", t)
		}
		e.alive[i] = v > 0
	}
}
