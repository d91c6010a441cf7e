package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
	"github.com/san-kum/foodweb/internal/metrics"
)

type Config struct {
	Topology             string
	Species              int
	Connectance          float64
	ConnectanceTolerance float64
	Matrix               [][]int
	BodyMassRatio        float64
	ConsumerClass        string

	K            []float64
	Productivity string
	// Temperature in Kelvin; when positive K[0] is the intercept k0 of the
	// allometric carrying-capacity law and every producer gets its own K.
	Temperature float64

	Hill           float64
	HalfSaturation float64
	Interference   float64

	Integrator          string
	Dt                  float64
	Duration            float64
	Adaptive            bool
	Tolerance           float64
	Window              int
	Seed                int64
	ExtinctionThreshold float64

	InitialBiomass []float64
	BiomassLow     float64
	BiomassHigh    float64

	Verbose bool
}

// Experiment holds everything fixed across the runs of a study: the web,
// the initial biomass and the base parameters. Both the web and the
// initial biomass are drawn from one generator seeded with Config.Seed.
type Experiment struct {
	cfg      Config
	registry *Registry
	logger   *slog.Logger

	web    *foodweb.FoodWeb
	b0     []float64
	params bioenergetic.Params
}

func New(cfg Config, logger *slog.Logger) (*Experiment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) setup() error {
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	web, err := e.registry.BuildTopology(e.cfg, rng)
	if err != nil {
		return fmt.Errorf("build topology: %w", err)
	}
	e.web = web

	if len(e.cfg.InitialBiomass) > 0 {
		if len(e.cfg.InitialBiomass) != web.Richness() {
			return fmt.Errorf("%w: %d initial biomasses for %d species",
				dynamo.ErrDimensionMismatch, len(e.cfg.InitialBiomass), web.Richness())
		}
		e.b0 = append([]float64(nil), e.cfg.InitialBiomass...)
	} else {
		lo, hi := e.cfg.BiomassLow, e.cfg.BiomassHigh
		if hi <= lo {
			lo, hi = 0.05, 1.0
		}
		e.b0 = bioenergetic.InitialBiomass(rng, web.Richness(), lo, hi)
	}

	if len(e.cfg.K) == 0 {
		return fmt.Errorf("%w: no carrying capacity configured", dynamo.ErrParameterBounds)
	}
	env, err := e.environment(e.cfg.K)
	if err != nil {
		return err
	}
	params, err := e.newParams(env)
	if err != nil {
		return fmt.Errorf("build parameters: %w", err)
	}
	e.params = params

	e.logger.Debug("experiment ready", "web", web.String(), "seed", e.cfg.Seed)
	return nil
}

func (e *Experiment) newParams(env bioenergetic.Environment) (bioenergetic.Params, error) {
	fr := bioenergetic.DefaultFunctionalResponse()
	if e.cfg.Hill != 0 {
		fr.Hill = e.cfg.Hill
	}
	if e.cfg.HalfSaturation != 0 {
		fr.HalfSaturation = e.cfg.HalfSaturation
	}
	fr.Interference = e.cfg.Interference

	class, ok := allometry.ParseClass(e.cfg.ConsumerClass)
	if !ok {
		return bioenergetic.Params{}, fmt.Errorf("%w: unknown consumer class %q", dynamo.ErrParameterBounds, e.cfg.ConsumerClass)
	}

	opts := []bioenergetic.Option{bioenergetic.WithConsumerClass(class)}
	if e.cfg.ExtinctionThreshold > 0 {
		opts = append(opts, bioenergetic.WithExtinctionThreshold(e.cfg.ExtinctionThreshold))
	}
	return bioenergetic.NewParams(e.web, env, fr, opts...)
}

// environment turns configured K values into an Environment, applying the
// temperature law when a temperature is set.
func (e *Experiment) environment(k []float64) (bioenergetic.Environment, error) {
	mode, err := bioenergetic.ParseProductivity(e.cfg.Productivity)
	if err != nil {
		return bioenergetic.Environment{}, err
	}
	if e.cfg.Temperature <= 0 {
		return bioenergetic.Environment{K: append([]float64(nil), k...), Productivity: mode}, nil
	}

	k0 := k[0]
	if mode == bioenergetic.SystemWide {
		return bioenergetic.SystemK(allometry.CarryingCapacity(1, k0, e.cfg.Temperature)), nil
	}
	masses := make([]float64, 0)
	for _, p := range e.web.Producers() {
		masses = append(masses, e.web.BodyMass(p))
	}
	return bioenergetic.SpeciesK(allometry.CarryingCapacities(masses, k0, e.cfg.Temperature)...), nil
}

// ParamsFor returns the base parameters with a single swept K value.
func (e *Experiment) ParamsFor(k float64) (bioenergetic.Params, error) {
	env, err := e.environment([]float64{k})
	if err != nil {
		return bioenergetic.Params{}, err
	}
	return e.params.WithK(env)
}

func (e *Experiment) SimConfig() (bioenergetic.SimConfig, error) {
	name := e.cfg.Integrator
	if name == "" {
		name = "rk4"
	}
	integ, err := e.registry.GetIntegrator(name)
	if err != nil {
		return bioenergetic.SimConfig{}, err
	}

	cfg := bioenergetic.DefaultSimConfig()
	if e.cfg.Dt > 0 {
		cfg.Dt = e.cfg.Dt
	}
	if e.cfg.Duration > 0 {
		cfg.Duration = e.cfg.Duration
	}
	if e.cfg.Tolerance > 0 {
		cfg.Tolerance = e.cfg.Tolerance
	}
	cfg.Adaptive = e.cfg.Adaptive
	cfg.Seed = e.cfg.Seed
	cfg.Integrator = integ
	cfg.Verbose = e.cfg.Verbose
	cfg.Logger = e.logger
	return cfg, nil
}

// Run simulates the base parameters.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	return e.RunWith(ctx, e.params)
}

func (e *Experiment) RunWith(ctx context.Context, p bioenergetic.Params) (*dynamo.Result, error) {
	cfg, err := e.SimConfig()
	if err != nil {
		return nil, err
	}
	cfg.Metrics = []dynamo.Metric{metrics.NewExtinctions()}
	return bioenergetic.Simulate(ctx, p, e.InitialBiomass(), cfg)
}

func (e *Experiment) Summarize(res *dynamo.Result, p bioenergetic.Params) metrics.Summary {
	return metrics.Summarize(res, p, e.Window())
}

// Window is the number of trailing states summarised; 0 means all.
func (e *Experiment) Window() int { return e.cfg.Window }

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Web() *foodweb.FoodWeb { return e.web }

func (e *Experiment) Params() bioenergetic.Params { return e.params }

func (e *Experiment) InitialBiomass() []float64 { return append([]float64(nil), e.b0...) }
