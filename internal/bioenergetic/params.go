package bioenergetic

import (
	"fmt"
	"math"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
)

const (
	// DefaultExtinctionThreshold is the biomass below which a species is
	// considered extinct and set to zero.
	DefaultExtinctionThreshold = 1e-6

	DefaultHerbivoreEfficiency = 0.45
	DefaultCarnivoreEfficiency = 0.85
)

// Params is the immutable parameter bundle for one simulation run. It is
// built by NewParams and passed by value; its slices must not be mutated.
type Params struct {
	Web          *foodweb.FoodWeb
	Env          Environment
	Response     FunctionalResponse
	Classes      []allometry.Class
	K            []float64
	SystemK      float64
	Growth       []float64
	Metabolic    []float64
	Consumption  []float64
	Efficiency   [][]float64
	Preference   [][]float64
	Extinction   float64
	Productivity Productivity
}

type paramsConfig struct {
	consumerClass allometry.Class
	classes       []allometry.Class
	herbivore     float64
	carnivore     float64
	extinction    float64
}

type Option func(*paramsConfig)

// WithConsumerClass sets the metabolic class of every consumer.
func WithConsumerClass(c allometry.Class) Option {
	return func(p *paramsConfig) { p.consumerClass = c }
}

// WithClasses sets per-species metabolic classes; producers are forced to
// allometry.Producer.
func WithClasses(classes []allometry.Class) Option {
	return func(p *paramsConfig) { p.classes = classes }
}

func WithEfficiency(herbivore, carnivore float64) Option {
	return func(p *paramsConfig) {
		p.herbivore = herbivore
		p.carnivore = carnivore
	}
}

func WithExtinctionThreshold(v float64) Option {
	return func(p *paramsConfig) { p.extinction = v }
}

// NewParams derives allometric rates from the web's body masses and checks
// the environment and functional response against the web.
func NewParams(web *foodweb.FoodWeb, env Environment, fr FunctionalResponse, opts ...Option) (Params, error) {
	cfg := paramsConfig{
		consumerClass: allometry.Invertebrate,
		herbivore:     DefaultHerbivoreEfficiency,
		carnivore:     DefaultCarnivoreEfficiency,
		extinction:    DefaultExtinctionThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := web.Richness()
	if err := fr.validate(s); err != nil {
		return Params{}, err
	}
	if cfg.extinction < 0 {
		return Params{}, fmt.Errorf("%w: extinction threshold must be non-negative", dynamo.ErrParameterBounds)
	}
	if cfg.classes != nil && len(cfg.classes) != s {
		return Params{}, fmt.Errorf("%w: %d metabolic classes for %d species", dynamo.ErrDimensionMismatch, len(cfg.classes), s)
	}

	k, systemK, err := env.resolve(web)
	if err != nil {
		return Params{}, err
	}

	p := Params{
		Web:          web,
		Env:          env,
		Response:     fr,
		Classes:      make([]allometry.Class, s),
		K:            k,
		SystemK:      systemK,
		Growth:       make([]float64, s),
		Metabolic:    make([]float64, s),
		Consumption:  make([]float64, s),
		Efficiency:   make([][]float64, s),
		Preference:   make([][]float64, s),
		Extinction:   cfg.extinction,
		Productivity: env.Productivity,
	}

	refMass := referenceMass(web)
	for i := 0; i < s; i++ {
		m := web.BodyMass(i)
		p.Efficiency[i] = make([]float64, s)
		p.Preference[i] = make([]float64, s)

		if web.IsProducer(i) {
			p.Classes[i] = allometry.Producer
			p.Growth[i] = allometry.GrowthRate(m, refMass)
			continue
		}

		p.Classes[i] = cfg.consumerClass
		if cfg.classes != nil {
			p.Classes[i] = cfg.classes[i]
		}
		p.Metabolic[i] = allometry.MetabolicRate(m, refMass, p.Classes[i])
		p.Consumption[i] = allometry.MaxConsumption(p.Classes[i])

		prey := web.Prey(i)
		for _, j := range prey {
			if web.IsProducer(j) {
				p.Efficiency[i][j] = cfg.herbivore
			} else {
				p.Efficiency[i][j] = cfg.carnivore
			}
			if fr.Preference != nil {
				p.Preference[i][j] = fr.Preference[i][j]
			} else {
				p.Preference[i][j] = 1 / float64(len(prey))
			}
		}
	}

	return p, nil
}

// WithK returns a copy of p whose environment carries the given K values.
func (p Params) WithK(env Environment) (Params, error) {
	k, systemK, err := env.resolve(p.Web)
	if err != nil {
		return Params{}, err
	}
	p.Env = env
	p.K = k
	p.SystemK = systemK
	p.Productivity = env.Productivity
	return p, nil
}

// GrowthFactor is G_i for producer i at state x.
func (p Params) GrowthFactor(i int, x dynamo.State) float64 {
	return p.growthFactor(i, x, p.producerBiomass(x))
}

// ProducerNetGrowth returns r_i·G_i·B_i for every producer, in producer order.
func (p Params) ProducerNetGrowth(x dynamo.State) []float64 {
	producers := p.Web.Producers()
	total := p.producerBiomass(x)
	out := make([]float64, len(producers))
	for n, i := range producers {
		out[n] = p.Growth[i] * p.growthFactor(i, x, total) * x[i]
	}
	return out
}

func (p Params) growthFactor(i int, x dynamo.State, producerTotal float64) float64 {
	if p.Productivity == SystemWide {
		return 1 - producerTotal/p.SystemK
	}
	return 1 - x[i]/p.K[i]
}

// producerBiomass is ΣB_p, only needed under system-wide productivity.
func (p Params) producerBiomass(x dynamo.State) float64 {
	if p.Productivity != SystemWide {
		return 0
	}
	total := 0.0
	for _, j := range p.Web.Producers() {
		total += math.Max(x[j], 0)
	}
	return total
}

// referenceMass is the smallest producer mass, the yardstick for
// mass-specific rates.
func referenceMass(web *foodweb.FoodWeb) float64 {
	ref := math.Inf(1)
	for _, i := range web.Producers() {
		ref = math.Min(ref, web.BodyMass(i))
	}
	return ref
}
