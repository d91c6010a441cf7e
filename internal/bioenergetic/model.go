package bioenergetic

import (
	"fmt"
	"math"

	"github.com/san-kum/foodweb/internal/dynamo"
)

// Model adapts Params to dynamo.System.
type Model struct {
	p     Params
	prey  [][]int
	preds [][]int
	bh    dynamo.State
}

func NewModel(p Params) *Model {
	s := p.Web.Richness()
	m := &Model{
		p:     p,
		prey:  make([][]int, s),
		preds: make([][]int, s),
		bh:    make(dynamo.State, s),
	}
	for i := 0; i < s; i++ {
		m.prey[i] = p.Web.Prey(i)
		m.preds[i] = p.Web.Predators(i)
	}
	return m
}

func (m *Model) Params() Params { return m.p }

func (m *Model) StateDim() int { return m.p.Web.Richness() }

func (m *Model) Derive(x dynamo.State, _ float64) dynamo.State {
	s := len(x)
	p := m.p
	fr := p.Response
	b0h := math.Pow(fr.HalfSaturation, fr.Hill)

	for i, v := range x {
		m.bh[i] = math.Pow(math.Max(v, 0), fr.Hill)
	}

	total := p.producerBiomass(x)

	// Ingestion flux x_i·y_i·B_i·F_ij for every consumer i and prey j.
	dx := make(dynamo.State, s)
	for i := 0; i < s; i++ {
		bi := math.Max(x[i], 0)
		if len(m.prey[i]) == 0 {
			dx[i] += p.Growth[i] * p.growthFactor(i, x, total) * bi
			continue
		}

		denom := b0h + fr.Interference*bi*b0h
		for _, j := range m.prey[i] {
			denom += p.Preference[i][j] * m.bh[j]
		}

		dx[i] -= p.Metabolic[i] * bi
		if denom == 0 {
			continue
		}
		for _, j := range m.prey[i] {
			flux := p.Metabolic[i] * p.Consumption[i] * bi * p.Preference[i][j] * m.bh[j] / denom
			dx[i] += flux
			dx[j] -= flux / p.Efficiency[i][j]
		}
	}

	return dx
}

// Project zeroes biomass under the extinction threshold.
func (m *Model) Project(x dynamo.State) dynamo.State {
	for i, v := range x {
		if v < m.p.Extinction {
			x[i] = 0
		}
	}
	return x
}

func (m *Model) GetParams() map[string]float64 {
	k := m.p.SystemK
	if m.p.Productivity == SpeciesSpecific {
		for _, i := range m.p.Web.Producers() {
			k = m.p.K[i]
			break
		}
	}
	return map[string]float64{
		"K":    k,
		"hill": m.p.Response.Hill,
		"B0":   m.p.Response.HalfSaturation,
		"c":    m.p.Response.Interference,
	}
}

// SetEnvironment replaces the carrying capacities of the model.
func (m *Model) SetEnvironment(env Environment) error {
	p, err := m.p.WithK(env)
	if err != nil {
		return err
	}
	m.p = p
	return nil
}

// Checkpoint captures the full parameter set. The returned func puts it
// back, including per-producer K vectors that GetParams reports as one value.
func (m *Model) Checkpoint() func() error {
	saved := m.p
	return func() error {
		m.p = saved
		return nil
	}
}

// SetParam changes a parameter in place. Setting "K" applies one value to
// every producer under the current productivity mode.
func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "K":
		return m.SetEnvironment(Environment{K: []float64{value}, Productivity: m.p.Productivity})
	case "hill":
		if value < 1 {
			return fmt.Errorf("%w: hill exponent must be >= 1", dynamo.ErrParameterBounds)
		}
		m.p.Response.Hill = value
	case "B0":
		if value <= 0 {
			return fmt.Errorf("%w: half-saturation must be positive", dynamo.ErrParameterBounds)
		}
		m.p.Response.HalfSaturation = value
	case "c":
		m.p.Response.Interference = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
