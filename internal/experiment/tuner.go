package experiment

import (
	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
)

// Tuner is the experiment's model as a tunable system. Setting "K" goes
// through the same environment as ParamsFor, so with a temperature set the
// value is the intercept k0 rather than a raw carrying capacity.
type Tuner struct {
	exp   *Experiment
	model *bioenergetic.Model
	k     float64
}

func (e *Experiment) Tuner() *Tuner {
	return &Tuner{exp: e, model: bioenergetic.NewModel(e.params), k: e.cfg.K[0]}
}

func (t *Tuner) Model() *bioenergetic.Model { return t.model }

func (t *Tuner) StateDim() int { return t.model.StateDim() }

func (t *Tuner) Derive(x dynamo.State, time float64) dynamo.State { return t.model.Derive(x, time) }

func (t *Tuner) Project(x dynamo.State) dynamo.State { return t.model.Project(x) }

// GetParams reports K as last set on the tuner, not the resolved capacity.
func (t *Tuner) GetParams() map[string]float64 {
	params := t.model.GetParams()
	params["K"] = t.k
	return params
}

func (t *Tuner) SetParam(name string, value float64) error {
	if name != "K" {
		return t.model.SetParam(name, value)
	}
	env, err := t.exp.environment([]float64{value})
	if err != nil {
		return err
	}
	if err := t.model.SetEnvironment(env); err != nil {
		return err
	}
	t.k = value
	return nil
}

func (t *Tuner) Checkpoint() func() error {
	restore := t.model.Checkpoint()
	k := t.k
	return func() error {
		t.k = k
		return restore()
	}
}
