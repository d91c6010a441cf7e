package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates the system from x0 until cfg.Duration. With fixed stepping
// exactly round(Duration/Dt) steps are taken; adaptive stepping clamps the
// last step so the final time equals Duration.
//
// On failure the partial trajectory is returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dim := s.dyn.StateDim(); len(x0) != dim {
		return nil, fmt.Errorf("%w: state has %d entries, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.project(x0.Clone())
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	s.observe(x, t)

	for i := 0; s.more(i, steps, t, cfg); i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		var newX State
		h := dt
		if cfg.Adaptive {
			var err error
			h = math.Min(dt, cfg.Duration-t)
			newX, h, dt, err = s.adaptiveStep(x, t, h, cfg)
			if err != nil {
				s.finish(result)
				return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
			}
		} else {
			newX = s.integrator.Step(s.dyn, x, t, dt)
		}

		if cfg.ValidateState && !newX.IsValid() {
			s.finish(result)
			return result, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		x = s.project(newX)
		if cfg.Adaptive {
			t += h
		} else {
			t = float64(i+1) * cfg.Dt
		}
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
		s.observe(x, t)
	}

	s.finish(result)
	return result, nil
}

func (s *Simulator) more(i, steps int, t float64, cfg Config) bool {
	if cfg.Adaptive {
		return cfg.Duration-t > 1e-12*cfg.Duration
	}
	return i < steps
}

// observe hands every recorded state, the final one included, to the
// metrics and observers.
func (s *Simulator) observe(x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) project(x State) State {
	if p, ok := s.dyn.(Projector); ok {
		return p.Project(x)
	}
	return x
}

// adaptiveStep returns the accepted state, the step actually taken and the
// suggested next step.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		for {
			newX, next, err := adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
			if err == nil {
				return newX, dt, math.Min(next, cfg.MaxDt), nil
			}
			if !errors.Is(err, ErrStepRejected) {
				return nil, 0, 0, err
			}
			if next < cfg.MinDt {
				return nil, 0, 0, ErrStepTooSmall
			}
			dt = next
		}
	}

	for {
		x1 := s.integrator.Step(s.dyn, x, t, dt)
		xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
		x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

		errEst := x1.Sub(x2).Norm()
		if errEst > cfg.Tolerance && dt > cfg.MinDt {
			dt /= 2
			continue
		}
		if errEst > cfg.Tolerance {
			return nil, 0, 0, ErrStepTooSmall
		}

		next := dt
		if errEst < cfg.Tolerance/10 {
			next = math.Min(dt*2, cfg.MaxDt)
		}
		return x2, dt, next, nil
	}
}
