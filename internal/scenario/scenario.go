package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/experiment"
	"github.com/san-kum/foodweb/internal/metrics"
)

// Scenario is a scripted sequence of enrichment phases. Every phase starts
// from the final biomass of the one before, so raising and then lowering K
// shows whether the web returns to its earlier state.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Phases      []Phase `yaml:"phases"`
}

type Phase struct {
	Name string  `yaml:"name"`
	K    float64 `yaml:"k"`
	// Duration falls back to the experiment's duration when zero.
	Duration float64 `yaml:"duration"`
	// Params are passed to the model's SetParam (hill, B0, c).
	Params map[string]float64 `yaml:"params,omitempty"`
}

type PhaseResult struct {
	Phase   Phase
	Start   float64
	Result  *dynamo.Result
	Summary metrics.Summary
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return errors.New("scenario has no phases")
	}
	var errs []error
	for i, p := range s.Phases {
		if !(p.K > 0) {
			errs = append(errs, fmt.Errorf("phase %d: k must be positive, got %g", i+1, p.K))
		}
		if p.Duration < 0 {
			errs = append(errs, fmt.Errorf("phase %d: negative duration", i+1))
		}
	}
	return errors.Join(errs...)
}

// Run plays every phase of sc on the web of exp in order.
func Run(ctx context.Context, exp *experiment.Experiment, sc *Scenario, logger *slog.Logger) ([]PhaseResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	simCfg, err := exp.SimConfig()
	if err != nil {
		return nil, err
	}

	state := exp.InitialBiomass()
	start := 0.0
	results := make([]PhaseResult, 0, len(sc.Phases))
	for i, phase := range sc.Phases {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err)
		}

		p, err := exp.ParamsFor(phase.K)
		if err != nil {
			return results, fmt.Errorf("phase %d: %w", i+1, err)
		}
		model := bioenergetic.NewModel(p)
		for name, v := range phase.Params {
			if err := model.SetParam(name, v); err != nil {
				return results, fmt.Errorf("phase %d: %w", i+1, err)
			}
		}
		p = model.Params()

		cfg := simCfg
		if phase.Duration > 0 {
			cfg.Duration = phase.Duration
		}
		res, err := bioenergetic.Simulate(ctx, p, state, cfg)
		if err != nil {
			return results, fmt.Errorf("phase %d (K=%g): %w", i+1, phase.K, err)
		}

		summary := metrics.Summarize(res, p, exp.Window())
		logger.Info("phase done", "phase", i+1, "name", phase.Name, "k", phase.K,
			"biomass", summary.Biomass, "persistence", summary.Persistence, "cv", summary.Variability)

		results = append(results, PhaseResult{Phase: phase, Start: start, Result: res, Summary: summary})
		start += cfg.Duration
		state = res.Final().Clone()
	}
	return results, nil
}
