package scenario

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/experiment"
)

const enrichment = `
name: enrich-and-recover
description: raise K past the Hopf point, then lower it again
phases:
  - name: base
    k: 0.5
    duration: 1500
  - name: enriched
    k: 0.7
    duration: 1500
  - name: recovered
    k: 0.5
    duration: 1500
`

func rosenzweig(t *testing.T) *experiment.Experiment {
	t.Helper()
	exp, err := experiment.New(experiment.Config{
		Topology:       "chain",
		Species:        2,
		K:              []float64{0.5},
		Integrator:     "rk4",
		Dt:             0.1,
		Duration:       100,
		Window:         2000,
		InitialBiomass: []float64{0.1, 0.1},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return exp
}

func TestParse(t *testing.T) {
	sc, err := Parse([]byte(enrichment))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "enrich-and-recover" || len(sc.Phases) != 3 {
		t.Fatalf("parsed %+v", sc)
	}
	if sc.Phases[1].K != 0.7 || sc.Phases[1].Duration != 1500 {
		t.Errorf("phase 2 = %+v", sc.Phases[1])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no phases", "name: empty\n"},
		{"zero k", "phases:\n  - k: 0\n"},
		{"negative duration", "phases:\n  - k: 1\n    duration: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunRecovers(t *testing.T) {
	sc, err := Parse([]byte(enrichment))
	if err != nil {
		t.Fatal(err)
	}
	results, err := Run(context.Background(), rosenzweig(t), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d phases", len(results))
	}

	base, enriched, recovered := results[0].Summary, results[1].Summary, results[2].Summary
	if base.Variability > 1e-3 {
		t.Errorf("base cv = %g, want steady state", base.Variability)
	}
	if enriched.Variability < 0.2 {
		t.Errorf("enriched cv = %g, want oscillation", enriched.Variability)
	}
	if recovered.Variability > 1e-3 {
		t.Errorf("recovered cv = %g, want steady state", recovered.Variability)
	}
	if math.Abs(recovered.Biomass-base.Biomass) > 1e-6 {
		t.Errorf("recovered biomass %g, base %g", recovered.Biomass, base.Biomass)
	}
	if results[2].Start != 3000 {
		t.Errorf("phase 3 starts at %g", results[2].Start)
	}
}

func TestRunPhaseParams(t *testing.T) {
	sc := &Scenario{Phases: []Phase{{K: 0.5, Duration: 10, Params: map[string]float64{"hill": 0.5}}}}
	_, err := Run(context.Background(), rosenzweig(t), sc, nil)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("err = %v, want ErrParameterBounds", err)
	}
}

func TestRunCanceled(t *testing.T) {
	sc, _ := Parse([]byte(enrichment))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := Run(ctx, rosenzweig(t), sc, nil)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("err = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results", len(results))
	}
}
