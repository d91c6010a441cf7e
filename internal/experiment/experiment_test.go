package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/dynamo"
)

func chainConfig() Config {
	return Config{
		Topology:      "chain",
		Species:       2,
		ConsumerClass: "invertebrate",
		K:             []float64{0.5},
		Integrator:    "rk4",
		Dt:            0.1,
		Duration:      50,
		Window:        100,
		Seed:          7,
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if got := r.ListTopologies(); len(got) != 3 || got[0] != "chain" {
		t.Errorf("topologies = %v", got)
	}
	if got := r.ListIntegrators(); len(got) != 3 || got[0] != "euler" {
		t.Errorf("integrators = %v", got)
	}
	if _, err := r.GetIntegrator("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestNewUnknownTopology(t *testing.T) {
	cfg := chainConfig()
	cfg.Topology = "lattice"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresK(t *testing.T) {
	cfg := chainConfig()
	cfg.K = nil
	_, err := New(cfg, nil)
	if !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Fatalf("err = %v, want ErrParameterBounds", err)
	}
}

func TestInitialBiomassSeeded(t *testing.T) {
	a, err := New(chainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(chainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	x, y := a.InitialBiomass(), b.InitialBiomass()
	for i := range x {
		if x[i] != y[i] {
			t.Fatalf("initial biomass differs at %d: %v vs %v", i, x[i], y[i])
		}
		if x[i] < 0.05 || x[i] >= 1 {
			t.Errorf("b0[%d] = %v outside [0.05, 1)", i, x[i])
		}
	}

	x[0] = -1
	if a.InitialBiomass()[0] == -1 {
		t.Error("InitialBiomass must return a copy")
	}
}

func TestExplicitInitialBiomass(t *testing.T) {
	cfg := chainConfig()
	cfg.InitialBiomass = []float64{0.3}
	if _, err := New(cfg, nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}

	cfg.InitialBiomass = []float64{0.3, 0.2}
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b := e.InitialBiomass(); b[0] != 0.3 || b[1] != 0.2 {
		t.Errorf("b0 = %v", b)
	}
}

func TestParamsFor(t *testing.T) {
	e, err := New(chainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := e.ParamsFor(2)
	if err != nil {
		t.Fatal(err)
	}
	if p.K[0] != 2 {
		t.Errorf("K[0] = %v, want 2", p.K[0])
	}
	if e.Params().K[0] != 0.5 {
		t.Error("ParamsFor must not change the base parameters")
	}
}

func TestParamsForTemperature(t *testing.T) {
	cfg := chainConfig()
	cfg.Temperature = allometry.ReferenceTemperature
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	p, err := e.ParamsFor(3)
	if err != nil {
		t.Fatal(err)
	}
	want := 3 * math.Pow(e.Web().BodyMass(0), allometry.Beta)
	if math.Abs(p.K[0]-want) > 1e-12 {
		t.Errorf("K[0] = %v, want %v", p.K[0], want)
	}
}

func TestRun(t *testing.T) {
	e, err := New(chainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 500 {
		t.Errorf("steps = %d, want 500", res.StepsTaken)
	}
	if _, ok := res.Metrics["extinctions"]; !ok {
		t.Error("missing extinctions metric")
	}
	sum := e.Summarize(res, e.Params())
	if sum.Biomass <= 0 || sum.Persistence != 1 {
		t.Errorf("summary = %+v", sum)
	}
}
