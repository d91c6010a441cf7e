package experiment

import (
	"math"
	"testing"

	"github.com/san-kum/foodweb/internal/allometry"
)

func TestTunerKFollowsTemperature(t *testing.T) {
	cfg := chainConfig()
	cfg.Temperature = allometry.CelsiusToKelvin(30)
	e, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	tuner := e.Tuner()
	if err := tuner.SetParam("K", 2); err != nil {
		t.Fatal(err)
	}
	want, err := e.ParamsFor(2)
	if err != nil {
		t.Fatal(err)
	}
	got := tuner.Model().Params()
	if math.Abs(got.K[0]-want.K[0]) > 1e-12 {
		t.Errorf("tuned K[0] = %v, sweep K[0] = %v", got.K[0], want.K[0])
	}
	if got.K[0] >= 2 {
		t.Errorf("K[0] = %v, want the warm-water capacity below k0 = 2", got.K[0])
	}
	if k := tuner.GetParams()["K"]; k != 2 {
		t.Errorf("GetParams K = %v, want 2", k)
	}
}

func TestTunerCheckpoint(t *testing.T) {
	e, err := New(chainConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	tuner := e.Tuner()
	restore := tuner.Checkpoint()

	if err := tuner.SetParam("K", 4); err != nil {
		t.Fatal(err)
	}
	if err := tuner.SetParam("hill", 1.2); err != nil {
		t.Fatal(err)
	}
	if err := restore(); err != nil {
		t.Fatal(err)
	}

	p := tuner.GetParams()
	if p["K"] != 0.5 || p["hill"] != 1 {
		t.Errorf("after restore: %v", p)
	}
	if k := tuner.Model().Params().K[0]; k != 0.5 {
		t.Errorf("model K[0] = %v", k)
	}
}
