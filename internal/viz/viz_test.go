package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/foodweb"
	"github.com/san-kum/foodweb/internal/integrators"
	"github.com/san-kum/foodweb/internal/sweep"
)

func records() []sweep.Record {
	return []sweep.Record{
		{K: 0.5, Biomass: 0.16, Persistence: 1, Growth: 0.02, Variability: 0},
		{K: 1, Biomass: 0.19, Persistence: 1, Growth: 0.05, Variability: 1.1},
		{K: 2, Biomass: math.NaN(), Persistence: math.NaN(), Growth: math.NaN(), Variability: math.NaN(), Err: errors.New("failed")},
		{K: 3, Biomass: 0, Persistence: 0, Growth: 0, Variability: math.NaN()},
	}
}

func TestSweepPlots(t *testing.T) {
	out, err := SweepPlots(records())
	if err != nil {
		t.Fatal(err)
	}
	for _, caption := range []string{"total biomass", "producer growth", "persistence"} {
		if !strings.Contains(out, caption) {
			t.Errorf("missing %q plot", caption)
		}
	}
}

func TestSweepPlotsEmpty(t *testing.T) {
	if _, err := SweepPlots(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestSweepPlotsSingleAndFailed(t *testing.T) {
	single := []sweep.Record{{K: 1, Biomass: 2, Persistence: 1, Growth: 0.1}}
	if _, err := SweepPlots(single); err != nil {
		t.Errorf("single record: %v", err)
	}

	failed := []sweep.Record{{K: 1, Biomass: math.NaN(), Persistence: math.NaN(), Growth: math.NaN(), Err: errors.New("x")}}
	out, err := SweepPlots(failed)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no data") {
		t.Errorf("expected no data marker:\n%s", out)
	}
}

func TestSweepTable(t *testing.T) {
	out := SweepTable(records())
	if !strings.Contains(out, "persistence") || !strings.Contains(out, "failed") {
		t.Errorf("unexpected table:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got < len(records())+2 {
		t.Errorf("table has %d lines", got)
	}
}

func TestTrajectoryPlot(t *testing.T) {
	res := &dynamo.Result{States: []dynamo.State{{1, 0.5}, {0.8, 0.6}, {0.7, 0.7}}}

	out, err := TrajectoryPlot(res, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "B0") || !strings.Contains(out, "B1") {
		t.Errorf("missing legends:\n%s", out)
	}

	if _, err := TrajectoryPlot(res, []int{3}, 0); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("err = %v", err)
	}
	if _, err := TrajectoryPlot(&dynamo.Result{}, nil, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v", err)
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	if out := SparklineChart([]float64{1, 2, 3}, 10); out == "" {
		t.Error("expected sparkline output")
	}
}

func liveModel(t *testing.T) Live {
	t.Helper()
	web, err := foodweb.Chain(2)
	if err != nil {
		t.Fatal(err)
	}
	p, err := bioenergetic.NewParams(web, bioenergetic.SpeciesK(1), bioenergetic.DefaultFunctionalResponse())
	if err != nil {
		t.Fatal(err)
	}
	return NewLive(bioenergetic.NewModel(p), integrators.NewRK4(), []float64{0.5, 0.2}, 0.1, 5, "chain")
}

func TestLiveTick(t *testing.T) {
	m := liveModel(t)
	if m.Init() == nil {
		t.Fatal("expected tick command")
	}

	next, cmd := m.Update(TickMsg{})
	if cmd == nil {
		t.Error("tick should schedule another tick")
	}
	m = next.(Live)
	if _, now := m.State(); math.Abs(now-0.5) > 1e-9 {
		t.Errorf("t = %v, want 0.5 after 5 steps", now)
	}
	if !strings.Contains(m.View(), "CHAIN") {
		t.Error("view missing title")
	}
}

func TestLivePauseReset(t *testing.T) {
	m := liveModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Live)
	next, _ = m.Update(TickMsg{})
	m = next.(Live)
	if _, now := m.State(); now != 0 {
		t.Errorf("paused model advanced to %v", now)
	}

	m.running = true
	next, _ = m.Update(TickMsg{})
	m = next.(Live)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Live)
	state, now := m.State()
	if now != 0 || state[0] != 0.5 {
		t.Errorf("reset gave t=%v state=%v", now, state)
	}
}

func TestLiveTune(t *testing.T) {
	m := liveModel(t)
	if len(m.paramKeys) == 0 || m.paramKeys[0] != "B0" {
		t.Fatalf("param keys = %v", m.paramKeys)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Live)
	if got := m.params["B0"]; math.Abs(got-0.525) > 1e-12 {
		t.Errorf("B0 = %v, want 0.525", got)
	}
}

func TestLiveQuit(t *testing.T) {
	m := liveModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
