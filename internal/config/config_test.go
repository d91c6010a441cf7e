package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/foodweb/internal/experiment"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Topology != "niche" {
		t.Errorf("expected topology niche, got %s", cfg.Topology)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.K = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}

	cfg = DefaultConfig()
	cfg.Topology = "matrix"
	if err := cfg.Validate(); err == nil {
		t.Error("matrix topology without matrix should fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != DefaultDt || cfg.Window != DefaultWindow || cfg.K[0] != DefaultK {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Response.HalfSaturation != 0.5 {
		t.Errorf("half saturation = %v", cfg.Response.HalfSaturation)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.yaml")
	data := []byte(`topology: chain
species: 3
k: [0.5, 2]
response:
  hill: 1.5
sweep:
  start: 0.5
  stop: 1
  step: 0.25
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Topology != "chain" || cfg.Species != 3 {
		t.Errorf("topology = %s/%d", cfg.Topology, cfg.Species)
	}
	if len(cfg.K) != 2 || cfg.K[1] != 2 {
		t.Errorf("k = %v", cfg.K)
	}
	if cfg.Response.Hill != 1.5 || cfg.Response.HalfSaturation != 0.5 {
		t.Errorf("response = %+v", cfg.Response)
	}
	if cfg.Duration != DefaultDuration {
		t.Errorf("unset keys should keep defaults, duration = %v", cfg.Duration)
	}

	ks, err := cfg.SweepValues()
	if err != nil {
		t.Fatal(err)
	}
	if len(ks) != 3 || ks[2] != 1 {
		t.Errorf("sweep values = %v", ks)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FOODWEB_SEED", "99")
	t.Setenv("FOODWEB_RESPONSE_HILL", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.Seed)
	}
	if cfg.Response.Hill != 2 {
		t.Errorf("hill = %v, want 2", cfg.Response.Hill)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	orig := GetPreset("competition")
	if err := Save(path, orig); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Productivity != "system" || len(got.Matrix) != 3 || got.Matrix[2][1] != 1 {
		t.Errorf("loaded %+v", got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("rosenzweig")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Species != 2 || cfg.K[0] != 0.5 {
		t.Errorf("unexpected preset %+v", cfg)
	}

	cfg.K[0] = 9
	if Presets["rosenzweig"].K[0] != 0.5 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"chain", "competition", "niche", "rosenzweig"}
	if len(presets) != len(want) {
		t.Fatalf("presets = %v", presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("presets[%d] = %s, want %s", i, presets[i], want[i])
		}
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			if err := cfg.Validate(); err != nil {
				t.Fatal(err)
			}
			if _, err := experiment.New(cfg.Experiment(), nil); err != nil {
				t.Fatalf("build %s: %v", name, err)
			}
			if _, err := cfg.SweepValues(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestLoadUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(path, []byte("specis: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadEnvList(t *testing.T) {
	t.Setenv("FOODWEB_K", "0.5,2")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.K) != 2 || cfg.K[0] != 0.5 || cfg.K[1] != 2 {
		t.Errorf("k = %v", cfg.K)
	}
}
