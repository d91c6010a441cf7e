package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/foodweb/internal/experiment"
	"github.com/san-kum/foodweb/internal/sweep"
)

const (
	DefaultTopology    = "niche"
	DefaultSpecies     = 10
	DefaultConnectance = 0.15
	DefaultK           = 1.0
	DefaultDt          = 0.1
	DefaultDuration    = 2000.0
	DefaultWindow      = 1000
	DefaultSweepStart  = 0.1
	DefaultSweepStop   = 5.0
	DefaultSweepPoints = 20

	EnvPrefix = "FOODWEB"
)

type Config struct {
	Topology            string         `yaml:"topology" mapstructure:"topology"`
	Species             int            `yaml:"species" mapstructure:"species"`
	Connectance         float64        `yaml:"connectance" mapstructure:"connectance"`
	Matrix              [][]int        `yaml:"matrix,omitempty" mapstructure:"matrix"`
	BodyMassRatio       float64        `yaml:"body_mass_ratio" mapstructure:"body_mass_ratio"`
	ConsumerClass       string         `yaml:"consumer_class" mapstructure:"consumer_class"`
	K                   []float64      `yaml:"k,flow" mapstructure:"k"`
	Productivity        string         `yaml:"productivity" mapstructure:"productivity"`
	Temperature         float64        `yaml:"temperature,omitempty" mapstructure:"temperature"`
	Response            ResponseConfig `yaml:"response" mapstructure:"response"`
	Integrator          string         `yaml:"integrator" mapstructure:"integrator"`
	Dt                  float64        `yaml:"dt" mapstructure:"dt"`
	Duration            float64        `yaml:"duration" mapstructure:"duration"`
	Adaptive            bool           `yaml:"adaptive" mapstructure:"adaptive"`
	Tolerance           float64        `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	Window              int            `yaml:"window" mapstructure:"window"`
	Seed                int64          `yaml:"seed" mapstructure:"seed"`
	ExtinctionThreshold float64        `yaml:"extinction_threshold" mapstructure:"extinction_threshold"`
	InitialBiomass      []float64      `yaml:"initial_biomass,omitempty,flow" mapstructure:"initial_biomass"`
	Sweep               SweepConfig    `yaml:"sweep" mapstructure:"sweep"`
}

type ResponseConfig struct {
	Hill           float64 `yaml:"hill" mapstructure:"hill"`
	HalfSaturation float64 `yaml:"half_saturation" mapstructure:"half_saturation"`
	Interference   float64 `yaml:"interference" mapstructure:"interference"`
}

// SweepConfig describes the K values of a sweep. Step takes precedence
// over Points when both are set.
type SweepConfig struct {
	Start           float64 `yaml:"start" mapstructure:"start"`
	Stop            float64 `yaml:"stop" mapstructure:"stop"`
	Step            float64 `yaml:"step,omitempty" mapstructure:"step"`
	Points          int     `yaml:"points,omitempty" mapstructure:"points"`
	ContinueOnError bool    `yaml:"continue_on_error" mapstructure:"continue_on_error"`
}

func DefaultConfig() *Config {
	return &Config{
		Topology:            DefaultTopology,
		Species:             DefaultSpecies,
		Connectance:         DefaultConnectance,
		BodyMassRatio:       1,
		ConsumerClass:       "invertebrate",
		K:                   []float64{DefaultK},
		Productivity:        "species",
		Integrator:          "rk4",
		Dt:                  DefaultDt,
		Duration:            DefaultDuration,
		Window:              DefaultWindow,
		ExtinctionThreshold: 1e-6,
		Response: ResponseConfig{
			Hill:           1,
			HalfSaturation: 0.5,
		},
		Sweep: SweepConfig{
			Start:  DefaultSweepStart,
			Stop:   DefaultSweepStop,
			Points: DefaultSweepPoints,
		},
	}
}

// Load reads a YAML config on top of the defaults. An empty path loads the
// defaults alone. FOODWEB_* environment variables override both, with
// nested keys joined by underscores (FOODWEB_RESPONSE_HILL). Unknown keys
// in the file are an error. List values such as k may be given in the
// environment as comma-separated strings.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	strict := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err := v.Unmarshal(cfg, strict); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key with v so AutomaticEnv can find it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("topology", cfg.Topology)
	v.SetDefault("species", cfg.Species)
	v.SetDefault("connectance", cfg.Connectance)
	v.SetDefault("body_mass_ratio", cfg.BodyMassRatio)
	v.SetDefault("consumer_class", cfg.ConsumerClass)
	v.SetDefault("k", cfg.K)
	v.SetDefault("productivity", cfg.Productivity)
	v.SetDefault("temperature", cfg.Temperature)
	v.SetDefault("response.hill", cfg.Response.Hill)
	v.SetDefault("response.half_saturation", cfg.Response.HalfSaturation)
	v.SetDefault("response.interference", cfg.Response.Interference)
	v.SetDefault("integrator", cfg.Integrator)
	v.SetDefault("dt", cfg.Dt)
	v.SetDefault("duration", cfg.Duration)
	v.SetDefault("adaptive", cfg.Adaptive)
	v.SetDefault("tolerance", cfg.Tolerance)
	v.SetDefault("window", cfg.Window)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("extinction_threshold", cfg.ExtinctionThreshold)
	v.SetDefault("sweep.start", cfg.Sweep.Start)
	v.SetDefault("sweep.stop", cfg.Sweep.Stop)
	v.SetDefault("sweep.step", cfg.Sweep.Step)
	v.SetDefault("sweep.points", cfg.Sweep.Points)
	v.SetDefault("sweep.continue_on_error", cfg.Sweep.ContinueOnError)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Dt <= 0 {
		errs = append(errs, errors.New("dt must be positive"))
	}
	if c.Duration <= 0 {
		errs = append(errs, errors.New("duration must be positive"))
	}
	if len(c.K) == 0 {
		errs = append(errs, errors.New("k must not be empty"))
	}
	if c.Window < 0 {
		errs = append(errs, errors.New("window must be non-negative"))
	}
	if c.Topology == "matrix" && len(c.Matrix) == 0 {
		errs = append(errs, errors.New("matrix topology needs a matrix"))
	}
	if c.Topology != "matrix" && c.Species < 1 {
		errs = append(errs, errors.New("species must be at least 1"))
	}
	return errors.Join(errs...)
}

// Experiment converts the config to the experiment layer's representation.
func (c *Config) Experiment() experiment.Config {
	return experiment.Config{
		Topology:            c.Topology,
		Species:             c.Species,
		Connectance:         c.Connectance,
		Matrix:              c.Matrix,
		BodyMassRatio:       c.BodyMassRatio,
		ConsumerClass:       c.ConsumerClass,
		K:                   append([]float64(nil), c.K...),
		Productivity:        c.Productivity,
		Temperature:         c.Temperature,
		Hill:                c.Response.Hill,
		HalfSaturation:      c.Response.HalfSaturation,
		Interference:        c.Response.Interference,
		Integrator:          c.Integrator,
		Dt:                  c.Dt,
		Duration:            c.Duration,
		Adaptive:            c.Adaptive,
		Tolerance:           c.Tolerance,
		Window:              c.Window,
		Seed:                c.Seed,
		ExtinctionThreshold: c.ExtinctionThreshold,
		InitialBiomass:      append([]float64(nil), c.InitialBiomass...),
	}
}

// SweepValues expands the sweep section into K values.
func (c *Config) SweepValues() ([]float64, error) {
	if c.Sweep.Step > 0 {
		return sweep.Range(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Step)
	}
	return sweep.Linspace(c.Sweep.Start, c.Sweep.Stop, c.Sweep.Points)
}

func (c *Config) Clone() *Config {
	out := *c
	out.K = append([]float64(nil), c.K...)
	out.InitialBiomass = append([]float64(nil), c.InitialBiomass...)
	if c.Matrix != nil {
		out.Matrix = make([][]int, len(c.Matrix))
		for i, row := range c.Matrix {
			out.Matrix[i] = append([]int(nil), row...)
		}
	}
	return &out
}
