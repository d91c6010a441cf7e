package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/config"
	"github.com/san-kum/foodweb/internal/experiment"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	topology     string
	species      int
	connectance  float64
	kValues      []float64
	productivity string
	temperature  float64
	celsius      bool
	integrator   string
	dt           float64
	duration     float64
	window       int
	seed         int64
	runName      string
	noSave       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "foodweb",
		Short:         "bio-energetic food web enrichment lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".foodweb", "data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "preset name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newRunCmd(),
		newSweepCmd(),
		newCarryingCmd(),
		newBifurcationCmd(),
		newReplicatesCmd(),
		newScenarioCmd(),
		newLiveCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCmd(),
		newPresetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		newLogger().Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// modelFlags registers the flags shared by every command that builds a web.
func modelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&topology, "topology", config.DefaultTopology, "topology (niche, chain, matrix)")
	f.IntVarP(&species, "species", "s", config.DefaultSpecies, "number of species")
	f.Float64Var(&connectance, "connectance", config.DefaultConnectance, "niche model connectance")
	f.Float64SliceVar(&kValues, "k", []float64{config.DefaultK}, "carrying capacity (one value, or one per producer)")
	f.StringVar(&productivity, "productivity", "species", "productivity mode (species, system)")
	f.Float64Var(&temperature, "temperature", 0, "temperature; k becomes the allometric intercept k0")
	f.BoolVar(&celsius, "celsius", false, "temperature is in degrees Celsius")
	f.StringVarP(&integrator, "integrator", "i", "rk4", "integrator (euler, rk4, rk45)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "time step")
	f.Float64VarP(&duration, "duration", "d", config.DefaultDuration, "simulation horizon")
	f.IntVarP(&window, "window", "w", config.DefaultWindow, "trailing steps summarised")
	f.Int64Var(&seed, "seed", 0, "random seed")
}

// loadConfig resolves the preset or config file and applies the flags the
// user set explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	} else {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("topology") {
		cfg.Topology = topology
	}
	if f.Changed("species") {
		cfg.Species = species
		cfg.InitialBiomass = nil
	}
	if f.Changed("connectance") {
		cfg.Connectance = connectance
	}
	if f.Changed("k") {
		cfg.K = kValues
	}
	if f.Changed("productivity") {
		cfg.Productivity = productivity
	}
	if f.Changed("temperature") {
		cfg.Temperature = temperature
		if celsius {
			cfg.Temperature = allometry.CelsiusToKelvin(temperature)
		}
		if err := allometry.ValidateKelvin(cfg.Temperature); err != nil {
			return nil, err
		}
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("duration") {
		cfg.Duration = duration
	}
	if f.Changed("window") {
		cfg.Window = window
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newExperiment(cfg *config.Config, logger *slog.Logger) (*experiment.Experiment, error) {
	ecfg := cfg.Experiment()
	ecfg.Verbose = verbose
	return experiment.New(ecfg, logger)
}
