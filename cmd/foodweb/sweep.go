package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/san-kum/foodweb/internal/config"
	"github.com/san-kum/foodweb/internal/storage"
	"github.com/san-kum/foodweb/internal/sweep"
	"github.com/san-kum/foodweb/internal/viz"
)

var (
	sweepStart      float64
	sweepStop       float64
	sweepStep       float64
	sweepPoints     int
	continueOnError bool
	showTable       bool
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the carrying capacity and summarise each run",
		Long: `Simulates the same web and initial biomass once per carrying capacity
and reports total biomass, persistence, producer growth and biomass
variability over the trailing window of every run.`,
		RunE: runSweep,
	}
	modelFlags(cmd)
	sweepFlags(cmd)
	cmd.Flags().StringVar(&runName, "name", "", "name of the stored sweep")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the records")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "record failed runs instead of stopping")
	cmd.Flags().BoolVar(&showTable, "table", true, "print the record table")
	return cmd
}

func sweepFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&sweepStart, "from", config.DefaultSweepStart, "first K")
	f.Float64Var(&sweepStop, "to", config.DefaultSweepStop, "last K")
	f.Float64Var(&sweepStep, "step", 0, "K step (takes precedence over --points)")
	f.IntVar(&sweepPoints, "points", config.DefaultSweepPoints, "number of evenly spaced K values")
}

// sweepValues applies the sweep flags to cfg and expands them.
func sweepValues(cmd *cobra.Command, cfg *config.Config) ([]float64, error) {
	f := cmd.Flags()
	if f.Changed("from") {
		cfg.Sweep.Start = sweepStart
	}
	if f.Changed("to") {
		cfg.Sweep.Stop = sweepStop
	}
	if f.Changed("points") {
		cfg.Sweep.Points = sweepPoints
		if !f.Changed("step") {
			cfg.Sweep.Step = 0
		}
	}
	if f.Changed("step") {
		cfg.Sweep.Step = sweepStep
	}
	return cfg.SweepValues()
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ks, err := sweepValues(cmd, cfg)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, logger)
	if err != nil {
		return err
	}

	bar := newProgressBar(len(ks), "sweeping K")
	driver := sweep.NewDriver(exp, cfg.Window)
	driver.ContinueOnError = cfg.Sweep.ContinueOnError
	if cmd.Flags().Changed("continue-on-error") {
		driver.ContinueOnError = continueOnError
	}
	driver.Logger = logger
	driver.Progress = func(i, n int, rec sweep.Record) {
		_ = bar.Add(1)
	}

	logger.Info("sweep", "web", exp.Web().String(), "points", len(ks), "from", ks[0], "to", ks[len(ks)-1])
	records, err := driver.Run(context.Background(), ks)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	if failed := sweep.Failed(records); len(failed) > 0 {
		logger.Warn("some runs failed", "count", len(failed))
	}

	plots, err := viz.SweepPlots(records)
	if err != nil {
		return err
	}
	fmt.Println(plots)
	if showTable {
		fmt.Println(viz.SweepTable(records))
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := metadataFor(cfg, runName)
	meta.K = nil
	id, err := st.SaveSweep(meta, records)
	if err != nil {
		return err
	}
	logger.Info("sweep saved", "id", id)
	return nil
}

// metadataFor fills the descriptive fields of a stored run from cfg.
func metadataFor(cfg *config.Config, name string) storage.RunMetadata {
	return storage.RunMetadata{
		Name:       name,
		Seed:       cfg.Seed,
		Topology:   cfg.Topology,
		Species:    cfg.Species,
		K:          append([]float64(nil), cfg.K...),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Window:     cfg.Window,
		Integrator: cfg.Integrator,
	}
}
