package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/foodweb/internal/analysis"
	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/config"
	"github.com/san-kum/foodweb/internal/storage"
	"github.com/san-kum/foodweb/internal/viz"
)

var (
	showSpecies []int
	phaseAxes   []int
	lyapunov    bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one web at a fixed carrying capacity",
		RunE:  runSimulation,
	}
	modelFlags(cmd)
	cmd.Flags().StringVar(&runName, "name", "", "name of the stored run")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the trajectory")
	cmd.Flags().IntSliceVar(&showSpecies, "show", nil, "species to plot (default all)")
	cmd.Flags().IntSliceVar(&phaseAxes, "phase", nil, "draw a phase portrait of two species, e.g. --phase 0,1")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("simulating", "web", exp.Web().String(), "k", cfg.K, "duration", cfg.Duration)
	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	summary := exp.Summarize(result, exp.Params())

	fmt.Printf("steps:       %d\n", result.StepsTaken)
	fmt.Printf("biomass:     %.6g\n", summary.Biomass)
	fmt.Printf("persistence: %.4g\n", summary.Persistence)
	fmt.Printf("growth:      %.6g (total %.6g)\n", summary.Growth, summary.GrowthTotal)
	fmt.Printf("cv:          %.4g\n", summary.Variability)
	for name, v := range result.Metrics {
		fmt.Printf("%-12s %.6g\n", name+":", v)
	}
	fmt.Println()

	graph, err := viz.TrajectoryPlot(result, showSpecies, cfg.Window)
	if err != nil {
		return err
	}
	fmt.Println(graph)

	if len(phaseAxes) > 0 {
		if len(phaseAxes) != 2 {
			return fmt.Errorf("--phase takes two species indices, got %d", len(phaseAxes))
		}
		portrait, err := analysis.NewPhasePortrait(result, phaseAxes[0], phaseAxes[1], cfg.Window)
		if err != nil {
			return err
		}
		fmt.Printf("\nphase portrait B%d vs B%d\n", phaseAxes[1], phaseAxes[0])
		fmt.Println(portrait.ToASCII(70, 20))
	}

	metricsOut := map[string]float64{
		"biomass":      summary.Biomass,
		"persistence":  summary.Persistence,
		"growth":       summary.Growth,
		"growth_total": summary.GrowthTotal,
		"variability":  summary.Variability,
	}
	for name, v := range result.Metrics {
		metricsOut[name] = v
	}

	if lyapunov {
		simCfg, err := exp.SimConfig()
		if err != nil {
			return err
		}
		lambda := analysis.LyapunovExponent(bioenergetic.NewModel(exp.Params()), simCfg.Integrator,
			result.Final(), cfg.Dt, lyapunovHorizon(cfg), 1e-8)
		fmt.Printf("\nlargest lyapunov exponent: %.4g\n", lambda)
		metricsOut["lyapunov"] = lambda
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta := metadataFor(cfg, runName)
	meta.Metrics = metricsOut
	id, err := st.SaveRun(meta, result)
	if err != nil {
		return err
	}
	logger.Info("run saved", "id", id)
	return nil
}

// lyapunovHorizon is the integration time of the Lyapunov estimate: the
// summary window, or the whole run when the window is 0.
func lyapunovHorizon(cfg *config.Config) float64 {
	if cfg.Window > 0 {
		return float64(cfg.Window) * cfg.Dt
	}
	return cfg.Duration
}
