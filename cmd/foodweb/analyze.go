package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/foodweb/internal/allometry"
	"github.com/san-kum/foodweb/internal/analysis"
	"github.com/san-kum/foodweb/internal/bioenergetic"
	"github.com/san-kum/foodweb/internal/dynamo"
	"github.com/san-kum/foodweb/internal/metrics"
	"github.com/san-kum/foodweb/internal/scenario"
	"github.com/san-kum/foodweb/internal/viz"
)

var (
	masses       []float64
	temperatures []float64
	k0           float64
	inCelsius    bool

	bifSpecies   int
	bifTransient float64
	bifRecord    float64

	replicates   int
	stepsPerTick int
)

func newCarryingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carrying",
		Short: "tabulate the allometric carrying capacity over masses and temperatures",
		RunE:  runCarrying,
	}
	cmd.Flags().Float64SliceVar(&masses, "mass", []float64{1, 10, 100, 1000}, "body masses")
	cmd.Flags().Float64SliceVar(&temperatures, "temp", []float64{0, 10, 20, 30}, "temperatures")
	cmd.Flags().BoolVar(&inCelsius, "celsius", true, "temperatures are in degrees Celsius")
	cmd.Flags().Float64Var(&k0, "k0", 1, "intercept k0")
	return cmd
}

func runCarrying(cmd *cobra.Command, args []string) error {
	kelvin := make([]float64, len(temperatures))
	for i, t := range temperatures {
		kelvin[i] = t
		if inCelsius {
			kelvin[i] = allometry.CelsiusToKelvin(t)
		}
		if err := allometry.ValidateKelvin(kelvin[i]); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "MASS\t")
	for i := range kelvin {
		fmt.Fprintf(w, "T=%gK\t", kelvin[i])
	}
	fmt.Fprintln(w)

	columns := make([][]float64, len(kelvin))
	for i, t := range kelvin {
		columns[i] = allometry.CarryingCapacities(masses, k0, t)
	}
	for row, m := range masses {
		fmt.Fprintf(w, "%g\t", m)
		for col := range columns {
			fmt.Fprintf(w, "%.5g\t", columns[col][row])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func newBifurcationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "plot the tail extrema of one species against K",
		RunE:  runBifurcation,
	}
	modelFlags(cmd)
	sweepFlags(cmd)
	cmd.Flags().IntVar(&bifSpecies, "species-index", -1, "species to record (default the last)")
	cmd.Flags().Float64Var(&bifTransient, "transient", 1500, "time discarded before recording")
	cmd.Flags().Float64Var(&bifRecord, "record", 500, "time recorded after the transient")
	return cmd
}

func runBifurcation(cmd *cobra.Command, args []string) error {
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
	simCfg, err := exp.SimConfig()
	if err != nil {
		return err
	}

	model := exp.Tuner()
	bc := analysis.DefaultBifurcationConfig()
	bc.Values = ks
	bc.Dt = cfg.Dt
	bc.Transient = bifTransient
	bc.Record = bifRecord
	bc.Species = bifSpecies
	if bc.Species < 0 {
		bc.Species = model.StateDim() - 1
	}

	bar := newProgressBar(len(ks), "bifurcation")
	bc.Progress = func(i, n int) { _ = bar.Add(1) }
	points, err := analysis.BifurcationDiagram(context.Background(), model, simCfg.Integrator,
		dynamo.State(exp.InitialBiomass()), bc)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("bifurcation of B%d over K in [%g, %g]\n\n", bc.Species, ks[0], ks[len(ks)-1])
	fmt.Println(analysis.BifurcationToASCII(points, 70, 20))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "K\tBRANCHES\tMIN\tMAX")
	for _, p := range points {
		if len(p.Values) == 0 {
			fmt.Fprintf(w, "%g\t0\t-\t-\n", p.Param)
			continue
		}
		fmt.Fprintf(w, "%g\t%d\t%.4g\t%.4g\n", p.Param, len(p.Values), p.Values[0], p.Values[len(p.Values)-1])
	}
	return w.Flush()
}

func newReplicatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replicates",
		Short: "run independent replicate webs over consecutive seeds",
		RunE:  runReplicates,
	}
	modelFlags(cmd)
	cmd.Flags().IntVarP(&replicates, "runs", "n", 8, "number of replicates")
	return cmd
}

func runReplicates(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if replicates < 1 {
		return fmt.Errorf("%w: need at least one replicate", dynamo.ErrParameterBounds)
	}

	// Each replicate writes only its own slot.
	params := make([]bioenergetic.Params, replicates)
	seedStart := cfg.Seed
	var simCfg bioenergetic.SimConfig
	build := func(s int64) (*dynamo.Simulator, dynamo.State, error) {
		rc := cfg.Clone()
		rc.Seed = s
		rc.InitialBiomass = nil
		exp, err := newExperiment(rc, logger)
		if err != nil {
			return nil, nil, err
		}
		sc, err := exp.SimConfig()
		if err != nil {
			return nil, nil, err
		}
		params[s-seedStart] = exp.Params()
		return dynamo.New(bioenergetic.NewModel(exp.Params()), sc.Integrator), dynamo.State(exp.InitialBiomass()), nil
	}

	probe, err := newExperiment(cfg, logger)
	if err != nil {
		return err
	}
	if simCfg, err = probe.SimConfig(); err != nil {
		return err
	}

	logger.Info("replicates", "runs", replicates, "seeds", fmt.Sprintf("%d..%d", seedStart, seedStart+int64(replicates)-1))
	results, err := dynamo.NewEnsemble(build, replicates, seedStart).Run(context.Background(), simCfg.Config)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBIOMASS\tPERSISTENCE\tGROWTH\tCV")
	var biomass, persistence []float64
	for i, res := range results {
		s := metrics.Summarize(res, params[i], cfg.Window)
		biomass = append(biomass, s.Biomass)
		persistence = append(persistence, s.Persistence)
		fmt.Fprintf(w, "%d\t%.5g\t%.3f\t%.5g\t%.4g\n", seedStart+int64(i), s.Biomass, s.Persistence, s.Growth, s.Variability)
	}
	fmt.Fprintf(w, "mean\t%.5g\t%.3f\t\t\n", metrics.Mean(biomass), metrics.Mean(persistence))
	return w.Flush()
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "watch a web evolve in the terminal",
		RunE:  runLive,
	}
	modelFlags(cmd)
	cmd.Flags().IntVar(&stepsPerTick, "speed", 5, "integration steps per frame")
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, newLogger())
	if err != nil {
		return err
	}
	simCfg, err := exp.SimConfig()
	if err != nil {
		return err
	}

	title := fmt.Sprintf("foodweb %s", exp.Web().String())
	m := viz.NewLive(bioenergetic.NewModel(exp.Params()), simCfg.Integrator, exp.InitialBiomass(), cfg.Dt, stepsPerTick, title)
	return viz.RunLive(m)
}

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "play a scripted sequence of enrichment phases",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	modelFlags(cmd)
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, logger)
	if err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}
	results, err := scenario.Run(context.Background(), exp, sc, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tNAME\tSTART\tK\tBIOMASS\tPERSISTENCE\tGROWTH\tCV")
	for i, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%d\t%s\t%g\t%g\t%.5g\t%.3f\t%.5g\t%.4g\n",
			i+1, r.Phase.Name, r.Start, r.Phase.K, s.Biomass, s.Persistence, s.Growth, s.Variability)
	}
	return w.Flush()
}
