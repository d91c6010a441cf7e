package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/foodweb/internal/config"
	"github.com/san-kum/foodweb/internal/storage"
	"github.com/san-kum/foodweb/internal/viz"
)

var (
	exportFormat string
	exportOut    string
	plotWindow   int
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs and sweeps",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTOPOLOGY\tSPECIES\tK\tSEED\tTIME")
	for _, r := range runs {
		k := fmt.Sprint(r.K)
		if r.Kind == storage.KindSweep && len(r.K) > 0 {
			k = fmt.Sprintf("%g..%g (%d)", r.K[0], r.K[len(r.K)-1], len(r.K))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, r.Kind, r.Topology, r.Species, k, r.Seed, r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "replot a stored run or sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().IntVarP(&plotWindow, "window", "w", 0, "trailing steps to plot (default all)")
	cmd.Flags().IntSliceVar(&showSpecies, "show", nil, "species to plot (default all)")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s, %s web of %d species\n\n", meta.ID, meta.Kind, meta.Topology, meta.Species)

	if meta.Kind == storage.KindSweep {
		records, err := st.LoadRecords(meta.ID)
		if err != nil {
			return err
		}
		plots, err := viz.SweepPlots(records)
		if err != nil {
			return err
		}
		fmt.Println(plots)
		fmt.Println(viz.SweepTable(records))
		return nil
	}

	result, err := st.LoadStates(meta.ID)
	if err != nil {
		return err
	}
	graph, err := viz.TrajectoryPlot(result, showSpecies, plotWindow)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "export a stored run or sweep as json or parquet",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json, parquet)")
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (json defaults to stdout)")
	return cmd
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if meta.Kind == storage.KindSweep {
			records, err := st.LoadRecords(meta.ID)
			if err != nil {
				return err
			}
			return storage.ExportSweepJSON(w, *meta, records)
		}
		result, err := st.LoadStates(meta.ID)
		if err != nil {
			return err
		}
		return storage.ExportRunJSON(w, *meta, result)

	case "parquet":
		if exportOut == "" {
			exportOut = meta.ID + ".parquet"
		}
		if meta.Kind == storage.KindSweep {
			records, err := st.LoadRecords(meta.ID)
			if err != nil {
				return err
			}
			err = storage.ExportSweepParquet(exportOut, records)
			if err == nil {
				fmt.Fprintf(os.Stderr, "wrote %d records to %s\n", len(records), exportOut)
			}
			return err
		}
		result, err := st.LoadStates(meta.ID)
		if err != nil {
			return err
		}
		err = storage.ExportRunParquet(exportOut, result)
		if err == nil {
			fmt.Fprintf(os.Stderr, "wrote %d states to %s\n", len(result.States), exportOut)
		}
		return err

	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("available presets:")
		for _, name := range config.ListPresets() {
			p := config.GetPreset(name)
			fmt.Printf("  %-12s %s, %d species, k=%v\n", name, p.Topology, p.Species, p.K)
		}
		return nil
	}

	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset: %s", args[0])
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}
