package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	live       bool
	frameRate  int
	themeName  string
	steps      int
	dt         float64
	schemeName string
	workers    int
	noSave     bool
	svgPath    string

	field     string
	particle  int
	component int
	phase     bool

	// fit, compare and bench keep their own defaults
	fitPreset     string
	fitSteps      int
	targetE       float64
	minE          float64
	maxE          float64
	points        int
	comparePreset string
	compareSteps  int
	benchSteps    int
)

// main registers the commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "mpmsim",
		Short:        "explicit material point method simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mpmsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation from a config file or preset",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as group/name")
	runCmd.Flags().BoolVar(&live, "live", false, "show live progress")
	runCmd.Flags().IntVar(&frameRate, "fps", 15, "frame rate for --live")
	runCmd.Flags().StringVar(&themeName, "theme", viz.DefaultTheme.Name, "color theme for --live")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().StringVar(&schemeName, "scheme", config.DefaultScheme, "time-stepping scheme")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = all CPUs, 1 = serial)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final mesh state as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one recorded component over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addSeriesFlags(plotCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one recorded component",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addSeriesFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw the loc/velocity phase portrait")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and every recorded field as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export one recorded field as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&field, "field", "velocity", "recorded field")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export one particle's trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&particle, "particle", 0, "particle index")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "recover Young's modulus from a velocity trace by grid search",
		Args:  cobra.NoArgs,
		RunE:  fitModulus,
	}
	fitCmd.Flags().StringVar(&fitPreset, "preset", "bar1d/single", "preset as group/name")
	fitCmd.Flags().IntVar(&fitSteps, "steps", 500, "number of steps per run")
	fitCmd.Flags().Float64Var(&targetE, "target-E", 100, "modulus that generates the target trace")
	fitCmd.Flags().Float64Var(&minE, "min", 25, "smallest candidate modulus")
	fitCmd.Flags().Float64Var(&maxE, "max", 400, "largest candidate modulus")
	fitCmd.Flags().IntVar(&points, "points", 16, "number of candidates")

	compareCmd := &cobra.Command{
		Use:   "compare [scheme] [scheme] ...",
		Short: "compare schemes on the same preset",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareSchemes,
	}
	compareCmd.Flags().StringVar(&comparePreset, "preset", "bar1d/vibration", "preset as group/name")
	compareCmd.Flags().IntVar(&compareSteps, "steps", 1000, "number of steps")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark every preset serially and in parallel",
		Args:  cobra.NoArgs,
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "number of steps per run")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, fitCmd, compareCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSeriesFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&field, "field", "velocity", "recorded field")
	cmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	cmd.Flags().IntVar(&component, "component", 0, "component within the particle's entry")
}
