package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mpmsim/internal/analysis"
	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/experiment"
	"github.com/san-kum/mpmsim/internal/export"
	"github.com/san-kum/mpmsim/internal/optim"
	"github.com/san-kum/mpmsim/internal/solver"
	"github.com/san-kum/mpmsim/internal/storage"
	"github.com/san-kum/mpmsim/internal/tui"
	"github.com/san-kum/mpmsim/internal/viz"
)

var styles = viz.DefaultTheme.Styles()

func getPreset(name string) (*config.Config, error) {
	group, p, ok := strings.Cut(name, "/")
	if !ok {
		return nil, fmt.Errorf("preset must be group/name, got %q", name)
	}
	cfg := config.GetPreset(group, p)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available in %s: %v)", name, group, config.ListPresets(group))
	}
	return cfg, nil
}

// loadConfig resolves defaults, then a preset, then a config file; flags
// the user set explicitly override all three.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, err := getPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("scheme") {
		cfg.Scheme = schemeName
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println(styles.Title.Render("running " + cfg.Name))
	fmt.Println(exp.Mesh())

	start := time.Now()
	var result *solver.Result
	if live {
		theme, ok := viz.GetTheme(themeName)
		if !ok {
			return fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
		}
		result, err = tui.Run(ctx, exp, theme, frameRate)
	} else {
		result, err = exp.Run(ctx)
	}
	elapsed := time.Since(start)

	if result == nil {
		return err
	}
	if err != nil {
		fmt.Println(styles.Err.Render("stopped: " + err.Error()))
	}

	fmt.Printf("steps: %d/%d in %v\n", result.StepsTaken, cfg.Steps, elapsed.Round(time.Millisecond))
	printMetrics(result.Metrics)

	if svgPath != "" {
		if serr := writeMeshSVG(svgPath, exp); serr != nil {
			return errors.Join(err, serr)
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	if noSave || len(result.Snapshots) == 0 {
		return err
	}

	st := storage.New(dataDir)
	if serr := st.Init(); serr != nil {
		return errors.Join(err, serr)
	}
	runID, serr := st.Save(storage.RunMetadata{
		Name:      cfg.Name,
		Scheme:    cfg.Scheme,
		Dt:        cfg.Dt,
		Steps:     cfg.Steps,
		Gravity:   cfg.Gravity,
		Particles: exp.Mesh().NumParticles(),
	}, result)
	if serr != nil {
		return errors.Join(err, serr)
	}
	fmt.Printf("saved: %s\n", styles.Value.Render(runID))
	return err
}

func writeMeshSVG(path string, exp *experiment.Experiment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteMesh(f, exp.Mesh(), 800, 600); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(viz.KeyValue(styles, name, m[name]))
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSCHEME\tDT\tSTEPS\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%d/%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Scheme,
			run.Dt,
			run.StepsTaken,
			run.Steps,
			run.Particles,
		)
	}

	return w.Flush()
}

// loadSeries reads component --component of particle --particle from a
// stored field.
func loadSeries(runID, field string) (*storage.RunMetadata, *storage.FieldData, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	fd, err := st.LoadField(runID, field)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(fd.Values) == 0 || meta.Particles == 0 {
		return nil, nil, nil, fmt.Errorf("no data for %s", field)
	}

	width := len(fd.Values[0]) / meta.Particles
	if particle < 0 || particle >= meta.Particles {
		return nil, nil, nil, fmt.Errorf("particle %d out of range [0, %d)", particle, meta.Particles)
	}
	if component < 0 || component >= width {
		return nil, nil, nil, fmt.Errorf("component %d out of range [0, %d)", component, width)
	}
	return meta, fd, fd.Series(particle*width + component), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, fd, series, err := loadSeries(args[0], field)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scheme: %s\n", meta.Scheme)
	fmt.Printf("samples: %d (t = %g .. %g)\n\n", len(series), fd.Times[0], fd.Times[len(fd.Times)-1])

	caption := fmt.Sprintf("%s[%d] of particle %d vs time", field, component, particle)
	fmt.Println(viz.Plot(series, caption, viz.DefaultPlotWidth, viz.DefaultPlotHeight))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, fd, series, err := loadSeries(args[0], field)
	if err != nil {
		return err
	}
	if len(fd.Times) < 2 {
		return fmt.Errorf("need at least two samples")
	}
	sampleDt := fd.Times[1] - fd.Times[0]

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("%s[%d] of particle %d, %d samples every %g\n\n", field, component, particle, len(series), sampleDt)

	freq, err := analysis.DominantFrequency(series, sampleDt)
	if err != nil {
		return err
	}
	ps := analysis.PowerSpectrum(series)
	fmt.Println(viz.Plot(ps[:max(len(ps)/4, 1)], "power spectrum", viz.DefaultPlotWidth, 15))
	fmt.Println()

	fmt.Println(viz.KeyValue(styles, "dominant freq", freq))
	if period, err := analysis.Period(series, fd.Times); err == nil {
		fmt.Println(viz.KeyValue(styles, "period", period))
	}

	if phase {
		_, _, x, err := loadSeries(args[0], "loc")
		if err != nil {
			return fmt.Errorf("phase portrait: %w", err)
		}
		_, _, v, err := loadSeries(args[0], "velocity")
		if err != nil {
			return fmt.Errorf("phase portrait: %w", err)
		}
		fmt.Println()
		fmt.Println(styles.Title.Render("phase portrait (loc, velocity)"))
		fmt.Print(analysis.NewPhasePortrait(x, v).ToASCII(60, 20))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0], field)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fd, err := st.LoadField(args[0], "loc")
	if err != nil {
		return err
	}
	if meta.Particles == 0 || len(fd.Values) == 0 {
		return fmt.Errorf("no positions recorded")
	}
	if particle < 0 || particle >= meta.Particles {
		return fmt.Errorf("particle %d out of range [0, %d)", particle, meta.Particles)
	}

	// 1D runs plot position against time
	dim := len(fd.Values[0]) / meta.Particles
	xs, ys := fd.Times, fd.Series(particle*dim)
	if dim > 1 {
		xs, ys = fd.Series(particle*dim), fd.Series(particle*dim+1)
	}
	return export.WriteTrajectory(os.Stdout, xs, ys, 800, 600)
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.Groups()
	if len(args) == 1 {
		if config.ListPresets(args[0]) == nil {
			fmt.Printf("no presets for group: %s\n", args[0])
			return nil
		}
		groups = args
	}
	for _, g := range groups {
		fmt.Printf("%s:\n", styles.Title.Render(g))
		for _, p := range config.ListPresets(g) {
			cfg := config.GetPreset(g, p)
			fmt.Printf("  %-12s %s, %s mesh %v, %d steps of %g\n", p, cfg.Scheme, cfg.Mesh.Type, cfg.Mesh.Elements, cfg.Steps, cfg.Dt)
		}
	}
	return nil
}

func fitModulus(cmd *cobra.Command, args []string) error {
	base, err := getPreset(fitPreset)
	if err != nil {
		return err
	}
	base.Steps = fitSteps
	base.Record = []string{"velocity"}
	base.RecordEvery = 1

	target := base.Clone()
	if err := optim.ApplyMaterial(target, map[string]float64{"E": targetE}); err != nil {
		return err
	}
	exp := experiment.New(target)
	if err := exp.Setup(); err != nil {
		return err
	}
	ctx := context.Background()
	result, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("target run: %w", err)
	}
	trace := result.Series("velocity", 0)

	gs, err := optim.NewGridSearch([]string{"E"}, [][]float64{optim.Linspace(minE, maxE, points)})
	if err != nil {
		return err
	}
	fmt.Printf("fitting E on %s: %d candidates in [%g, %g]\n", fitPreset, gs.Points(), minE, maxE)

	start := time.Now()
	best, loss, err := gs.Search(ctx, optim.ExperimentObjective(base, optim.VelocityTraceScore(trace, 0)))
	if err != nil {
		return err
	}
	fmt.Println(viz.KeyValue(styles, "best E", best["E"]))
	fmt.Println(viz.KeyValue(styles, "loss", loss))
	fmt.Printf("took %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	base, err := getPreset(comparePreset)
	if err != nil {
		return err
	}
	base.Steps = compareSteps
	base.Metrics = []string{"kinetic_energy", "energy_drift", "mass_error"}

	fmt.Printf("comparing schemes on %s (dt=%g, steps=%d)\n\n", comparePreset, base.Dt, base.Steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tMEAN KE\tENERGY DRIFT\tMASS ERROR\tTIME")

	for _, name := range args {
		cfg := base.Clone()
		cfg.Scheme = name
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.3e\t%.3e\t%v\n", name,
			result.Metrics["kinetic_energy"], result.Metrics["energy_drift"], result.Metrics["mass_error"],
			elapsed.Round(time.Millisecond))
	}
	return w.Flush()
}

func benchPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tWORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, g := range config.Groups() {
		for _, p := range config.ListPresets(g) {
			for _, nw := range []int{1, 0} {
				cfg := config.GetPreset(g, p)
				cfg.Steps = benchSteps
				cfg.Workers = nw
				cfg.Record = []string{"loc"}
				cfg.RecordEvery = benchSteps

				exp := experiment.New(cfg)
				if err := exp.Setup(); err != nil {
					return err
				}
				start := time.Now()
				result, err := exp.Run(context.Background())
				if err != nil {
					return fmt.Errorf("%s/%s: %w", g, p, err)
				}
				elapsed := time.Since(start)

				label := "serial"
				if nw == 0 {
					label = "all"
				}
				fmt.Fprintf(w, "%s/%s\t%d\t%s\t%d\t%v\t%.0f\n", g, p, exp.Mesh().NumParticles(), label,
					result.StepsTaken, elapsed.Round(time.Microsecond), float64(result.StepsTaken)/elapsed.Seconds())
			}
		}
	}
	return w.Flush()
}
