package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/plotter"

	"github.com/san-kum/aerolattice/internal/analysis"
	"github.com/san-kum/aerolattice/internal/automation"
	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
	"github.com/san-kum/aerolattice/internal/export"
	"github.com/san-kum/aerolattice/internal/optim"
	"github.com/san-kum/aerolattice/internal/solver"
	"github.com/san-kum/aerolattice/internal/storage"
	"github.com/san-kum/aerolattice/internal/viz"
	"github.com/san-kum/aerolattice/internal/vortex"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	log       = logrus.New()

	configFile     string
	alphaDeg       float64
	betaDeg        float64
	airspeed       float64
	density        float64
	spanCount      int
	chordCount     int
	spacing        string
	workers        int
	wakeFreestream bool

	jsonStdout bool
	jsonOut    string
	svgOut     string
	noSave     bool

	sweepFrom float64
	sweepTo   float64
	sweepStep float64

	plotField string
	plotOut   string
	outFile   string

	surfaceName string
	paramSpecs  []string
	objective   string

	benchRuns int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aerolattice",
		Short: "vortex lattice aerodynamics for lifting surfaces",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(log)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".aerolattice", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	solveCmd := &cobra.Command{
		Use:   "solve [case]",
		Short: "solve one flow condition",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addCaseFlags(solveCmd)
	solveCmd.Flags().BoolVar(&jsonStdout, "json", false, "print results as JSON")
	solveCmd.Flags().StringVar(&jsonOut, "json-out", "", "write results as JSON to file")
	solveCmd.Flags().StringVar(&svgOut, "svg", "", "write the lattice colored by circulation to an SVG file")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep [case]",
		Short: "solve an angle-of-attack sweep and fit the polar",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addCaseFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -4, "first angle of attack (deg)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 10, "last angle of attack (deg)")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 1, "angle step (deg)")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", export.FieldLift, "distribution field ("+strings.Join(export.Fields(), ", ")+")")
	plotCmd.Flags().StringVar(&plotOut, "out", "", "write the plot to a .png or .svg file")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in cases",
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore [case]",
		Short: "interactive alpha/beta explorer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExplore,
	}
	addCaseFlags(exploreCmd)

	optimizeCmd := &cobra.Command{
		Use:   "optimize [case]",
		Short: "grid search over planform parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOptimize,
	}
	addCaseFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&surfaceName, "surface", "wing", "surface the parameters apply to")
	optimizeCmd.Flags().StringArrayVar(&paramSpecs, "param", nil, "parameter range name=start:end:step (repeatable)")
	optimizeCmd.Flags().StringVar(&objective, "objective", "-e", "objective to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench [case]",
		Short: "benchmark discretization, factorization and solves",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchCase,
	}
	addCaseFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchRuns, "runs", 100, "number of solves to time")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of cases",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	rootCmd.AddCommand(solveCmd, sweepCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd, exploreCmd, optimizeCmd, benchCmd, batchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogger(w io.Writer) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(w)

	switch logFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format: %s", logFormat)
	}
	return nil
}

func addCaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "case file path (yaml)")
	cmd.Flags().Float64Var(&alphaDeg, "alpha", config.DefaultAlphaDeg, "angle of attack (deg)")
	cmd.Flags().Float64Var(&betaDeg, "beta", 0, "sideslip (deg)")
	cmd.Flags().Float64Var(&airspeed, "airspeed", config.DefaultAirspeed, "freestream speed (m/s)")
	cmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "air density (kg/m³)")
	cmd.Flags().IntVar(&spanCount, "span-count", 0, "spanwise strips per defined half, all surfaces")
	cmd.Flags().IntVar(&chordCount, "chord-count", 0, "chordwise panels, all surfaces")
	cmd.Flags().StringVar(&spacing, "spacing", "", "spanwise spacing (uniform, cosine), all surfaces")
	cmd.Flags().IntVar(&workers, "workers", 0, "assembly workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&wakeFreestream, "wake-freestream", false, "align trailing legs with the freestream")
}

// loadCase resolves the case from --config or a preset name, then applies
// the flags the user set explicitly.
func loadCase(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	default:
		name := "rectangular"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown case: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Flow.AlphaDeg = alphaDeg
	}
	if flags.Changed("beta") {
		cfg.Flow.BetaDeg = betaDeg
	}
	if flags.Changed("airspeed") {
		cfg.Flow.Airspeed = airspeed
	}
	if flags.Changed("density") {
		cfg.Flow.Density = density
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("wake-freestream") {
		cfg.Solver.WakeAlongFreestream = wakeFreestream
	}
	for i := range cfg.Surfaces {
		s := &cfg.Surfaces[i]
		if flags.Changed("span-count") {
			s.SpanCount = spanCount
		}
		if flags.Changed("chord-count") {
			s.ChordCount = chordCount
		}
		if flags.Changed("spacing") {
			s.Spacing = spacing
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupCase(cmd *cobra.Command, args []string) (*experiment.Experiment, error) {
	cfg, err := loadCase(cmd, args)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	exp, err := setupCase(cmd, args)
	if err != nil {
		return err
	}
	name := exp.Config().Name

	start := time.Now()
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if jsonOut != "" {
		if err := storage.ExportJSON(jsonOut, name, res); err != nil {
			return err
		}
	}
	if svgOut != "" {
		svg := export.LatticeToSVG(exp.GetSolver().Lattice(), 800, res.Circulation())
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
	}

	var runID string
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		if runID, err = st.Save(name, res); err != nil {
			return err
		}
	}

	if jsonStdout {
		return storage.WriteJSON(cmd.OutOrStdout(), name, res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Summary(name, res))
	fmt.Fprintf(out, "panels: %d\n", len(res.Circulation()))
	fmt.Fprintf(out, "solved in %v\n", elapsed)
	if runID != "" {
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	exp, err := setupCase(cmd, args)
	if err != nil {
		return err
	}
	name := exp.Config().Name

	alphas, err := experiment.AlphaRange(sweepFrom, sweepTo, sweepStep)
	if err != nil {
		return err
	}
	start := time.Now()
	results, err := exp.Sweep(cmd.Context(), alphas)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d points in %v\n\n", name, len(results), elapsed)
	if err := printPolar(out, polarRows(results)); err != nil {
		return err
	}

	if err := printFit(out, analysis.PolarFromResults(results)); err != nil {
		return err
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveSweep(name, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nrun id: %s\n", runID)
	}
	return nil
}

func polarRows(results []*vortex.Results) []storage.PolarPoint {
	rows := make([]storage.PolarPoint, len(results))
	for i, r := range results {
		rows[i] = storage.PolarPoint{
			AlphaDeg: r.Flow.Alpha * 180 / math.Pi,
			CL:       r.CL,
			CDi:      r.CDi,
			Cm:       r.Cm,
			E:        r.SpanEfficiency,
		}
	}
	return rows
}

func printPolar(out io.Writer, rows []storage.PolarPoint) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALPHA\tCL\tCDi\tCm\te")
	for _, r := range rows {
		fmt.Fprintf(w, "%.2f\t%.5f\t%.6f\t%.5f\t%.4f\n", r.AlphaDeg, r.CL, r.CDi, r.Cm, r.E)
	}
	return w.Flush()
}

// printFit prints the fitted derivatives of p, or a note when the polar
// has too few angles to fit.
func printFit(out io.Writer, p analysis.Polar) error {
	deriv, err := analysis.Fit(p)
	switch {
	case errors.Is(err, analysis.ErrInsufficientData):
		fmt.Fprintln(out, "\nnot enough points to fit the polar")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(out)
	return printDerivatives(out, deriv)
}

func printDerivatives(out io.Writer, d *analysis.Derivatives) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CL_alpha\t%.4f /rad\n", d.CLAlpha)
	fmt.Fprintf(w, "CL0\t%.5f\n", d.CL0)
	fmt.Fprintf(w, "alpha_0L\t%.3f deg\n", d.AlphaZeroLift*180/math.Pi)
	fmt.Fprintf(w, "Cm_alpha\t%.4f /rad\n", d.CmAlpha)
	fmt.Fprintf(w, "Cm0\t%.5f\n", d.Cm0)
	fmt.Fprintf(w, "neutral point\t%.4f\n", d.NeutralPoint)
	fmt.Fprintf(w, "static margin\t%.2f%%\n", d.StaticMargin*100)
	fmt.Fprintf(w, "k\t%.5f\n", d.InducedFactor)
	fmt.Fprintf(w, "e (fit)\t%.4f\n", d.SpanEfficiency)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCASE\tKIND\tTIME\tPANELS\tALPHA\tCL\tCDi")

	for _, run := range runs {
		cl, cdi := "-", "-"
		if run.Kind == storage.KindSolve {
			cl = fmt.Sprintf("%.4f", run.Coefficients["CL"])
			cdi = fmt.Sprintf("%.5f", run.Coefficients["CDi"])
		}
		alpha := fmt.Sprintf("%.2f", run.Flow.AlphaDeg)
		if run.Kind == storage.KindSweep {
			alpha = fmt.Sprintf("%d pts", run.Points)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			run.ID,
			run.Case,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Panels,
			alpha,
			cl,
			cdi,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "case: %s\n", meta.Case)
	fmt.Fprintf(out, "kind: %s\n", meta.Kind)
	fmt.Fprintf(out, "time: %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(out, "panels: %d\n", meta.Panels)
	fmt.Fprintf(out, "AR: %.4f  MAC: %.4f\n", meta.AspectRatio, meta.MAC)
	fmt.Fprintf(out, "V: %.2f m/s  rho: %.4f  beta: %.2f deg\n\n", meta.Flow.Airspeed, meta.Flow.Density, meta.Flow.BetaDeg)

	if meta.Kind == storage.KindSweep {
		polar, err := st.LoadPolar(meta.ID)
		if err != nil {
			return err
		}
		if err := printPolar(out, polar); err != nil {
			return err
		}
		return printFit(out, polarFromRecords(meta, polar))
	}

	fmt.Fprintf(out, "alpha: %.2f deg\n", meta.Flow.AlphaDeg)
	names := make([]string, 0, len(meta.Coefficients))
	for name := range meta.Coefficients {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6f\n", name, meta.Coefficients[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sections, err := st.LoadDistribution(meta.ID)
	if err != nil {
		return err
	}
	lift := make([]float64, len(sections))
	for i, sec := range sections {
		lift[i] = sec.Lift
	}
	if chart := viz.DistributionChart(lift, 80, 10, "lift per span (N/m)"); chart != "" {
		fmt.Fprintf(out, "\n%s\n", chart)
	}
	return nil
}

func polarFromRecords(meta *storage.RunMetadata, rows []storage.PolarPoint) analysis.Polar {
	p := analysis.Polar{
		Alpha:       make([]float64, len(rows)),
		CL:          make([]float64, len(rows)),
		CDi:         make([]float64, len(rows)),
		Cm:          make([]float64, len(rows)),
		AspectRatio: meta.AspectRatio,
		XRef:        meta.Flow.Moment[0],
		CRef:        meta.Flow.CRef,
	}
	for i, r := range rows {
		p.Alpha[i] = r.AlphaDeg * math.Pi / 180
		p.CL[i] = r.CL
		p.CDi[i] = r.CDi
		p.Cm[i] = r.Cm
	}
	return p
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if meta.Kind == storage.KindSweep {
		return plotPolar(out, st, meta)
	}

	sections, err := st.LoadDistribution(meta.ID)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if plotOut != "" {
		p, err := export.DistributionPlot(sections, plotField, fmt.Sprintf("%s α=%.2f°", meta.Case, meta.Flow.AlphaDeg))
		if err != nil {
			return err
		}
		if err := export.Save(p, plotOut, 0, 0); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", plotOut)
		return nil
	}

	names, series, err := export.SectionSeries(sections, plotField)
	if err != nil {
		return err
	}
	for i, s := range series {
		if len(s) < 2 {
			continue
		}
		data := make([]float64, len(s))
		for j := range s {
			data[j] = s[j].Y
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s vs span", names[i], plotField)),
		)
		fmt.Fprintf(out, "%s\n\n", graph)
	}
	return nil
}

func plotPolar(out io.Writer, st *storage.Store, meta *storage.RunMetadata) error {
	polar, err := st.LoadPolar(meta.ID)
	if err != nil {
		return err
	}
	if len(polar) < 2 {
		return fmt.Errorf("no data to plot")
	}

	if plotOut != "" {
		xys := make(plotter.XYs, len(polar))
		for i, r := range polar {
			xys[i].X, xys[i].Y = r.AlphaDeg, r.CL
		}
		p, err := export.PolarPlot(xys, "alpha (deg)", "CL", meta.Case+" lift curve")
		if err != nil {
			return err
		}
		if err := export.Save(p, plotOut, 0, 0); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", plotOut)
		return nil
	}

	cl := make([]float64, len(polar))
	cdi := make([]float64, len(polar))
	for i, r := range polar {
		cl[i] = r.CL
		cdi[i] = r.CDi
	}
	caption := fmt.Sprintf("CL, alpha %.1f to %.1f deg", polar[0].AlphaDeg, polar[len(polar)-1].AlphaDeg)
	fmt.Fprintf(out, "%s\n\n", asciigraph.Plot(cl, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption(caption)))
	fmt.Fprintf(out, "%s\n", asciigraph.Plot(cdi, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("CDi")))
	return nil
}

func outputWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	w, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := st.CopyData(args[0], w); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	w, closeFn, err := outputWriter(cmd)
	if err != nil {
		return err
	}
	if err := st.ExportRun(args[0], w); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSURFACES\tALPHA\tV")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		surfaces := make([]string, len(cfg.Surfaces))
		for i, s := range cfg.Surfaces {
			surfaces[i] = fmt.Sprintf("%s(%s)", s.Name, s.Kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\n", name, strings.Join(surfaces, " "), cfg.Flow.AlphaDeg, cfg.Flow.Airspeed)
	}
	return w.Flush()
}

func runExplore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		return viz.RunInteractive(log)
	}
	exp, err := setupCase(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(exp, exp.Config().Name)
}

// parseParam reads name=start:end:step. A bare name=value fixes the
// parameter.
func parseParam(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid parameter %q, want name=start:end:step", spec)
	}
	parts := strings.Split(rng, ":")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return name, vals, nil
	case 3:
		steps, err := experiment.AlphaRange(vals[0], vals[1], vals[2])
		if err != nil {
			return "", nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		return name, steps, nil
	default:
		return "", nil, fmt.Errorf("invalid parameter %q, want name=start:end:step", spec)
	}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if len(paramSpecs) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	base, err := loadCase(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	obj, err := registry.GetObjective(objective)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, registry.ListObjectives())
	}

	names := make([]string, 0, len(paramSpecs))
	ranges := make([][]float64, 0, len(paramSpecs))
	for _, spec := range paramSpecs {
		name, vals, err := parseParam(spec)
		if err != nil {
			return err
		}
		if _, err := registry.GetParameter(name); err != nil {
			return fmt.Errorf("%w (available: %v)", err, registry.ListParameters())
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	if base.Surface(surfaceName) == nil {
		return fmt.Errorf("unknown surface: %s", surfaceName)
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		if err := registry.Apply(cfg, surfaceName, params); err != nil {
			return nil, err
		}
		return experiment.New(cfg, log), nil
	}

	gs := optim.NewGridSearch(names, ranges).WithWorkers(base.Solver.Workers)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "evaluating %d points...\n", len(gs.Points()))

	start := time.Now()
	best, val, points, err := gs.Search(cmd.Context(), build, obj)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(append(upper(names), strings.ToUpper(objective)), "\t"))
	for _, p := range points {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(p.Params[n], 'g', 6, 64))
		}
		if p.Err != nil {
			row = append(row, "failed: "+p.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6f", p.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s = %.6f in %v\n", objective, val, elapsed)
	for _, n := range names {
		fmt.Fprintf(out, "  %s: %g\n", n, best[n])
	}
	return nil
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}

func benchCase(cmd *cobra.Command, args []string) error {
	cfg, err := loadCase(cmd, args)
	if err != nil {
		return err
	}
	if benchRuns <= 0 {
		return fmt.Errorf("runs must be positive")
	}

	start := time.Now()
	lat, err := cfg.Lattice()
	if err != nil {
		return err
	}
	discretize := time.Since(start)

	opts := solver.DefaultOptions()
	opts.Workers = cfg.Solver.Workers
	opts.WakeAlongFreestream = cfg.Solver.WakeAlongFreestream
	opts.Logger = log

	start = time.Now()
	s, err := solver.New(lat, opts)
	if err != nil {
		return err
	}
	fc := cfg.FlowCondition(lat)
	if _, err := s.Solve(fc); err != nil {
		return err
	}
	factorize := time.Since(start)

	start = time.Now()
	for i := 0; i < benchRuns; i++ {
		a := fc.WithAlpha(fc.Alpha + float64(i%10)*math.Pi/1800)
		if _, err := s.Solve(a); err != nil {
			return err
		}
	}
	solves := time.Since(start)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "case\t%s\n", cfg.Name)
	fmt.Fprintf(w, "panels\t%d\n", lat.Len())
	fmt.Fprintf(w, "discretize\t%v\n", discretize)
	fmt.Fprintf(w, "assemble+factorize\t%v\n", factorize)
	fmt.Fprintf(w, "factorizations\t%d\n", s.Factorizations())
	fmt.Fprintf(w, "solves\t%d\n", benchRuns)
	fmt.Fprintf(w, "per solve\t%v\n", solves/time.Duration(benchRuns))
	fmt.Fprintf(w, "solves/sec\t%.0f\n", float64(benchRuns)/solves.Seconds())
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sc.Name != "" {
		fmt.Fprintf(out, "scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	}

	start := time.Now()
	results, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), log)
	elapsed := time.Since(start)

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tCASE\tKIND\tPOINTS\tCL\tCDi\te\tRUN")
	for _, r := range results {
		kind := storage.KindSolve
		if r.Sweep {
			kind = storage.KindSweep
		}
		runID := "-"
		if st != nil {
			var err error
			if r.Sweep {
				runID, err = st.SaveSweep(r.Name, r.Results)
			} else {
				runID, err = st.Save(r.Name, r.Results[0])
			}
			if err != nil {
				return err
			}
		}
		last := r.Results[len(r.Results)-1]
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.5f\t%.6f\t%.4f\t%s\n",
			r.Index+1, r.Name, kind, len(r.Results), last.CL, last.CDi, last.SpanEfficiency, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	fmt.Fprintf(out, "\ncompleted in %v\n", elapsed)
	return nil
}
