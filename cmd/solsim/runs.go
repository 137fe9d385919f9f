package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/solsim/internal/analysis"
	"github.com/san-kum/solsim/internal/automation"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/ephemeris"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/export"
	"github.com/san-kum/solsim/internal/sim"
	"github.com/san-kum/solsim/internal/storage"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}
	s := exp.Simulation()

	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	log.Debug("run finished", "steps", result.StepsTaken, "elapsed", time.Since(start))

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunInfo{
		Preset:     title(cfg),
		Integrator: s.Integrator().Name(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Speed:      cfg.Speed,
		Substeps:   cfg.Substeps,
		Epoch:      s.Clock().Epoch(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("run_id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("sim_days: %.2f\n", s.Clock().SimTime())
	fmt.Printf("date: %s\n", s.Clock().Date().Format("2006-01-02"))
	for k, v := range result.Metrics {
		fmt.Printf("%s: %.6g\n", k, v)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	names := args[1:]
	if len(names) == 0 {
		names = experiment.ListIntegrators()
	}

	sims := make([]*sim.Simulation, len(names))
	for i, name := range names {
		c := *cfg
		c.Integrator = name
		s, err := experiment.Build(&c)
		if err != nil {
			return err
		}
		for _, m := range experiment.DefaultMetrics(s) {
			s.AddMetric(m)
		}
		sims[i] = s
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1f days)\n\n", title(cfg), cfg.Dt, cfg.Duration)

	start := time.Now()
	results, err := sim.RunAll(cmd.Context(), sims, experiment.RunConfig(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tENERGY_DRIFT\tMOMENTUM_DRIFT\tERRORS")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%d\n",
			names[i], res.StepsTaken, res.EnergyDrift, res.Metrics["momentum_drift"], len(res.Errors))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nwall time: %v\n", elapsed.Round(time.Millisecond))
	return nil
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
	fmt.Fprintln(w, "ID\tPRESET\tINTEGRATOR\tBODIES\tDAYS\tDRIFT\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%.2e\t%s\n",
			r.ID, r.Preset, r.Integrator, len(r.Bodies), r.Duration, r.EnergyDrift,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, %s)\n\n", meta.ID, meta.Preset, meta.Integrator)
	for _, name := range res.Names {
		if name == refBody || (plotBody != "" && name != plotBody) {
			continue
		}
		data, err := analysis.Distances(res, name, refBody)
		if err != nil {
			return err
		}
		data = finite(data)
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from %s", name, refBody)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	summaries, err := analysis.Summarise(res, refBody)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s, %d samples over %.1f days\n\n", meta.ID, len(res.Times), meta.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMEAN_R\tMIN_R\tMAX_R\tECC\tPERIOD_DAYS")
	for _, s := range summaries {
		period := "-"
		if s.Period > 0 {
			period = fmt.Sprintf("%.2f", s.Period)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.4f\t%s\n",
			s.Name, s.Radial.Mean, s.Radial.Min, s.Radial.Max, s.Radial.Eccentricity, period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotBody == "" {
		return nil
	}
	data, err := analysis.Distances(res, plotBody, refBody)
	if err != nil {
		return err
	}
	spectrum := analysis.PowerSpectrum(finite(data))
	if len(spectrum) < 2 {
		return analysis.ErrShortSeries
	}
	// Skip the DC bin; the mean distance dominates it.
	plotData := spectrum[1:]
	if len(plotData) > 100 {
		plotData = plotData[:100]
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s distance)", plotBody)),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.WritePositionsCSV(os.Stdout, res)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	out := svgOut
	if out == "" {
		out = args[0] + ".svg"
	}
	if err := os.WriteFile(out, []byte(export.TrajectoriesToSVG(res, svgSize, svgSize)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tINTEGRATOR\tLAGRANGE\tBODIES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		bodies := append([]string(nil), p.Bodies...)
		for _, c := range p.Custom {
			bodies = append(bodies, c.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, p.Integrator, p.Lagrange.Convention(), strings.Join(bodies, ","))
	}
	return w.Flush()
}

func listBodies(cmd *cobra.Command, args []string) error {
	fmt.Printf("epoch: JD %.1f\n\n", ephemeris.EpochJD)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASS_1E24KG\tDIST_AU\tSPEED_AU_DAY")
	for _, e := range ephemeris.Table {
		fmt.Fprintf(w, "%s\t%.6g\t%.4f\t%.6f\n", e.Name, e.Mass, e.Position.Len(), e.Velocity.Len())
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc, st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTEPS\tENERGY_DRIFT")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.3e\n", i+1, sc.Steps[i].Preset, res.StepsTaken, res.EnergyDrift)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	results, err := automation.RunSweep(cmd.Context(), &automation.MassSweep{
		Preset:   args[0],
		Body:     sweepBody,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MASS\tENERGY_DRIFT\tBOUND")
	for _, r := range results {
		fmt.Fprintf(w, "%.6g\t%.3e\t%.0f\n", r.Mass, r.EnergyDrift, r.Bound)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Preset:       args[0],
		Body:         sweepBody,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	return nil
}

func finite(data []float64) []float64 {
	out := data[:0:0]
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
