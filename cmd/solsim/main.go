package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/san-kum/solsim/internal/automation"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/gui"
	"github.com/san-kum/solsim/internal/server"
	"github.com/san-kum/solsim/internal/sim"
	"github.com/san-kum/solsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	dataDir  string
	logLevel string

	preset      string
	configFile  string
	integrator  string
	dt          float64
	duration    float64
	speed       float64
	substeps    int
	sampleEvery int
	trails      bool
	halo        bool
	scriptFile  string

	refBody  string
	plotBody string
	svgOut   string
	svgSize  int

	addr      string
	frameRate float64

	sweepBody  string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	mcTrials   int
	mcPerturb  float64
	mcSeed     int64
)

// main registers the solsim commands. With no subcommand the terminal
// preset menu opens.
func main() {
	rootCmd := &cobra.Command{
		Use:   "solsim",
		Short: "gravitational solar system simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".solsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a headless simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run simulation with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	simFlags(liveCmd)
	liveCmd.Flags().StringVar(&scriptFile, "script", "", "event script (yaml)")

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "open the 3D window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	simFlags(guiCmd)
	guiCmd.Flags().StringVar(&scriptFile, "script", "", "event script (yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve [preset]",
		Short: "serve the simulation over http and websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serve,
	}
	simFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().Float64Var(&frameRate, "frame-rate", 10, "frames per second pushed to each websocket client")
	serveCmd.Flags().StringVar(&scriptFile, "script", "", "event script (yaml)")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrators...]",
		Short: "compare integrators on the same preset",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	simFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body distances of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&refBody, "ref", "Sun", "reference body")
	plotCmd.Flags().StringVar(&plotBody, "body", "", "plot only this body")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbit statistics and distance spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&refBody, "ref", "Sun", "reference body")
	analyzeCmd.Flags().StringVar(&plotBody, "body", "", "plot the power spectrum of this body's distance")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and positions as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export sampled positions as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render trajectories to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 800, "image size in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	bodiesCmd := &cobra.Command{
		Use:   "bodies",
		Short: "list the ephemeris table",
		RunE:  listBodies,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a multi-step scenario and store each step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one body's mass",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepBody, "body", "", "body to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "minimum mass (10^24 kg)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "maximum mass (10^24 kg)")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of masses")
	_ = sweepCmd.MarkFlagRequired("body")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "perturb one body's mass and count stable outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	mcCmd.Flags().StringVar(&sweepBody, "body", "", "body to perturb")
	mcCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&mcPerturb, "perturbation", 0.1, "relative mass perturbation")
	mcCmd.Flags().Int64Var(&mcSeed, "seed", 42, "random seed")
	_ = mcCmd.MarkFlagRequired("body")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, serveCmd, compareCmd, listCmd, plotCmd,
		analyzeCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd,
		bodiesCmd, scenarioCmd, sweepCmd, mcCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", config.DefaultPreset, "preset name")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "real seconds per tick")
	cmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "simulated days")
	cmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "simulated days per real second")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "integration substeps per tick")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "ticks between recorded samples")
	cmd.Flags().BoolVar(&trails, "trails", true, "record trails")
	cmd.Flags().BoolVar(&halo, "halo", false, "keep the configured body in a halo orbit")
}

// loadConfig resolves the config file or preset, then applies only the
// flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := preset
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("trails") {
		cfg.Trail.Enabled = trails
	}
	if flags.Changed("halo") {
		cfg.Halo.Enabled = halo
	}
	return cfg, cfg.Validate()
}

func title(cfg *config.Config) string {
	if cfg.Preset != "" {
		return cfg.Preset
	}
	return "custom"
}

func attachScript(s *sim.Simulation) error {
	if scriptFile == "" {
		return nil
	}
	sc, err := automation.LoadScript(scriptFile)
	if err != nil {
		return err
	}
	sc.Attach(s)
	log.Info("script attached", "file", scriptFile, "events", len(sc.Events))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	if err := attachScript(s); err != nil {
		return err
	}
	return viz.RunLive(s, title(cfg))
}

func runGUI(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmd.Flags().Changed("preset") && configFile == "" {
		gui.RunInteractive()
		return nil
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	if err := attachScript(s); err != nil {
		return err
	}
	gui.Run(s, title(cfg))
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := experiment.Build(cfg)
	if err != nil {
		return err
	}
	if err := attachScript(s); err != nil {
		return err
	}

	opts := server.DefaultOptions()
	opts.Addr = addr
	opts.FrameRate = rate.Limit(frameRate)
	opts.Trails = cfg.Trail.Enabled

	ctx := cmd.Context()
	log.Debug("simulation ready", "preset", title(cfg), "bodies", s.Registry().Len())
	if err := server.New(s, opts).ListenAndServe(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
