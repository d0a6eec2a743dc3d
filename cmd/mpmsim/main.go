package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/sim"
	"github.com/san-kum/mpmsim/internal/storage"
	"github.com/san-kum/mpmsim/internal/telemetry"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	// Config file and preset
	configFile string
	preset     string
	fromRun    string
	// Overrides, applied only when set on the command line
	ticks         int
	dt            float64
	gravity       float64
	gridWidth     int
	backendName   string
	workers       int
	snapshotEvery int
	// Output
	outPath    string
	frameIndex int
	svgSize    int
	seriesPath string
	braille    bool
	// Live view
	frameRate     int
	stepsPerFrame int
	benchTicks    int
)

// main registers the mpmsim commands and exits with status 1 if the selected
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "mpmsim",
		Short:        "2D MLS-MPM fluid simulator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mpmsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	runCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", config.DefaultSnapshotEvery, "ticks between stored frames (0 = first and last only)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot mean height and kinetic energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored frame to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>_<tick>.svg)")
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "frame index (-1 = last)")
	svgCmd.Flags().IntVar(&svgSize, "size", 512, "image size in pixels")
	svgCmd.Flags().StringVar(&seriesPath, "series", "", "also write the mean height curve to this file")
	svgCmd.Flags().BoolVar(&braille, "braille", false, "render through the terminal canvas instead of one circle per particle")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark backends across grid sizes",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 50, "ticks per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", p, config.DescribePreset(p))
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in an interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 1, "ticks per frame")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, svgCmd, benchCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "dam", "preset configuration")
	cmd.Flags().StringVar(&fromRun, "from", "", "start from the config of a stored run instead of a preset")
	cmd.Flags().Float64Var(&dt, "dt", 0.2, "timestep")
	cmd.Flags().Float64Var(&gravity, "gravity", -0.3, "gravity along y")
	cmd.Flags().IntVar(&gridWidth, "grid", 64, "grid nodes per axis")
	cmd.Flags().StringVar(&backendName, "backend", "auto", "compute backend ("+strings.Join(compute.Names(), ", ")+")")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count for the cpu backend (0 = all cores)")
}

func setupLogging(level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q (available: text, json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// resolveConfig builds the run config: the preset (or a stored run's config)
// first, then the config file over it, then any flags set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if fromRun != "" {
		cfg, err = storage.New(dataDir).LoadConfig(fromRun)
	} else {
		cfg, err = config.GetPreset(preset)
	}
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("preset") && fromRun == "" {
			cfg.Preset = ""
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("snapshot-every") {
		cfg.Run.SnapshotEvery = snapshotEvery
	}
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("gravity") {
		cfg.Simulation.Gravity = gravity
	}
	if flags.Changed("grid") {
		cfg.Simulation.GridWidth = gridWidth
	}
	if flags.Changed("backend") {
		cfg.Run.Backend = backendName
	}
	if flags.Changed("workers") {
		cfg.Run.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSimulator seeds the particles and wires solver, backend, interaction
// and perf collector. A nil pointer uses the config's scripted events.
func buildSimulator(cfg *config.Config, pointer control.PointerSource) (*sim.Simulator, error) {
	particles, err := cfg.SeedParticles()
	if err != nil {
		return nil, err
	}
	backend, err := cfg.GetBackend()
	if err != nil {
		return nil, err
	}
	solver, err := mpm.NewSolver(cfg.Simulation, particles, backend)
	if err != nil {
		return nil, err
	}
	solver.SetInteraction(cfg.GetInteraction())

	if pointer == nil {
		pointer = cfg.GetPointerSource()
	}
	s := sim.New(solver, pointer)
	if cfg.Telemetry.PerfWindow > 0 {
		s.SetPerf(telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow))
	}
	return s, nil
}

func particleMass(s *sim.Simulator) float64 {
	if ps := s.Solver().Particles(); ps.Len() > 0 {
		return ps.At(0).Mass()
	}
	return 0
}
