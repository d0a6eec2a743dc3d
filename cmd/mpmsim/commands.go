package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mpmsim/internal/config"
	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/export"
	"github.com/san-kum/mpmsim/internal/metrics"
	"github.com/san-kum/mpmsim/internal/sim"
	"github.com/san-kum/mpmsim/internal/storage"
	"github.com/san-kum/mpmsim/internal/telemetry"
	"github.com/san-kum/mpmsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := buildSimulator(cfg, nil)
	if err != nil {
		return err
	}
	s.AddMetric(metrics.NewMeanHeight())
	s.AddMetric(metrics.NewKineticEnergy())
	s.AddMetric(metrics.NewMaxSpeed())
	s.AddMetric(metrics.NewContainment(cfg.Simulation))

	var perfLog *telemetry.PerfLog
	if perf := s.Perf(); perf != nil {
		perfLog = telemetry.NewPerfLog(perf)
		s.AddObserver(perfLog)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend := s.Solver().Backend()
	fmt.Printf("running %s: %d particles, %d ticks on %s\n",
		presetName(cfg), s.Solver().Particles().Len(), cfg.Run.Ticks, backend.Name())

	result, err := s.Run(ctx, sim.RunConfig{
		Ticks:         cfg.Run.Ticks,
		SnapshotEvery: cfg.Run.SnapshotEvery,
		ValidateState: cfg.Run.ValidateState,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		slog.Warn("run interrupted, saving partial result", "ticks", result.TicksTaken)
	}

	runID, err := st.Save(cfg, backend.Name(), backend.Workers(), particleMass(s), result)
	if err != nil {
		return err
	}
	if perfLog != nil && len(perfLog.Rows()) > 0 {
		if err := st.WritePerf(runID, perfLog.Rows()); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d (%.0f ticks/s)\n", result.TicksTaken, result.TicksPerSecond())
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	if s.Perf() != nil {
		slog.Info("perf", "stats", s.Perf().Stats())
	}

	return nil
}

func presetName(cfg *config.Config) string {
	if cfg.Preset == "" {
		return "custom"
	}
	return cfg.Preset
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tPARTICLES\tGRID\tBACKEND\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%dms\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Particles,
			run.GridWidth,
			run.Backend,
			run.ElapsedMS,
		)
	}

	return w.Flush()
}

// frameSeries summarizes every stored frame of a run.
func frameSeries(meta *storage.RunMetadata, frames []sim.Frame) (height, energy []float64) {
	height = make([]float64, len(frames))
	energy = make([]float64, len(frames))
	for i, f := range frames {
		stats := metrics.SummarizeFrame(f.Particles, meta.ParticleMass)
		height[i] = stats.MeanHeight
		energy[i] = stats.KineticEnergy
	}
	return height, energy
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("not enough frames to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("frames: %d\n\n", len(frames))

	height, energy := frameSeries(meta, frames)
	fmt.Println(viz.PlotSeries(height, "mean height", 80, 10))
	fmt.Println()
	fmt.Println(viz.PlotSeries(energy, "kinetic energy", 80, 10))
	fmt.Println()
	fmt.Println(viz.PlotMany([][]float64{normalize(height), normalize(energy)},
		"height (cyan) vs energy (gold), normalized", 80, 8))
	fmt.Println()

	perf, err := st.LoadPerf(runID)
	if err != nil || len(perf) < 2 {
		return nil
	}
	tps := make([]float64, len(perf))
	for i, row := range perf {
		tps[i] = row.TicksPerSec
	}
	fmt.Println(viz.PlotSeries(tps, "ticks per second", 80, 6))

	return nil
}

// normalize rescales a copy of values onto [0, 1].
func normalize(values []float64) []float64 {
	out := append([]float64(nil), values...)
	if len(out) == 0 {
		return out
	}
	lo, hi := floats.Min(out), floats.Max(out)
	floats.AddConst(-lo, out)
	if hi > lo {
		floats.Scale(1/(hi-lo), out)
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportMetadata(os.Stdout, meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSON(os.Stdout, meta, frames)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.ExportJSON(f, meta, frames); err != nil {
		return err
	}
	fmt.Printf("exported %d frames to %s\n", len(frames), outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}

	if braille && svgSize < 16 {
		return fmt.Errorf("--size must be at least 16 with --braille")
	}

	idx := frameIndex
	if idx < 0 {
		idx = len(frames) - 1
	}
	if idx >= len(frames) {
		return fmt.Errorf("frame %d out of range (run has %d frames)", idx, len(frames))
	}
	frame := frames[idx]

	path := outPath
	if path == "" {
		path = fmt.Sprintf("%s_%d.svg", runID, frame.Tick)
	}
	svg := export.FrameToSVG(frame, meta.SpaceWidth, svgSize)
	if braille {
		canvas := viz.NewCanvas(svgSize/8, svgSize/16)
		canvas.Frame()
		canvas.Plot(frame.Particles, meta.SpaceWidth)
		svg = export.CanvasToSVG(canvas, 4)
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote tick %d to %s\n", frame.Tick, path)

	if seriesPath != "" {
		height, _ := frameSeries(meta, frames)
		svg := export.SeriesToSVG(height, svgSize, svgSize/2, "#00ccff")
		if err := os.WriteFile(seriesPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote mean height to %s\n", seriesPath)
	}
	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	grids := []int{32, 64, 128}
	backends := []string{"serial", "cpu"}

	fmt.Printf("benchmarking %d ticks per run\n\n", benchTicks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tBACKEND\tWORKERS\tPARTICLES\tTIME\tTICKS/SEC")

	for _, grid := range grids {
		for _, name := range backends {
			cfg := config.DefaultConfig()
			cfg.Simulation.GridWidth = grid
			cfg.Run.Backend = name
			cfg.Run.Ticks = benchTicks
			cfg.Telemetry.PerfWindow = 0
			if err := cfg.Validate(); err != nil {
				return err
			}

			s, err := buildSimulator(cfg, nil)
			if err != nil {
				return err
			}

			// snapshots go through the frame pool, as a viewer would pull them
			frames := 0
			start := time.Now()
			err = s.RunWithCallback(context.Background(), benchTicks, func(f sim.Frame) bool {
				frames++
				return true
			})
			elapsed := time.Since(start)
			if err != nil {
				return err
			}
			backend := s.Solver().Backend()

			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\t%.1f\n",
				grid, backend.Name(), backend.Workers(), s.Solver().Particles().Len(),
				elapsed.Round(time.Millisecond), float64(frames)/elapsed.Seconds())
			backend.Cleanup()
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	pointer := control.NewManual()
	s, err := buildSimulator(cfg, pointer)
	if err != nil {
		return err
	}
	if s.Perf() == nil {
		s.SetPerf(telemetry.NewPerfCollector(config.DefaultPerfWindow))
	}

	m := viz.NewLiveModel(s, pointer, presetName(cfg))
	m.SetStepsPerFrame(stepsPerFrame)
	m.SetFrameRate(frameRate)
	return viz.RunLive(m)
}
