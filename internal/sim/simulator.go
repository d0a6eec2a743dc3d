package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/dynamo"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/telemetry"
)

type Simulator struct {
	solver    *mpm.Solver
	pointer   control.PointerSource
	metrics   []Metric
	observers []Observer
	perf      *telemetry.PerfCollector
	pool      *FramePool
	initial   *mpm.ParticleSet
}

func New(solver *mpm.Solver, pointer control.PointerSource) *Simulator {
	if pointer == nil {
		pointer = control.NewNone()
	}
	return &Simulator{
		solver:    solver,
		pointer:   pointer,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		pool:      NewFramePool(solver.Particles().Len()),
		initial:   solver.Particles().Clone(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Solver() *mpm.Solver                  { return s.solver }
func (s *Simulator) Perf() *telemetry.PerfCollector       { return s.perf }
func (s *Simulator) Pool() *FramePool                     { return s.pool }
func (s *Simulator) PointerSource() control.PointerSource { return s.pointer }

// SetPerf attaches a collector that times every solver stage. nil detaches.
func (s *Simulator) SetPerf(p *telemetry.PerfCollector) {
	s.perf = p
	if p == nil {
		s.solver.SetStageHook(nil)
		return
	}
	s.solver.SetStageHook(p)
}

// Reset rewinds the particles to their state when the simulator was built.
func (s *Simulator) Reset() {
	s.solver.Reset(s.initial.Clone())
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Step samples the pointer and advances the solver by one tick.
func (s *Simulator) Step() {
	ptr := s.pointer.Sample(s.solver.Tick())
	if s.perf != nil {
		s.perf.StartTick()
	}
	s.solver.Step(ptr)
	if s.perf != nil {
		s.perf.EndTick()
		if s.perf.WindowFull() {
			slog.Debug("perf", "tick", s.solver.Tick(), "stats", s.perf.Stats())
		}
	}
}

// Frame snapshots the current particles into a freshly allocated buffer.
func (s *Simulator) Frame() Frame {
	return Frame{
		Tick:      s.solver.Tick(),
		Time:      s.solver.Time(),
		Particles: s.solver.Snapshot(nil),
	}
}

func (s *Simulator) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frames := 2
	if cfg.SnapshotEvery > 0 {
		frames += cfg.Ticks / cfg.SnapshotEvery
	}
	result := &Result{
		Frames:  make([]Frame, 0, frames),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	slog.Debug("run start",
		"ticks", cfg.Ticks,
		"particles", s.solver.Particles().Len(),
		"backend", s.solver.Backend().Name(),
	)

	start := time.Now()
	result.Frames = append(result.Frames, s.Frame())
	defer func() {
		result.Elapsed = time.Since(start)
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		s.Step()
		result.TicksTaken++
		tick := s.solver.Tick()
		ps := s.solver.Particles()

		for _, m := range s.metrics {
			m.Observe(tick, ps)
		}
		for _, obs := range s.observers {
			obs.OnTick(tick, ps)
		}

		if cfg.ValidateState {
			if err := s.solver.CheckFinite(); err != nil {
				result.Errors = append(result.Errors, &dynamo.SimulationError{Tick: tick, Wrapped: err})
				break
			}
		}

		if cfg.SnapshotEvery > 0 && tick%cfg.SnapshotEvery == 0 {
			result.Frames = append(result.Frames, s.Frame())
		}
	}

	if last, _ := result.LastFrame(); last.Tick != s.solver.Tick() {
		result.Frames = append(result.Frames, s.Frame())
	}

	slog.Info("run finished",
		"ticks", result.TicksTaken,
		"frames", len(result.Frames),
		"errors", len(result.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// RunWithCallback steps up to ticks times, handing each frame to callback.
// The frame's particle buffer is recycled once callback returns. Returning
// false from callback stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, ticks int, callback func(Frame) bool) error {
	if err := (RunConfig{Ticks: ticks}).Validate(); err != nil {
		return err
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Step()
		tick := s.solver.Tick()
		if err := s.solver.CheckFinite(); err != nil {
			return &dynamo.SimulationError{Tick: tick, Wrapped: err}
		}

		buf := s.solver.Snapshot(s.pool.Get())
		cont := callback(Frame{Tick: tick, Time: s.solver.Time(), Particles: buf})
		s.pool.Put(buf)
		if !cont {
			return nil
		}
	}
	return nil
}
