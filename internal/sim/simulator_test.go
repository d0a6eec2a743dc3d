package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/dynamo"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/telemetry"
)

func newTestSimulator(t *testing.T, pointer control.PointerSource) *Simulator {
	t.Helper()
	cfg := mpm.DefaultConfig()
	cfg.SpaceWidth = 32
	cfg.GridWidth = 32
	particles, err := mpm.SeedBlock(cfg, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	solver, err := mpm.NewSolver(cfg, particles, compute.NewSerialBackend())
	if err != nil {
		t.Fatal(err)
	}
	return New(solver, pointer)
}

func TestSimulatorRun(t *testing.T) {
	s := newTestSimulator(t, nil)

	result, err := s.Run(context.Background(), RunConfig{Ticks: 20, SnapshotEvery: 5, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.TicksTaken != 20 {
		t.Errorf("expected 20 ticks, got %d", result.TicksTaken)
	}
	wantTicks := []int{0, 5, 10, 15, 20}
	if len(result.Frames) != len(wantTicks) {
		t.Fatalf("expected %d frames, got %d", len(wantTicks), len(result.Frames))
	}
	for i, tick := range wantTicks {
		if result.Frames[i].Tick != tick {
			t.Errorf("frame %d at tick %d, want %d", i, result.Frames[i].Tick, tick)
		}
	}

	last, _ := result.LastFrame()
	if math.Abs(last.Time-20*0.2) > 1e-12 {
		t.Errorf("final time = %g, want 4", last.Time)
	}
	if len(last.Particles) != s.Solver().Particles().Len() {
		t.Error("frame does not cover every particle")
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestSimulatorRun_FinalFrameOffInterval(t *testing.T) {
	s := newTestSimulator(t, nil)

	result, err := s.Run(context.Background(), RunConfig{Ticks: 7, SnapshotEvery: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Frames) != 2 || result.Frames[0].Tick != 0 || result.Frames[1].Tick != 7 {
		t.Errorf("expected initial and final frames, got %d frames", len(result.Frames))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := newTestSimulator(t, nil)

	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"zero ticks", RunConfig{Ticks: 0}},
		{"negative ticks", RunConfig{Ticks: -1}},
		{"negative snapshot", RunConfig{Ticks: 10, SnapshotEvery: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorRun_Cancelled(t *testing.T) {
	s := newTestSimulator(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, RunConfig{Ticks: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.TicksTaken != 0 || len(result.Frames) != 1 {
		t.Errorf("expected partial result with only the initial frame, got %+v", result)
	}
}

func TestSimulatorRun_ValidateState(t *testing.T) {
	s := newTestSimulator(t, nil)
	s.Solver().Particles().At(0).Vel.X = math.Inf(1)

	result, err := s.Run(context.Background(), RunConfig{Ticks: 10, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) || !errors.Is(simErr, dynamo.ErrNonFinite) {
		t.Errorf("expected SimulationError wrapping ErrNonFinite, got %v", result.Errors[0])
	}
	if result.TicksTaken != 1 {
		t.Errorf("expected run to stop after first tick, took %d", result.TicksTaken)
	}
}

type testMetric struct {
	count int
	last  int
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(tick int, ps *mpm.ParticleSet) {
	m.count++
	m.last = tick
}
func (m *testMetric) Value() float64 { return float64(m.count) }
func (m *testMetric) Reset()         { m.count = 0 }

type testObserver struct{ ticks []int }

func (o *testObserver) OnTick(tick int, ps *mpm.ParticleSet) { o.ticks = append(o.ticks, tick) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := newTestSimulator(t, nil)
	metric := &testMetric{}
	obs := &testObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	result, err := s.Run(context.Background(), RunConfig{Ticks: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["test"]; !ok || v != 10 {
		t.Errorf("metric value = %v (found %v), want 10", v, ok)
	}
	if metric.last != 10 {
		t.Errorf("last observed tick = %d, want 10", metric.last)
	}
	if len(obs.ticks) != 10 || obs.ticks[0] != 1 {
		t.Errorf("observer ticks = %v", obs.ticks)
	}
}

func TestSimulatorRunWithCallback(t *testing.T) {
	s := newTestSimulator(t, nil)

	var ticks []int
	err := s.RunWithCallback(context.Background(), 10, func(f Frame) bool {
		ticks = append(ticks, f.Tick)
		return f.Tick < 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ticks) != 4 || ticks[3] != 4 {
		t.Errorf("callback ticks = %v, want 1..4", ticks)
	}
}

func TestSimulatorPointerSource(t *testing.T) {
	script := control.NewScript([]control.Event{{Start: 0, End: 1, X: 16, Y: 5}})
	pushed := newTestSimulator(t, script)
	free := newTestSimulator(t, nil)

	pushed.Step()
	free.Step()

	a := pushed.Solver().Particles().At(0).Vel
	b := free.Solver().Particles().At(0).Vel
	if r2.Norm(r2.Sub(a, b)) < 1e-6 {
		t.Errorf("scripted pointer had no effect: %v vs %v", a, b)
	}
}

func TestSimulatorPerf(t *testing.T) {
	s := newTestSimulator(t, nil)
	perf := telemetry.NewPerfCollector(4)
	s.SetPerf(perf)

	if _, err := s.Run(context.Background(), RunConfig{Ticks: 8}); err != nil {
		t.Fatal(err)
	}

	stats := perf.Stats()
	for _, stage := range mpm.Stages {
		if _, ok := stats.PhaseAvg[stage]; !ok {
			t.Errorf("stage %s not timed", stage)
		}
	}
	if perf.TotalTicks() != 8 {
		t.Errorf("perf saw %d ticks, want 8", perf.TotalTicks())
	}

	s.SetPerf(nil)
	s.Step()
	if perf.TotalTicks() != 8 {
		t.Error("detached collector still recording")
	}
}

func TestSimulatorReset(t *testing.T) {
	s := newTestSimulator(t, nil)
	start := s.Solver().Particles().At(0).Pos

	for i := 0; i < 5; i++ {
		s.Step()
	}
	s.Reset()

	if s.Solver().Tick() != 0 {
		t.Errorf("tick = %d after reset", s.Solver().Tick())
	}
	if s.Solver().Particles().At(0).Pos != start {
		t.Error("particles not rewound")
	}

	s.Step()
	s.Reset()
	if s.Solver().Particles().At(0).Pos != start {
		t.Error("second reset shares state with the first run")
	}
}

func TestFramePool(t *testing.T) {
	p := NewFramePool(16)
	buf := p.Get()
	if len(buf) != 16 {
		t.Fatalf("expected 16 views, got %d", len(buf))
	}
	buf[0] = mpm.ParticleView{ID: 3, Pos: r2.Vec{X: 1}}
	p.Put(buf)
	p.Put(make([]mpm.ParticleView, 2))

	if got := p.Get(); len(got) != 16 {
		t.Errorf("pool returned %d views, want 16", len(got))
	}
}

func TestResultTicksPerSecond(t *testing.T) {
	r := &Result{}
	if r.TicksPerSecond() != 0 {
		t.Error("expected zero rate without elapsed time")
	}
	if _, ok := r.LastFrame(); ok {
		t.Error("expected no last frame")
	}
}
