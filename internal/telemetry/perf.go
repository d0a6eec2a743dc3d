package telemetry

import (
	"log/slog"
	"time"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks solver stage timings over a rolling window. It
// satisfies mpm.StageHook, so a solver reports its stages directly.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	totalTicks    int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// frame timing for the live viewer
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

func (p *PerfCollector) WindowSize() int { return p.windowSize }

// TotalTicks counts every tick recorded, including those already rolled out
// of the window.
func (p *PerfCollector) TotalTicks() int { return p.totalTicks }

func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration, len(mpm.Stages))
	p.lastPhase = ""
}

// StartPhase ends the previous phase, if any, and starts timing the next.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.totalTicks++
}

// WindowFull reports whether the last EndTick completed a window.
func (p *PerfCollector) WindowFull() bool {
	return p.totalTicks > 0 && p.totalTicks%p.windowSize == 0
}

func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// per-stage average duration and share of the tick, in percent
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var totalTick, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration, len(phaseSum))
	phasePct := make(map[string]float64, len(phaseSum))
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogValue implements slog.LogValuer. Stages are emitted in solver order.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, stage := range mpm.Stages {
		if pct, ok := s.PhasePct[stage]; ok {
			attrs = append(attrs, slog.Float64(stage+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat record for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd        int     `csv:"window_end"`
	AvgTickUS        int64   `csv:"avg_tick_us"`
	MinTickUS        int64   `csv:"min_tick_us"`
	MaxTickUS        int64   `csv:"max_tick_us"`
	TicksPerSec      float64 `csv:"ticks_per_sec"`
	ClearGridPct     float64 `csv:"clear_grid_pct"`
	ScatterMassPct   float64 `csv:"scatter_mass_pct"`
	ScatterStressPct float64 `csv:"scatter_stress_pct"`
	UpdateGridPct    float64 `csv:"update_grid_pct"`
	GatherPct        float64 `csv:"gather_pct"`
	InteractionPct   float64 `csv:"interaction_pct"`
}

func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:        windowEnd,
		AvgTickUS:        s.AvgTickDuration.Microseconds(),
		MinTickUS:        s.MinTickDuration.Microseconds(),
		MaxTickUS:        s.MaxTickDuration.Microseconds(),
		TicksPerSec:      s.TicksPerSecond,
		ClearGridPct:     s.PhasePct[mpm.StageClearGrid],
		ScatterMassPct:   s.PhasePct[mpm.StageScatterMass],
		ScatterStressPct: s.PhasePct[mpm.StageScatterStress],
		UpdateGridPct:    s.PhasePct[mpm.StageUpdateGrid],
		GatherPct:        s.PhasePct[mpm.StageGather],
		InteractionPct:   s.PhasePct[mpm.StageInteraction],
	}
}

// PerfLog records one CSV row each time the collector completes a window.
// It is attached to a simulator as an observer.
type PerfLog struct {
	perf *PerfCollector
	rows []PerfStatsCSV
}

func NewPerfLog(perf *PerfCollector) *PerfLog {
	return &PerfLog{perf: perf}
}

func (l *PerfLog) OnTick(tick int, _ *mpm.ParticleSet) {
	if l.perf.WindowFull() {
		l.rows = append(l.rows, l.perf.Stats().ToCSV(tick))
	}
}

func (l *PerfLog) Rows() []PerfStatsCSV { return l.rows }
