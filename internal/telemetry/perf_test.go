package telemetry

import (
	"log/slog"
	"testing"
	"time"

	"github.com/san-kum/mpmsim/internal/mpm"
)

var _ mpm.StageHook = (*PerfCollector)(nil)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(mpm.StageScatterMass)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(mpm.StageGather)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[mpm.StageScatterMass]; !ok {
		t.Error("expected scatter_mass phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[mpm.StageGather]; !ok {
		t.Error("expected gather phase to be tracked")
	}
	if pc.TotalTicks() != 5 {
		t.Errorf("expected 5 ticks, got %d", pc.TotalTicks())
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(mpm.StageClearGrid)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
		if full := pc.WindowFull(); full != ((i+1)%5 == 0) {
			t.Errorf("tick %d: WindowFull() = %v", i, full)
		}
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow > fast, got slow=%.1f%% fast=%.1f%%",
			stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgTickDuration != 0 || stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Errorf("unexpected empty stats: %+v", stats)
	}
}

func TestPerfStats_LogValueAndCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 2 * time.Millisecond,
		TicksPerSecond:  500,
		PhasePct: map[string]float64{
			mpm.StageScatterStress: 40,
			mpm.StageGather:        25,
		},
	}

	v := stats.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("expected group value, got %v", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "scatter_stress_pct" && a.Value.Float64() == 40 {
			found = true
		}
	}
	if !found {
		t.Error("scatter_stress_pct missing from log value")
	}

	row := stats.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgTickUS != 2000 || row.ScatterStressPct != 40 || row.GatherPct != 25 {
		t.Errorf("unexpected csv row %+v", row)
	}
}

func TestPerfLog(t *testing.T) {
	pc := NewPerfCollector(3)
	log := NewPerfLog(pc)

	for tick := 1; tick <= 7; tick++ {
		pc.StartTick()
		pc.StartPhase(mpm.StageGather)
		pc.EndTick()
		log.OnTick(tick, nil)
	}

	rows := log.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].WindowEnd != 3 || rows[1].WindowEnd != 6 {
		t.Errorf("window ends = %d, %d; want 3, 6", rows[0].WindowEnd, rows[1].WindowEnd)
	}
}
