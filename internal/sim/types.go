package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/mpmsim/internal/dynamo"
	"github.com/san-kum/mpmsim/internal/mpm"
)

type Metric interface {
	Name() string
	Observe(tick int, ps *mpm.ParticleSet)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(tick int, ps *mpm.ParticleSet)
}

// RunConfig bounds a headless run. SnapshotEvery of zero records only the
// initial and final frames.
type RunConfig struct {
	Ticks         int
	SnapshotEvery int
	ValidateState bool
}

func (c RunConfig) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", dynamo.ErrInvalidConfig, c.Ticks)
	}
	if c.SnapshotEvery < 0 {
		return fmt.Errorf("%w: snapshot interval must not be negative, got %d", dynamo.ErrInvalidConfig, c.SnapshotEvery)
	}
	return nil
}

// Frame is a read-only snapshot of every particle at one tick.
type Frame struct {
	Tick      int
	Time      float64
	Particles []mpm.ParticleView
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	TicksTaken int
	Elapsed    time.Duration
	Errors     []error
}

func (r *Result) LastFrame() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

func (r *Result) TicksPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.TicksTaken) / r.Elapsed.Seconds()
}
