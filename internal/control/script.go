package control

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// Event presses the pointer at (X, Y) for ticks in [Start, End).
type Event struct {
	Start int     `yaml:"start" json:"start"`
	End   int     `yaml:"end" json:"end"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
}

func (e Event) Active(tick int) bool {
	return tick >= e.Start && tick < e.End
}

func (e Event) Validate() error {
	if e.Start < 0 || e.End <= e.Start {
		return fmt.Errorf("pointer event [%d, %d) is empty", e.Start, e.End)
	}
	return nil
}

// Script replays a fixed list of events. When several overlap, the first in
// the list wins.
type Script struct {
	events []Event
}

func NewScript(events []Event) *Script {
	s := &Script{events: make([]Event, len(events))}
	copy(s.events, events)
	return s
}

func (s *Script) Events() []Event { return s.events }

func (s *Script) Sample(tick int) mpm.Pointer {
	for _, e := range s.events {
		if e.Active(tick) {
			return mpm.Pointer{Pressed: true, HasPos: true, Pos: r2.Vec{X: e.X, Y: e.Y}}
		}
	}
	return mpm.Pointer{}
}
