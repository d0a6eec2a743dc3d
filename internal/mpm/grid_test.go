package mpm

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid(8)

	if len(g.Nodes()) != 81 {
		t.Fatalf("expected 81 nodes, got %d", len(g.Nodes()))
	}
	if g.Width() != 8 {
		t.Errorf("Width() = %d, want 8", g.Width())
	}

	for x := 0; x <= 8; x++ {
		for y := 0; y <= 8; y++ {
			n, ok := g.At(x, y)
			if !ok {
				t.Fatalf("At(%d,%d) reported absent", x, y)
			}
			if n.IndexX != x || n.IndexY != y {
				t.Fatalf("At(%d,%d) has indices (%d,%d)", x, y, n.IndexX, n.IndexY)
			}
		}
	}
}

func TestGridAt_OutOfBounds(t *testing.T) {
	g := NewGrid(8)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x past width", 9, 4},
		{"y past width", 4, 9},
		{"far away", 1000, -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := g.At(tt.x, tt.y)
			if ok || n != nil {
				t.Errorf("At(%d,%d) = %v, %v; want nil, false", tt.x, tt.y, n, ok)
			}
		})
	}
}

func TestGridReset(t *testing.T) {
	g := NewGrid(8)
	n, _ := g.At(3, 4)
	n.Mass = 2
	n.V = r2.Vec{X: 1, Y: 1}
	g.phase = PhaseVelocity

	g.Reset()

	if g.Phase() != PhaseCleared {
		t.Errorf("phase = %s, want cleared", g.Phase())
	}
	if n.Mass != 0 || n.V != (r2.Vec{}) {
		t.Errorf("node not reset: %+v", *n)
	}
	if n.IndexX != 3 || n.IndexY != 4 {
		t.Errorf("reset clobbered lattice indices: %+v", *n)
	}
}

func TestGridTotalMomentum_Phase(t *testing.T) {
	g := NewGrid(8)
	n, _ := g.At(4, 4)
	n.Mass = 2
	n.V = r2.Vec{X: 3}

	g.phase = PhaseMomentum
	if p := g.TotalMomentum(); p.X != 3 {
		t.Errorf("momentum phase: got %v, want {3 0}", p)
	}

	g.phase = PhaseVelocity
	if p := g.TotalMomentum(); p.X != 6 {
		t.Errorf("velocity phase: got %v, want {6 0}", p)
	}
}

func TestGridPhaseString(t *testing.T) {
	for phase, want := range map[GridPhase]string{
		PhaseCleared:  "cleared",
		PhaseMomentum: "momentum",
		PhaseVelocity: "velocity",
		GridPhase(42): "unknown",
	} {
		if phase.String() != want {
			t.Errorf("%d.String() = %q, want %q", phase, phase.String(), want)
		}
	}
}
