package mpm

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestStencil_PartitionOfUnity(t *testing.T) {
	cfg := DefaultConfig()
	cw := cfg.CellWidth()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		lo, hi := 2.0, float64(cfg.GridWidth-2)
		pos := r2.Vec{
			X: (lo + rng.Float64()*(hi-lo)) * cw,
			Y: (lo + rng.Float64()*(hi-lo)) * cw,
		}
		st := NewStencil(pos, cw)

		sum := 0.0
		for gx := 0; gx < 3; gx++ {
			for gy := 0; gy < 3; gy++ {
				sum += st.Weight(gx, gy)
			}
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("pos %v: weights sum to %.15f, want 1", pos, sum)
		}
	}
}

func TestStencil_FracRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, cw := range []float64{0.1, 0.5, 1, 2.5} {
		for i := 0; i < 100; i++ {
			pos := r2.Vec{X: rng.Float64() * 50, Y: rng.Float64() * 50}
			st := NewStencil(pos, cw)
			for _, f := range []float64{st.Frac.X, st.Frac.Y} {
				if f < 0.5 || f >= 1.5 {
					t.Fatalf("cw=%g pos=%v: frac %g outside [0.5, 1.5)", cw, pos, f)
				}
			}
		}
	}
}

// Quadratic B-splines reproduce linear functions, so the weighted offsets
// from a particle to its stencil nodes cancel.
func TestStencil_FirstMomentVanishes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		pos := r2.Vec{X: 10 + rng.Float64()*20, Y: 10 + rng.Float64()*20}
		st := NewStencil(pos, 0.5)

		var m r2.Vec
		for gx := 0; gx < 3; gx++ {
			for gy := 0; gy < 3; gy++ {
				m = r2.Add(m, r2.Scale(st.Weight(gx, gy), st.Offset(gx, gy)))
			}
		}
		if r2.Norm(m) > 1e-12 {
			t.Fatalf("pos %v: first moment %v, want 0", pos, m)
		}
	}
}

func TestStencil_NodeAligned(t *testing.T) {
	st := NewStencil(r2.Vec{X: 10, Y: 20}, 1)

	if st.BaseX != 9 || st.BaseY != 19 {
		t.Errorf("base = (%d,%d), want (9,19)", st.BaseX, st.BaseY)
	}
	if st.Frac.X != 1 || st.Frac.Y != 1 {
		t.Errorf("frac = %v, want {1 1}", st.Frac)
	}
	if w := st.Weight(1, 1); math.Abs(w-0.5625) > 1e-15 {
		t.Errorf("centre weight = %g, want 0.5625", w)
	}
	if w := st.Weight(0, 2); math.Abs(w-0.015625) > 1e-15 {
		t.Errorf("corner weight = %g, want 0.015625", w)
	}
	if off := st.Offset(2, 0); off.X != 1 || off.Y != -1 {
		t.Errorf("offset(2,0) = %v, want {1 -1}", off)
	}
}

func TestStencil_EachSkipsOutOfBounds(t *testing.T) {
	g := NewGrid(8)

	tests := []struct {
		name string
		pos  r2.Vec
		want int
	}{
		{"interior", r2.Vec{X: 4, Y: 4}, 9},
		{"corner", r2.Vec{X: 0.2, Y: 0.2}, 4},
		{"edge", r2.Vec{X: 4, Y: 0.2}, 6},
		{"outside", r2.Vec{X: -10, Y: -10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewStencil(tt.pos, 1)
			count := 0
			st.Each(g, func(idx int, w float64, dpos r2.Vec) {
				if idx < 0 || idx >= len(g.Nodes()) {
					t.Fatalf("index %d out of range", idx)
				}
				count++
			})
			if count != tt.want {
				t.Errorf("visited %d nodes, want %d", count, tt.want)
			}
		})
	}
}
