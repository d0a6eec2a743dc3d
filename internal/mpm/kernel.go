package mpm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Stencil is the 3x3 neighbourhood of grid nodes a particle exchanges state
// with under the quadratic B-spline kernel.
type Stencil struct {
	BaseX, BaseY int
	// Frac is the particle offset from the base node in cell units, in [0.5, 1.5).
	Frac      r2.Vec
	W         [3]r2.Vec
	cellWidth float64
}

// NewStencil computes the base node, fractional offset and per-axis weights
// for a particle at pos.
func NewStencil(pos r2.Vec, cellWidth float64) Stencil {
	gp := r2.Scale(1/cellWidth, pos)
	bx := math.Floor(gp.X - 0.5)
	by := math.Floor(gp.Y - 0.5)
	fx := r2.Vec{X: gp.X - bx, Y: gp.Y - by}

	return Stencil{
		BaseX: int(bx),
		BaseY: int(by),
		Frac:  fx,
		W: [3]r2.Vec{
			{X: 0.5 * sq(1.5-fx.X), Y: 0.5 * sq(1.5-fx.Y)},
			{X: 0.75 - sq(fx.X-1), Y: 0.75 - sq(fx.Y-1)},
			{X: 0.5 * sq(fx.X-0.5), Y: 0.5 * sq(fx.Y-0.5)},
		},
		cellWidth: cellWidth,
	}
}

func sq(x float64) float64 { return x * x }

func (s *Stencil) Weight(gx, gy int) float64 {
	return s.W[gx].X * s.W[gy].Y
}

// Offset is the world-space vector from the particle to stencil node (gx, gy).
func (s *Stencil) Offset(gx, gy int) r2.Vec {
	return r2.Vec{
		X: (float64(gx) - s.Frac.X) * s.cellWidth,
		Y: (float64(gy) - s.Frac.Y) * s.cellWidth,
	}
}

// Node returns the lattice coordinates of stencil node (gx, gy).
func (s *Stencil) Node(gx, gy int) (int, int) {
	return s.BaseX + gx, s.BaseY + gy
}

// Each calls fn for every stencil node present in g. Nodes outside the
// lattice are skipped.
func (s *Stencil) Each(g *Grid, fn func(idx int, weight float64, dpos r2.Vec)) {
	for gx := 0; gx < 3; gx++ {
		for gy := 0; gy < 3; gy++ {
			x, y := s.Node(gx, gy)
			if !g.InBounds(x, y) {
				continue
			}
			fn(g.index(x, y), s.Weight(gx, gy), s.Offset(gx, gy))
		}
	}
}
