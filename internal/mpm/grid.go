package mpm

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// GridPhase tags what Node.V currently holds. The same slot carries momentum
// during the scatter stages and velocity after UpdateGrid.
type GridPhase int

const (
	PhaseCleared GridPhase = iota
	PhaseMomentum
	PhaseVelocity
)

func (p GridPhase) String() string {
	switch p {
	case PhaseCleared:
		return "cleared"
	case PhaseMomentum:
		return "momentum"
	case PhaseVelocity:
		return "velocity"
	}
	return "unknown"
}

// Node is one lattice point of the background grid.
type Node struct {
	V      r2.Vec
	Mass   float64
	IndexX int
	IndexY int
}

func (n *Node) reset() {
	n.V = r2.Vec{}
	n.Mass = 0
}

// Grid owns a (width+1) x (width+1) node lattice. Valid indices are
// [0, width] on both axes.
type Grid struct {
	nodes []Node
	width int
	phase GridPhase
}

func NewGrid(gridWidth int) *Grid {
	side := gridWidth + 1
	nodes := make([]Node, side*side)
	for x := 0; x < side; x++ {
		for y := 0; y < side; y++ {
			n := &nodes[x*side+y]
			n.IndexX, n.IndexY = x, y
		}
	}
	return &Grid{nodes: nodes, width: gridWidth}
}

func (g *Grid) Width() int       { return g.width }
func (g *Grid) Phase() GridPhase { return g.phase }

// Nodes exposes the backing lattice, laid out x-major.
func (g *Grid) Nodes() []Node { return g.nodes }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x <= g.width && y <= g.width
}

// At returns the node at lattice coordinates (x, y), or nil, false when the
// coordinates fall outside the lattice.
func (g *Grid) At(x, y int) (*Node, bool) {
	if !g.InBounds(x, y) {
		return nil, false
	}
	return &g.nodes[x*(g.width+1)+y], true
}

func (g *Grid) index(x, y int) int {
	return x*(g.width+1) + y
}

// Reset zeroes every node and marks the grid cleared.
func (g *Grid) Reset() {
	for i := range g.nodes {
		g.nodes[i].reset()
	}
	g.phase = PhaseCleared
}

func (g *Grid) TotalMass() float64 {
	sum := 0.0
	for i := range g.nodes {
		sum += g.nodes[i].Mass
	}
	return sum
}

// TotalMomentum sums node momentum, converting from velocity if UpdateGrid
// has already run.
func (g *Grid) TotalMomentum() r2.Vec {
	var p r2.Vec
	for i := range g.nodes {
		n := &g.nodes[i]
		if g.phase == PhaseVelocity {
			p = r2.Add(p, r2.Scale(n.Mass, n.V))
		} else {
			p = r2.Add(p, n.V)
		}
	}
	return p
}
