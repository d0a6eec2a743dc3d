package mpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/compute"
	"github.com/san-kum/mpmsim/internal/dynamo"
)

// Stage names, in execution order.
const (
	StageClearGrid     = "clear_grid"
	StageScatterMass   = "scatter_mass"
	StageScatterStress = "scatter_stress"
	StageUpdateGrid    = "update_grid"
	StageGather        = "gather"
	StageInteraction   = "interaction"
)

// Stages lists every stage of a tick in the order Step runs them.
var Stages = []string{
	StageClearGrid, StageScatterMass, StageScatterStress,
	StageUpdateGrid, StageGather, StageInteraction,
}

// PressureFloor caps tensile pressure at low density.
const PressureFloor = -0.1

// StageHook is notified as each stage of a tick begins.
type StageHook interface {
	StartPhase(name string)
}

type accum struct {
	mass float64
	v    r2.Vec
}

// Solver advances a particle set one fixed tick at a time.
//
// Scatter stages accumulate into one partial node buffer per backend worker;
// the partials are summed into the grid after all workers finish, so
// overlapping stencils never race.
type Solver struct {
	cfg         Config
	cellWidth   float64
	grid        *Grid
	particles   *ParticleSet
	backend     compute.Backend
	interaction Interaction
	hook        StageHook

	partials [][]accum
	used     []bool
	tick     int
}

func NewSolver(cfg Config, particles *ParticleSet, backend compute.Backend) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if particles == nil {
		particles = NewParticleSet(0)
	}
	if backend == nil {
		backend = compute.GetBackend()
	}

	grid := NewGrid(cfg.GridWidth)
	workers := backend.Workers()
	partials := make([][]accum, workers)
	for w := range partials {
		partials[w] = make([]accum, len(grid.nodes))
	}

	return &Solver{
		cfg:         cfg,
		cellWidth:   cfg.CellWidth(),
		grid:        grid,
		particles:   particles,
		backend:     backend,
		interaction: DefaultInteraction(cfg),
		partials:    partials,
		used:        make([]bool, workers),
	}, nil
}

func (s *Solver) Config() Config               { return s.cfg }
func (s *Solver) Grid() *Grid                  { return s.grid }
func (s *Solver) Particles() *ParticleSet      { return s.particles }
func (s *Solver) Backend() compute.Backend     { return s.backend }
func (s *Solver) Interaction() Interaction     { return s.interaction }
func (s *Solver) SetInteraction(i Interaction) { s.interaction = i }
func (s *Solver) SetStageHook(h StageHook)     { s.hook = h }
func (s *Solver) Tick() int                    { return s.tick }
func (s *Solver) Time() float64                { return float64(s.tick) * s.cfg.Dt }

// Reset swaps in a new particle set, clears the grid and rewinds the tick
// counter.
func (s *Solver) Reset(particles *ParticleSet) {
	if particles == nil {
		particles = NewParticleSet(0)
	}
	s.particles = particles
	s.grid.Reset()
	s.tick = 0
}

func (s *Solver) Snapshot(dst []ParticleView) []ParticleView {
	return s.particles.Snapshot(dst)
}

// Step runs one tick: the five transfer stages in order, then the pointer
// interaction.
func (s *Solver) Step(ptr Pointer) {
	s.begin(StageClearGrid)
	s.ClearGrid()
	s.begin(StageScatterMass)
	s.ScatterMass()
	s.begin(StageScatterStress)
	s.ScatterStress()
	s.begin(StageUpdateGrid)
	s.UpdateGrid()
	s.begin(StageGather)
	s.GatherToParticles()
	s.begin(StageInteraction)
	s.ApplyInteraction(ptr)
	s.tick++
}

func (s *Solver) begin(stage string) {
	if s.hook != nil {
		s.hook.StartPhase(stage)
	}
}

func (s *Solver) ClearGrid() {
	nodes := s.grid.nodes
	s.backend.For(len(nodes), func(_, start, end int) {
		for i := start; i < end; i++ {
			nodes[i].reset()
		}
	})
	s.grid.phase = PhaseCleared
}

// ScatterMass distributes particle mass and APIC momentum onto the grid.
func (s *Solver) ScatterMass() {
	cw := s.cellWidth
	s.scatter(func(p *Particle, acc []accum) {
		st := NewStencil(p.Pos, cw)
		st.Each(s.grid, func(idx int, w float64, dpos r2.Vec) {
			mc := w * p.mass
			acc[idx].mass += mc
			acc[idx].v = r2.Add(acc[idx].v, r2.Scale(mc, r2.Add(p.Vel, p.C.MulVec(dpos))))
		})
	})
	s.grid.phase = PhaseMomentum
}

// ScatterStress adds the momentum change due to pressure and viscous stress on
// top of the momentum already on the grid. It reads the mass field written by
// ScatterMass.
func (s *Solver) ScatterStress() {
	cw := s.cellWidth
	nodes := s.grid.nodes
	s.scatter(func(p *Particle, acc []accum) {
		st := NewStencil(p.Pos, cw)
		density := 0.0
		st.Each(s.grid, func(idx int, w float64, _ r2.Vec) {
			density += w * nodes[idx].Mass / (cw * cw)
		})
		if density <= 0 {
			return
		}

		term := StressTerm(s.cfg, p.mass, density, p.C)
		st.Each(s.grid, func(idx int, w float64, dpos r2.Vec) {
			acc[idx].v = r2.Add(acc[idx].v, r2.Scale(w, term.MulVec(dpos)))
		})
	})
	s.grid.phase = PhaseMomentum
}

// UpdateGrid turns momentum into velocity, applies gravity, and zeroes the
// velocity components of nodes within two cells of a wall.
func (s *Solver) UpdateGrid() {
	nodes := s.grid.nodes
	gw := s.grid.width
	dv := r2.Vec{Y: s.cfg.Dt * s.cfg.Gravity}
	s.backend.For(len(nodes), func(_, start, end int) {
		for i := start; i < end; i++ {
			n := &nodes[i]
			if n.Mass <= 0 {
				continue
			}
			n.V = r2.Add(r2.Scale(1/n.Mass, n.V), dv)

			if n.IndexX < 2 || n.IndexX > gw-2 {
				n.V.X = 0
			}
			if n.IndexY < 2 || n.IndexY > gw-2 {
				n.V.Y = 0
			}
		}
	})
	s.grid.phase = PhaseVelocity
}

// GatherToParticles rebuilds particle velocity and C from the grid, advects,
// clamps into the domain, and nudges velocity away from the walls.
func (s *Solver) GatherToParticles() {
	cw := s.cellWidth
	dt := s.cfg.Dt
	lo, hi := cw, s.cfg.SpaceWidth-cw
	wallMin, wallMax := 3*cw, s.cfg.SpaceWidth-3*cw
	scaleC := 4 / (cw * cw)
	nodes := s.grid.nodes
	ps := s.particles.particles

	s.backend.For(len(ps), func(_, start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			var vel r2.Vec
			var b dynamo.Mat2

			st := NewStencil(p.Pos, cw)
			st.Each(s.grid, func(idx int, w float64, dpos r2.Vec) {
				wv := r2.Scale(w, nodes[idx].V)
				b = b.Add(dynamo.Outer(wv, dpos))
				vel = r2.Add(vel, wv)
			})

			p.C = b.Scale(scaleC)
			p.Vel = vel
			p.Pos = dynamo.Clamp(r2.Add(p.Pos, r2.Scale(dt, vel)), lo, hi)

			// look one unscaled step ahead
			next := r2.Add(p.Pos, p.Vel)
			if next.X < wallMin {
				p.Vel.X += wallMin - next.X
			}
			if next.X > wallMax {
				p.Vel.X += wallMax - next.X
			}
			if next.Y < wallMin {
				p.Vel.Y += wallMin - next.Y
			}
			if next.Y > wallMax {
				p.Vel.Y += wallMax - next.Y
			}
		}
	})
}

func (s *Solver) ApplyInteraction(ptr Pointer) {
	s.interaction.Apply(s.particles, s.cfg, ptr, s.backend)
}

// CheckFinite returns an error naming the first particle or node holding a
// NaN or Inf.
func (s *Solver) CheckFinite() error {
	for i := range s.particles.particles {
		if !s.particles.particles[i].IsFinite() {
			return fmt.Errorf("%w: particle %d", dynamo.ErrNonFinite, i)
		}
	}
	for i := range s.grid.nodes {
		n := &s.grid.nodes[i]
		if !dynamo.VecFinite(n.V) || math.IsNaN(n.Mass) || math.IsInf(n.Mass, 0) {
			return fmt.Errorf("%w: node (%d,%d)", dynamo.ErrNonFinite, n.IndexX, n.IndexY)
		}
	}
	return nil
}

func (s *Solver) scatter(fn func(p *Particle, acc []accum)) {
	ps := s.particles.particles
	for w := range s.used {
		s.used[w] = false
	}

	s.backend.For(len(ps), func(worker, start, end int) {
		acc := s.partials[worker]
		for i := range acc {
			acc[i] = accum{}
		}
		s.used[worker] = true
		for i := start; i < end; i++ {
			fn(&ps[i], acc)
		}
	})

	nodes := s.grid.nodes
	s.backend.For(len(nodes), func(_, start, end int) {
		for w, acc := range s.partials {
			if !s.used[w] {
				continue
			}
			for i := start; i < end; i++ {
				nodes[i].Mass += acc[i].mass
				nodes[i].V = r2.Add(nodes[i].V, acc[i].v)
			}
		}
	})
}

// Pressure evaluates the Tait-style equation of state, floored at
// PressureFloor.
func Pressure(cfg Config, density float64) float64 {
	p := cfg.EOSStiffness * (math.Pow(density/cfg.RestDensity, cfg.EOSPower) - 1)
	if p < PressureFloor {
		p = PressureFloor
	}
	return p
}

// Strain returns C with both off-diagonal entries replaced by their sum.
// This is a doubled sum rather than the symmetric average.
func Strain(c dynamo.Mat2) dynamo.Mat2 {
	s := c
	off := c[0][1] + c[1][0]
	s[0][1] = off
	s[1][0] = off
	return s
}

// StressTerm is the per-particle momentum factor -volume * 4 * stress * dt,
// with stress = -pressure * I + viscosity * Strain(C).
func StressTerm(cfg Config, mass, density float64, c dynamo.Mat2) dynamo.Mat2 {
	volume := mass / density
	pressure := Pressure(cfg, density)
	stress := dynamo.Diag(-pressure, -pressure).Add(Strain(c).Scale(cfg.DynamicViscosity))
	return stress.Scale(-volume * 4 * cfg.Dt)
}
