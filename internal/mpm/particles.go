package mpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/dynamo"
)

// Particle is one material point. Mass is fixed at creation.
type Particle struct {
	Pos  r2.Vec
	Vel  r2.Vec
	C    dynamo.Mat2 // APIC affine velocity matrix
	mass float64
}

func (p *Particle) Mass() float64 { return p.mass }

// IsFinite reports whether position, velocity and C are all finite.
func (p *Particle) IsFinite() bool {
	return dynamo.VecFinite(p.Pos) && dynamo.VecFinite(p.Vel) && p.C.IsFinite()
}

// ParticleView is the read-only per-particle record handed to renderers and
// storage. Color is the particle speed.
type ParticleView struct {
	ID    int
	Pos   r2.Vec
	Color float64
}

// ParticleSet holds every material point of a run. Its length never changes
// once the solver starts stepping.
type ParticleSet struct {
	particles []Particle
}

func NewParticleSet(capacity int) *ParticleSet {
	return &ParticleSet{particles: make([]Particle, 0, capacity)}
}

// Add appends a particle at rest and returns its id.
func (s *ParticleSet) Add(pos, vel r2.Vec, mass float64) (int, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return 0, fmt.Errorf("%w: mass must be positive and finite, got %g", dynamo.ErrInvalidParticle, mass)
	}
	if !dynamo.VecFinite(pos) || !dynamo.VecFinite(vel) {
		return 0, fmt.Errorf("%w: non-finite position or velocity", dynamo.ErrInvalidParticle)
	}
	s.particles = append(s.particles, Particle{Pos: pos, Vel: vel, mass: mass})
	return len(s.particles) - 1, nil
}

func (s *ParticleSet) Len() int { return len(s.particles) }

// At returns the particle with the given id, or nil if it does not exist.
func (s *ParticleSet) At(id int) *Particle {
	if id < 0 || id >= len(s.particles) {
		return nil
	}
	return &s.particles[id]
}

// Particles exposes the backing slice. Callers may mutate Pos, Vel and C.
func (s *ParticleSet) Particles() []Particle { return s.particles }

func (s *ParticleSet) TotalMass() float64 {
	sum := 0.0
	for i := range s.particles {
		sum += s.particles[i].mass
	}
	return sum
}

func (s *ParticleSet) AllFinite() bool {
	for i := range s.particles {
		if !s.particles[i].IsFinite() {
			return false
		}
	}
	return true
}

// Snapshot fills dst with one view per particle in id order, reusing its
// backing array when large enough.
func (s *ParticleSet) Snapshot(dst []ParticleView) []ParticleView {
	if cap(dst) < len(s.particles) {
		dst = make([]ParticleView, len(s.particles))
	}
	dst = dst[:len(s.particles)]
	for i := range s.particles {
		p := &s.particles[i]
		dst[i] = ParticleView{ID: i, Pos: p.Pos, Color: r2.Norm(p.Vel)}
	}
	return dst
}

// Clone returns a deep copy, used to rewind a run to its initial state.
func (s *ParticleSet) Clone() *ParticleSet {
	c := &ParticleSet{particles: make([]Particle, len(s.particles))}
	copy(c.particles, s.particles)
	return c
}

// SeedBlock packs particles on a regular lattice filling [min, max]^2 with a
// spacing of half a cell. Every particle gets mass rho_0 * area / count.
func SeedBlock(cfg Config, min, max float64) (*ParticleSet, error) {
	return SeedRect(cfg, r2.Vec{X: min, Y: min}, r2.Vec{X: max, Y: max})
}

// SeedRect is SeedBlock for an axis-aligned rectangle.
func SeedRect(cfg Config, lo, hi r2.Vec) (*ParticleSet, error) {
	if !(hi.X > lo.X) || !(hi.Y > lo.Y) {
		return nil, fmt.Errorf("%w: seed span %v..%v is empty", dynamo.ErrInvalidConfig, lo, hi)
	}
	spacing := cfg.CellWidth() / 2
	spanX, spanY := hi.X-lo.X, hi.Y-lo.Y
	nx, ny := latticeCount(spanX, spacing), latticeCount(spanY, spacing)

	mass := cfg.Rho0 * spanX * spanY / float64(nx*ny)
	set := NewParticleSet(nx * ny)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			pos := r2.Vec{
				X: spanX*(float64(ix)+0.5)/float64(nx) + lo.X,
				Y: spanY*(float64(iy)+0.5)/float64(ny) + lo.Y,
			}
			if _, err := set.Add(pos, r2.Vec{}, mass); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func latticeCount(span, spacing float64) int {
	n := int(span/spacing + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
