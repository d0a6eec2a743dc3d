package mpm

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/compute"
)

// Pointer is one tick's sample of the external pointer. Pos is in simulation
// space; HasPos is false when the pointer is outside the view.
type Pointer struct {
	Pressed bool
	Pos     r2.Vec
	HasPos  bool
}

func (p Pointer) Active() bool { return p.Pressed && p.HasPos }

// Interaction is an inverse-square velocity field centred on the pointer.
// Positive Strength pushes particles away, negative pulls them in.
type Interaction struct {
	Strength float64
	// MinDistance excludes particles this close to the pointer, where the
	// field is singular.
	MinDistance float64
}

func DefaultInteraction(cfg Config) Interaction {
	return Interaction{
		Strength:    1e-2,
		MinDistance: 1e-6 * cfg.SpaceWidth,
	}
}

// Impulse returns the velocity change for a particle at pos, and false when
// the particle lies inside MinDistance.
func (in Interaction) Impulse(cfg Config, pos, pointer r2.Vec) (r2.Vec, bool) {
	d := r2.Sub(pos, pointer)
	dist := r2.Norm(d)
	if dist < in.MinDistance || dist == 0 {
		return r2.Vec{}, false
	}
	mag := cfg.Dt * in.Strength * cfg.SpaceWidth * cfg.SpaceWidth / (dist * dist)
	return r2.Scale(mag/dist, d), true
}

// Apply adds the pointer impulse to every particle velocity while the pointer
// is active.
func (in Interaction) Apply(set *ParticleSet, cfg Config, ptr Pointer, backend compute.Backend) {
	if !ptr.Active() || in.Strength == 0 {
		return
	}
	ps := set.particles
	backend.For(len(ps), func(_, start, end int) {
		for i := start; i < end; i++ {
			dv, ok := in.Impulse(cfg, ps[i].Pos, ptr.Pos)
			if ok {
				ps[i].Vel = r2.Add(ps[i].Vel, dv)
			}
		}
	})
}
