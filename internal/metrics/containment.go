package metrics

import (
	"github.com/san-kum/mpmsim/internal/mpm"
)

// Containment is the fraction of observed ticks in which every particle was
// finite and inside [cw, space-cw]^2.
type Containment struct {
	name       string
	lo, hi     float64
	violations int
	samples    int
}

func NewContainment(cfg mpm.Config) *Containment {
	cw := cfg.CellWidth()
	return &Containment{
		name: "containment",
		lo:   cw,
		hi:   cfg.SpaceWidth - cw,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(tick int, ps *mpm.ParticleSet) {
	c.samples++
	for i := range ps.Particles() {
		p := &ps.Particles()[i]
		if !p.IsFinite() || p.Pos.X < c.lo || p.Pos.X > c.hi || p.Pos.Y < c.lo || p.Pos.Y > c.hi {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
