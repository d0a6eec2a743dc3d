package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/mpmsim/internal/mpm"
)

type KineticEnergy struct {
	name        string
	masses      []float64
	speedSq     []float64
	totalEnergy float64
	last        float64
	samples     int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(tick int, ps *mpm.ParticleSet) {
	e.last = e.measure(ps)
	e.totalEnergy += e.last
	e.samples++
}

func (e *KineticEnergy) measure(ps *mpm.ParticleSet) float64 {
	e.masses = e.masses[:0]
	e.speedSq = e.speedSq[:0]
	for i := range ps.Particles() {
		p := &ps.Particles()[i]
		e.masses = append(e.masses, p.Mass())
		e.speedSq = append(e.speedSq, p.Vel.X*p.Vel.X+p.Vel.Y*p.Vel.Y)
	}
	if len(e.masses) == 0 {
		return 0
	}
	return 0.5 * floats.Dot(e.masses, e.speedSq)
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

// Last is the energy at the most recent tick.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.totalEnergy = 0
	e.last = 0
	e.samples = 0
}
