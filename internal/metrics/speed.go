package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/mpm"
)

type MaxSpeed struct {
	name   string
	speeds []float64
	max    float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(tick int, ps *mpm.ParticleSet) {
	if ps.Len() == 0 {
		return
	}
	m.speeds = m.speeds[:0]
	for i := range ps.Particles() {
		m.speeds = append(m.speeds, r2.Norm(ps.Particles()[i].Vel))
	}
	if v := floats.Max(m.speeds); v > m.max {
		m.max = v
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }
