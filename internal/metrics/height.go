package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mpmsim/internal/mpm"
)

type MeanHeight struct {
	name    string
	ys      []float64
	value   float64
	initial float64
	samples int
}

func NewMeanHeight() *MeanHeight {
	return &MeanHeight{name: "mean_height"}
}

func (m *MeanHeight) Name() string { return m.name }

func (m *MeanHeight) Observe(tick int, ps *mpm.ParticleSet) {
	if ps.Len() == 0 {
		return
	}
	m.ys = m.ys[:0]
	for i := range ps.Particles() {
		m.ys = append(m.ys, ps.Particles()[i].Pos.Y)
	}
	m.value = stat.Mean(m.ys, nil)
	if m.samples == 0 {
		m.initial = m.value
	}
	m.samples++
}

func (m *MeanHeight) Value() float64 { return m.value }

// Initial is the mean height at the first observed tick.
func (m *MeanHeight) Initial() float64 { return m.initial }

func (m *MeanHeight) Reset() {
	m.value = 0
	m.initial = 0
	m.samples = 0
}
