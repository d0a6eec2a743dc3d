package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mpmsim/internal/mpm"
)

// FrameStats summarises a stored frame, where only positions and speeds
// survive. Every particle is assumed to carry particleMass.
type FrameStats struct {
	MeanHeight    float64
	KineticEnergy float64
	MaxSpeed      float64
}

func SummarizeFrame(views []mpm.ParticleView, particleMass float64) FrameStats {
	if len(views) == 0 {
		return FrameStats{}
	}
	ys := make([]float64, len(views))
	speeds := make([]float64, len(views))
	for i, v := range views {
		ys[i] = v.Pos.Y
		speeds[i] = v.Color
	}
	return FrameStats{
		MeanHeight:    stat.Mean(ys, nil),
		KineticEnergy: 0.5 * particleMass * floats.Dot(speeds, speeds),
		MaxSpeed:      floats.Max(speeds),
	}
}
