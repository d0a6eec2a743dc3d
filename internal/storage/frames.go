package storage

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/sim"
)

// LoadFrames reads frames.csv back into frames. Consecutive records sharing a
// tick form one frame.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []*FrameRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, err
	}
	return groupFrames(records), nil
}

func groupFrames(records []*FrameRecord) []sim.Frame {
	frames := make([]sim.Frame, 0)
	for _, r := range records {
		if len(frames) == 0 || frames[len(frames)-1].Tick != r.Tick {
			frames = append(frames, sim.Frame{Tick: r.Tick, Time: r.Time})
		}
		f := &frames[len(frames)-1]
		f.Particles = append(f.Particles, mpm.ParticleView{
			ID:    r.ID,
			Pos:   r2.Vec{X: r.X, Y: r.Y},
			Color: r.Color,
		})
	}
	return frames
}
