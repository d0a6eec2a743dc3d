package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mpmsim/internal/sim"
)

type ExportParticle struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color float64 `json:"color"`
}

type ExportFrame struct {
	Tick      int              `json:"tick"`
	Time      float64          `json:"time"`
	Particles []ExportParticle `json:"particles"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

// ExportJSON writes a run's metadata and frames as one indented JSON
// document.
func ExportJSON(w io.Writer, meta *RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Run:    *meta,
		Frames: make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		ef := ExportFrame{
			Tick:      f.Tick,
			Time:      f.Time,
			Particles: make([]ExportParticle, len(f.Particles)),
		}
		for j, p := range f.Particles {
			ef.Particles[j] = ExportParticle{ID: p.ID, X: p.Pos.X, Y: p.Pos.Y, Color: p.Color}
		}
		data.Frames[i] = ef
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportMetadata writes only the run metadata.
func ExportMetadata(w io.Writer, meta *RunMetadata) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(meta)
}
