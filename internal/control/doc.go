// Package control provides pointer sources that drive the interaction field.
//
// A [PointerSource] is sampled once per tick by the simulator:
//
//   - [None]: pointer never pressed
//   - [Manual]: last pointer set by an interactive viewer
//   - [Script]: timed pointer events, usually loaded from a config file
//
// # Usage
//
//	src := control.NewScript([]control.Event{{Start: 10, End: 40, X: 32, Y: 20}})
//	ptr := src.Sample(tick)
//	solver.Step(ptr)
package control

import "github.com/san-kum/mpmsim/internal/mpm"

// PointerSource yields the pointer state for a tick.
type PointerSource interface {
	Sample(tick int) mpm.Pointer
}
