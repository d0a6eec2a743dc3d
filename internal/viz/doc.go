// Package viz provides terminal visualization for particle simulations.
//
//   - [Canvas]: braille sub-pixel canvas mapping simulation space to the
//     terminal, with y pointing up
//   - [LiveModel]: Bubble Tea viewer that steps a simulator and turns mouse
//     drags into pointer input
//   - [PlotSeries], [PlotMany]: asciigraph line charts for stored runs
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	+/-   - Repel / attract
//	[ ]   - Fewer / more steps per frame
//	Q     - Quit
package viz
