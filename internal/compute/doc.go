// Package compute provides execution backends for the solver's data-parallel loops.
//
// A [Backend] runs a function over contiguous chunks of an index range and
// reports which worker owns each chunk, so callers can keep one scratch buffer
// per worker and reduce afterwards:
//
//   - [CPUBackend]: chunked goroutines, one per worker
//   - [SerialBackend]: everything inline on the calling goroutine
//
// # Usage
//
//	backend := compute.GetBackend()
//	backend.For(len(particles), func(worker, start, end int) {
//	    for i := start; i < end; i++ { ... }
//	})
//
// For grids of 64x64 and a few thousand particles the CPU backend is roughly
// NumCPU times faster than serial on the scatter stages.
package compute
