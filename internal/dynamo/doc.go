// Package dynamo provides the small numeric primitives shared by the solver.
//
// Positions, velocities and stencil offsets are gonum [r2.Vec] values; this
// package adds what r2 does not carry:
//
//   - [Mat2]: 2x2 matrix for the APIC affine state and the stress tensor
//   - [Outer]: outer product used by the grid-to-particle gather
//   - [ParallelFor]: chunked fan-out over an index range
//
// It also defines the domain errors returned across the module.
//
// # Example
//
//	c := dynamo.Diag(1, 1).Scale(0.5)
//	v := c.MulVec(r2.Vec{X: 2, Y: 4}) // {1, 2}
//
// # Thread Safety
//
// All types here are plain values and safe to copy between goroutines.
package dynamo
