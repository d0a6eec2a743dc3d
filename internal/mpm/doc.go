// Package mpm implements a 2D Material Point Method solver with affine
// particle-in-cell (APIC) transfers.
//
// A [Solver] owns a [Grid] and a [ParticleSet] and advances them one fixed
// tick per [Solver.Step]:
//
//   - ClearGrid: zero every node
//   - ScatterMass: particle mass and APIC momentum onto the 3x3 [Stencil]
//   - ScatterStress: equation-of-state pressure plus viscous strain
//   - UpdateGrid: momentum to velocity, gravity, sticky walls
//   - GatherToParticles: velocity and C back to particles, advect, clamp
//
// followed by the pointer-driven [Interaction].
//
// # Example
//
//	cfg := mpm.DefaultConfig()
//	particles, _ := mpm.SeedBlock(cfg, 16, 48)
//	solver, _ := mpm.NewSolver(cfg, particles, compute.GetBackend())
//	for i := 0; i < 100; i++ {
//	    solver.Step(mpm.Pointer{})
//	}
//	views := solver.Snapshot(nil)
//
// # Thread Safety
//
// A Solver is NOT safe for concurrent use. Step parallelises internally on
// its backend and returns only after every stage has completed.
package mpm
