// Package metrics provides scalar observers of a particle set.
//
// Each metric is fed once per tick by the simulator and reduced to a single
// value at the end of a run:
//
//   - [MeanHeight]: mean particle y at the last observed tick
//   - [KineticEnergy]: time-averaged total kinetic energy
//   - [MaxSpeed]: peak particle speed
//   - [Containment]: fraction of ticks with every particle finite and inside
//     the domain
package metrics
