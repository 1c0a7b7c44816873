// Package osc provides the core data model for coupled-oscillator chains.
//
// The package defines the fundamental types shared by the decomposition and
// integration layers:
//
//   - [State]: vector of per-mass positions or velocities
//   - [System]: immutable chain of point masses coupled by linear springs,
//     described by a diagonal mass matrix and a symmetric stiffness matrix
//   - [Metric], [Observer]: hooks invoked once per integration step
//
// # Validity
//
// A System is validated at construction: every mass must be positive and the
// stiffness matrix symmetric within [SymmetryTol]. Construction is the only
// place these invariants are checked; downstream code may assume them.
//
// # Thread Safety
//
// System is immutable after construction and safe for concurrent use. State
// values are plain slices and must not be shared across concurrent runs.
package osc
