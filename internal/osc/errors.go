package osc

import "errors"

// Domain errors for chain construction and simulation.
var (
	// ErrInvalidSystem indicates a physically impossible chain: the mass
	// matrix is not positive-definite or the stiffness matrix is not
	// symmetric within tolerance.
	ErrInvalidSystem = errors.New("osc: invalid system")

	// ErrInvalidParameters indicates bad run parameters: non-positive dt,
	// zero or negative step count or duration, or mismatched dimensions.
	ErrInvalidParameters = errors.New("osc: invalid parameters")
)
