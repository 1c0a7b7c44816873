// Package integrators implements the explicit (forward) Euler stepping rule
// over interchangeable acceleration models.
//
// Both simulation modes share one update order:
//
//  1. x_next = x_prev + v_prev·dt
//  2. a_prev = accel(x_prev)
//  3. v_next = v_prev + a_prev·dt
//
// The acceleration is always evaluated at the pre-step position. Evaluating
// it at x_next instead would turn the scheme into semi-implicit Euler, which
// has materially different energy-drift behavior.
package integrators

import (
	"fmt"

	"github.com/san-kum/oscillab/internal/osc"
)

// Acceleration evaluates restoring accelerations for a displacement vector.
type Acceleration interface {
	Accel(x osc.State) osc.State
	Dim() int
}

// ScalarMode is the single-mode acceleration rule a = -ω²·x, used when the
// initial condition is a pure mode shape.
type ScalarMode struct {
	omega2 float64
	n      int
}

func NewScalarMode(omega float64, n int) (*ScalarMode, error) {
	if omega < 0 {
		return nil, fmt.Errorf("%w: negative frequency %v", osc.ErrInvalidParameters, omega)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: dimension %d, must be at least 1", osc.ErrInvalidParameters, n)
	}
	return &ScalarMode{omega2: omega * omega, n: n}, nil
}

func (m *ScalarMode) Dim() int { return m.n }

func (m *ScalarMode) Accel(x osc.State) osc.State {
	a := make(osc.State, len(x))
	for i := range x {
		a[i] = -m.omega2 * x[i]
	}
	return a
}

// MatrixMode is the full-system acceleration rule a = -M⁻¹·K·x.
type MatrixMode struct {
	sys *osc.System
}

func NewMatrixMode(sys *osc.System) *MatrixMode {
	return &MatrixMode{sys: sys}
}

func (m *MatrixMode) Dim() int { return m.sys.Dim() }

func (m *MatrixMode) Accel(x osc.State) osc.State {
	return m.sys.Accel(x)
}

// Energy implements osc.EnergyComputer.
func (m *MatrixMode) Energy(x, v osc.State) float64 {
	return m.sys.Energy(x, v)
}

// Euler is the explicit first-order integrator. Local truncation error per
// step is O(dt²), global error O(dt).
type Euler struct{}

func NewEuler() Euler { return Euler{} }

// Step advances one time increment and returns the new position and velocity
// vectors. Inputs are not mutated.
func (Euler) Step(acc Acceleration, x, v osc.State, dt float64) (osc.State, osc.State) {
	xNext := make(osc.State, len(x))
	for i := range x {
		xNext[i] = x[i] + v[i]*dt
	}

	a := acc.Accel(x) // pre-step position

	vNext := make(osc.State, len(v))
	for i := range v {
		vNext[i] = v[i] + a[i]*dt
	}
	return xNext, vNext
}
