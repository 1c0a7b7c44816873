package osc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymmetryTol is the relative tolerance used to accept a stiffness matrix as
// symmetric.
const SymmetryTol = 1e-9

// System describes a chain of point masses coupled to their neighbors and to
// fixed walls by linear springs. The mass matrix is diagonal-positive and the
// stiffness matrix symmetric; both are fixed at construction.
type System struct {
	n      int
	masses []float64
	k      *mat.SymDense
}

// NewSystem builds a System from the diagonal of the mass matrix and a
// stiffness matrix. The stiffness matrix is symmetrized entry-by-entry after
// passing the symmetry check, so downstream algebra sees an exactly symmetric
// matrix.
func NewSystem(masses []float64, k mat.Matrix) (*System, error) {
	n := len(masses)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty mass vector", ErrInvalidParameters)
	}
	r, c := k.Dims()
	if r != n || c != n {
		return nil, fmt.Errorf("%w: stiffness matrix is %dx%d, want %dx%d", ErrInvalidParameters, r, c, n, n)
	}
	for i, m := range masses {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("%w: mass %d is %v, must be positive", ErrInvalidSystem, i+1, m)
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			kij, kji := k.At(i, j), k.At(j, i)
			scale := math.Max(1, math.Max(math.Abs(kij), math.Abs(kji)))
			if math.Abs(kij-kji) > SymmetryTol*scale {
				return nil, fmt.Errorf("%w: stiffness matrix not symmetric at (%d,%d): %v vs %v",
					ErrInvalidSystem, i, j, kij, kji)
			}
			sym.SetSym(i, j, 0.5*(kij+kji))
		}
	}

	m := make([]float64, n)
	copy(m, masses)
	return &System{n: n, masses: m, k: sym}, nil
}

// NewUniformChain builds the canonical wall-pinned chain of n equal masses m
// joined by n+1 equal springs of stiffness k. The stiffness matrix is
// tridiagonal: 2k on the diagonal, -k off it.
func NewUniformChain(n int, m, k float64) (*System, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: chain needs at least one mass, got %d", ErrInvalidParameters, n)
	}
	if m <= 0 || k <= 0 {
		return nil, fmt.Errorf("%w: mass and stiffness must be positive (m=%v, k=%v)", ErrInvalidSystem, m, k)
	}

	masses := make([]float64, n)
	stiff := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		masses[i] = m
		stiff.SetSym(i, i, 2*k)
		if i+1 < n {
			stiff.SetSym(i, i+1, -k)
		}
	}
	return &System{n: n, masses: masses, k: stiff}, nil
}

// Dim returns the number of masses in the chain.
func (s *System) Dim() int { return s.n }

// Mass returns the i-th mass.
func (s *System) Mass(i int) float64 { return s.masses[i] }

// Masses returns a copy of the diagonal of the mass matrix.
func (s *System) Masses() []float64 {
	m := make([]float64, s.n)
	copy(m, s.masses)
	return m
}

// MassMatrix returns the diagonal mass matrix M.
func (s *System) MassMatrix() *mat.DiagDense {
	return mat.NewDiagDense(s.n, s.Masses())
}

// Stiffness returns a copy of the stiffness matrix K.
func (s *System) Stiffness() *mat.SymDense {
	k := mat.NewSymDense(s.n, nil)
	k.CopySym(s.k)
	return k
}

// Accel computes a = -M⁻¹·K·x. M is diagonal, so the inverse is an
// elementwise division rather than a matrix inverse.
func (s *System) Accel(x State) State {
	a := make(State, s.n)
	for i := 0; i < s.n; i++ {
		var f float64
		for j := 0; j < s.n; j++ {
			f -= s.k.At(i, j) * x[j]
		}
		a[i] = f / s.masses[i]
	}
	return a
}

// Energy returns the total mechanical energy ½·vᵀMv + ½·xᵀKx.
func (s *System) Energy(x, v State) float64 {
	e := 0.0
	for i := 0; i < s.n; i++ {
		e += 0.5 * s.masses[i] * v[i] * v[i]
	}
	for i := 0; i < s.n; i++ {
		for j := 0; j < s.n; j++ {
			e += 0.5 * x[i] * s.k.At(i, j) * x[j]
		}
	}
	return e
}
