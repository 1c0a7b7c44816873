// Package modal derives the normal modes of a coupled-oscillator chain by
// solving the generalized eigenvalue problem K·v = ω²·M·v.
//
// The problem is reduced to a standard symmetric one, B·y = ω²·y with
// B = M^(-1/2)·K·M^(-1/2), and handed to a symmetric eigensolver. That route
// guarantees real eigenvalues and numerically orthogonal eigenvectors, which
// forming M⁻¹K and running a general dense eigensolver does not.
package modal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscillab/internal/osc"
)

// Mode is a single normal mode: a frequency and the spatial pattern in which
// all masses oscillate at it.
type Mode struct {
	Omega  float64   // angular frequency, rad/s
	Omega2 float64   // eigenvalue ω²
	Shape  osc.State // unit Euclidean norm
}

// ModeSet holds the modes of a system in ascending frequency order.
//
// For systems with near-degenerate eigenvalues the basis chosen inside the
// degenerate subspace is solver-dependent: mode identity there is unstable
// under perturbation of the inputs, and callers must not rely on it.
type ModeSet struct {
	modes  []Mode
	masses []float64
}

// Decompose solves K·v = ω²·M·v for the given system.
func Decompose(sys *osc.System) (*ModeSet, error) {
	n := sys.Dim()
	k := sys.Stiffness()

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, k.At(i, j)/math.Sqrt(sys.Mass(i)*sys.Mass(j)))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(b, true) {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", osc.ErrInvalidSystem)
	}

	vals := eig.Values(nil) // ascending
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	scale := 1.0
	for _, v := range vals {
		scale = math.Max(scale, math.Abs(v))
	}

	modes := make([]Mode, n)
	for j := 0; j < n; j++ {
		w2 := vals[j]
		if w2 < 0 {
			if w2 < -1e-9*scale {
				return nil, fmt.Errorf("%w: negative eigenvalue %v, stiffness matrix not positive-semidefinite",
					osc.ErrInvalidSystem, w2)
			}
			w2 = 0
		}

		shape := make(osc.State, n)
		for i := 0; i < n; i++ {
			shape[i] = vecs.At(i, j) / math.Sqrt(sys.Mass(i))
		}
		normalize(shape)
		canonicalizeSign(shape)

		modes[j] = Mode{Omega: math.Sqrt(w2), Omega2: w2, Shape: shape}
	}

	return &ModeSet{modes: modes, masses: sys.Masses()}, nil
}

func (ms *ModeSet) Len() int { return len(ms.modes) }

func (ms *ModeSet) Mode(i int) Mode { return ms.modes[i] }

// Frequencies returns the angular frequencies in ascending order.
func (ms *ModeSet) Frequencies() []float64 {
	f := make([]float64, len(ms.modes))
	for i, m := range ms.modes {
		f[i] = m.Omega
	}
	return f
}

// Project expands a displacement vector in the mode basis, returning the
// coefficient of each mode under the M-weighted inner product:
//
//	c_j = (v_jᵀ·M·x) / (v_jᵀ·M·v_j)
func (ms *ModeSet) Project(x osc.State) (osc.State, error) {
	n := len(ms.masses)
	if len(x) != n {
		return nil, fmt.Errorf("%w: vector length %d, want %d", osc.ErrInvalidParameters, len(x), n)
	}

	c := make(osc.State, len(ms.modes))
	for j, m := range ms.modes {
		var num, den float64
		for i := 0; i < n; i++ {
			num += m.Shape[i] * ms.masses[i] * x[i]
			den += m.Shape[i] * ms.masses[i] * m.Shape[i]
		}
		c[j] = num / den
	}
	return c, nil
}

// Reconstruct sums the modes weighted by the given coefficients.
func (ms *ModeSet) Reconstruct(c osc.State) (osc.State, error) {
	if len(c) != len(ms.modes) {
		return nil, fmt.Errorf("%w: coefficient length %d, want %d", osc.ErrInvalidParameters, len(c), len(ms.modes))
	}

	x := make(osc.State, len(ms.masses))
	for j, m := range ms.modes {
		for i := range x {
			x[i] += c[j] * m.Shape[i]
		}
	}
	return x, nil
}

func normalize(s osc.State) {
	n := s.Norm()
	if n == 0 {
		return
	}
	for i := range s {
		s[i] /= n
	}
}

// canonicalizeSign flips a shape so its largest-magnitude component is
// positive. The eigenproblem fixes each vector only up to sign; pinning it
// keeps output stable across solver versions.
func canonicalizeSign(s osc.State) {
	max, idx := 0.0, 0
	for i, v := range s {
		if a := math.Abs(v); a > max {
			max, idx = a, i
		}
	}
	if s[idx] < 0 {
		for i := range s {
			s[i] = -s[i]
		}
	}
}
