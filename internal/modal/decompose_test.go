package modal

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/oscillab/internal/osc"
)

// Closed form for the wall-pinned uniform chain:
// ω_n² = (2k/m)·(1 − cos(nπ/(N+1))), n = 1..N.
func closedFormOmega2(n, total int, m, k float64) float64 {
	return 2 * k / m * (1 - math.Cos(float64(n)*math.Pi/float64(total+1)))
}

func TestDecomposeUniformChainClosedForm(t *testing.T) {
	g := NewWithT(t)

	sys, err := osc.NewUniformChain(3, 1.0, 3.0)
	g.Expect(err).NotTo(HaveOccurred())

	ms, err := Decompose(sys)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ms.Len()).To(Equal(3))

	for n := 1; n <= 3; n++ {
		want := closedFormOmega2(n, 3, 1.0, 3.0)
		g.Expect(ms.Mode(n - 1).Omega2).To(BeNumerically("~", want, 1e-6),
			"eigenvalue %d", n)
		g.Expect(ms.Mode(n - 1).Omega).To(BeNumerically("~", math.Sqrt(want), 1e-6),
			"frequency %d", n)
	}
}

func TestDecomposeUniformChainShapes(t *testing.T) {
	g := NewWithT(t)

	sys, err := osc.NewUniformChain(3, 1.0, 3.0)
	g.Expect(err).NotTo(HaveOccurred())

	ms, err := Decompose(sys)
	g.Expect(err).NotTo(HaveOccurred())

	s2 := math.Sqrt2 / 2
	want := []osc.State{
		{0.5, s2, 0.5},
		{s2, 0, -s2},
		{0.5, -s2, 0.5},
	}

	for j := range want {
		shape := ms.Mode(j).Shape
		g.Expect(shape.Norm()).To(BeNumerically("~", 1.0, 1e-9), "mode %d norm", j+1)

		// Eigenvectors are fixed only up to sign.
		direct := shape.Sub(want[j]).Norm()
		flipped := shape.Add(want[j]).Norm()
		g.Expect(math.Min(direct, flipped)).To(BeNumerically("<", 1e-6), "mode %d shape", j+1)
	}
}

func TestDecomposeAscendingOrder(t *testing.T) {
	g := NewWithT(t)

	sys, err := osc.NewUniformChain(5, 2.0, 7.0)
	g.Expect(err).NotTo(HaveOccurred())

	ms, err := Decompose(sys)
	g.Expect(err).NotTo(HaveOccurred())

	for j := 1; j < ms.Len(); j++ {
		g.Expect(ms.Mode(j).Omega2).To(BeNumerically(">=", ms.Mode(j-1).Omega2))
	}
}

func TestDecomposeMOrthogonality(t *testing.T) {
	g := NewWithT(t)

	// Non-uniform masses exercise the generalized (M-weighted) path.
	k := mat.NewSymDense(3, []float64{
		5, -2, 0,
		-2, 7, -3,
		0, -3, 4,
	})
	sys, err := osc.NewSystem([]float64{1, 2, 3}, k)
	g.Expect(err).NotTo(HaveOccurred())

	ms, err := Decompose(sys)
	g.Expect(err).NotTo(HaveOccurred())

	// VᵀMV must be diagonal.
	for a := 0; a < ms.Len(); a++ {
		for b := a + 1; b < ms.Len(); b++ {
			var dot float64
			for i := 0; i < sys.Dim(); i++ {
				dot += ms.Mode(a).Shape[i] * sys.Mass(i) * ms.Mode(b).Shape[i]
			}
			g.Expect(dot).To(BeNumerically("~", 0, 1e-9), "modes %d,%d", a, b)
		}
	}
}

func TestDecomposeRejectsIndefiniteStiffness(t *testing.T) {
	g := NewWithT(t)

	k := mat.NewSymDense(2, []float64{-4, 0, 0, 1})
	sys, err := osc.NewSystem([]float64{1, 1}, k)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = Decompose(sys)
	g.Expect(err).To(MatchError(osc.ErrInvalidSystem))
}

func TestProjectReconstructRoundtrip(t *testing.T) {
	g := NewWithT(t)

	sys, err := osc.NewUniformChain(3, 1.0, 3.0)
	g.Expect(err).NotTo(HaveOccurred())

	ms, err := Decompose(sys)
	g.Expect(err).NotTo(HaveOccurred())

	x := osc.State{1, 0, 0} // excites all three modes
	c, err := ms.Project(x)
	g.Expect(err).NotTo(HaveOccurred())

	back, err := ms.Reconstruct(c)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(back.Sub(x).Norm()).To(BeNumerically("<", 1e-9))

	_, err = ms.Project(osc.State{1, 0})
	g.Expect(err).To(MatchError(osc.ErrInvalidParameters))

	_, err = ms.Reconstruct(osc.State{1})
	g.Expect(err).To(MatchError(osc.ErrInvalidParameters))
}
