package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/oscillab/internal/integrators"
	"github.com/san-kum/oscillab/internal/modal"
	"github.com/san-kum/oscillab/internal/osc"
	"github.com/san-kum/oscillab/internal/sim"
)

var _ = Describe("Simulator", func() {
	var sys *osc.System

	BeforeEach(func() {
		var err error
		sys, err = osc.NewUniformChain(3, 1.0, 3.0)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("parameter validation", func() {
		It("rejects non-positive dt", func() {
			_, err := sim.SimulateMode(context.Background(), 1.0, osc.State{1, 0, 0}, 0, 100)
			Expect(err).To(MatchError(osc.ErrInvalidParameters))

			_, err = sim.SimulateMode(context.Background(), 1.0, osc.State{1, 0, 0}, -0.01, 100)
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
		})

		It("rejects a zero step count", func() {
			_, err := sim.SimulateMode(context.Background(), 1.0, osc.State{1, 0, 0}, 0.01, 0)
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
		})

		It("rejects mismatched vector lengths", func() {
			_, err := sim.SimulateSystem(context.Background(), sys, osc.State{1, 0, 0}, osc.State{0, 0}, 0.01, 10)
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
		})

		It("rejects state vectors that do not match the system dimension", func() {
			_, err := sim.SimulateSystem(context.Background(), sys, osc.State{1, 0}, osc.State{0, 0}, 0.01, 10)
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
		})

		It("rejects a non-positive duration", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			_, err := s.Run(context.Background(), osc.State{1, 0, 0}, osc.Zeros(3), sim.Config{Dt: 0.01, Duration: 0})
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
		})

		It("fails before producing any samples", func() {
			collected := 0
			s := sim.New(integrators.NewMatrixMode(sys))
			err := s.RunWithCallback(context.Background(), osc.State{1, 0, 0}, osc.Zeros(3),
				sim.Config{Dt: -1, Duration: 1},
				func(t float64, x, v osc.State) bool { collected++; return true })
			Expect(err).To(MatchError(osc.ErrInvalidParameters))
			Expect(collected).To(BeZero())
		})
	})

	Describe("trajectory shape", func() {
		It("produces steps+1 samples on the dt grid", func() {
			traj, err := sim.SimulateMode(context.Background(), 2.0, osc.State{1, 0, -1}, 0.05, 40)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj).To(HaveLen(41))
			Expect(traj[0].T).To(BeZero())
			Expect(traj[40].T).To(BeNumerically("~", 2.0, 1e-12))
			Expect(traj[0].X).To(Equal([]float64{1, 0, -1}))
			Expect(traj[0].V).To(Equal([]float64{0, 0, 0}))
		})

		It("includes the initial sample plus one per step on duration runs", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			result, err := s.Run(context.Background(), osc.State{1, 0, 0}, osc.Zeros(3), sim.Config{Dt: 0.1, Duration: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(10))
			Expect(result.Trajectory).To(HaveLen(11))
			Expect(result.Trajectory[10].T).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("derives the step count from the duration by ceiling", func() {
			Expect(sim.Config{Dt: 0.01, Duration: 10}.Steps()).To(Equal(1000))
			Expect(sim.Config{Dt: 0.3, Duration: 1}.Steps()).To(Equal(4))
		})
	})

	Describe("determinism", func() {
		It("is bit-identical across repeated runs", func() {
			a, err := sim.SimulateMode(context.Background(), 1.3256, osc.State{0.5, 0.7071, 0.5}, 0.01, 500)
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.SimulateMode(context.Background(), 1.3256, osc.State{0.5, 0.7071, 0.5}, 0.01, 500)
			Expect(err).NotTo(HaveOccurred())

			for i := range a {
				Expect(b[i].X).To(Equal(a[i].X), "sample %d", i)
				Expect(b[i].V).To(Equal(a[i].V), "sample %d", i)
			}
		})
	})

	Describe("superposition", func() {
		It("equals the coefficient-weighted sum of per-mode runs", func() {
			ms, err := modal.Decompose(sys)
			Expect(err).NotTo(HaveOccurred())

			x0 := osc.State{1, 0, 0} // only the first mass displaced
			coeffs, err := ms.Project(x0)
			Expect(err).NotTo(HaveOccurred())

			const dt, steps = 0.01, 100
			full, err := sim.SimulateSystem(context.Background(), sys, x0, osc.Zeros(3), dt, steps)
			Expect(err).NotTo(HaveOccurred())

			perMode := make([]sim.Trajectory, ms.Len())
			for j := 0; j < ms.Len(); j++ {
				amp := ms.Mode(j).Shape.Scale(coeffs[j])
				perMode[j], err = sim.SimulateMode(context.Background(), ms.Mode(j).Omega, amp, dt, steps)
				Expect(err).NotTo(HaveOccurred())
			}

			for i := range full {
				for m := 0; m < 3; m++ {
					var xSum, vSum float64
					for j := 0; j < ms.Len(); j++ {
						xSum += perMode[j][i].X[m]
						vSum += perMode[j][i].V[m]
					}
					Expect(full[i].X[m]).To(BeNumerically("~", xSum, 1e-8), "x, sample %d mass %d", i, m)
					Expect(full[i].V[m]).To(BeNumerically("~", vSum, 1e-8), "v, sample %d mass %d", i, m)
				}
			}
		})
	})

	Describe("energy drift", func() {
		It("strictly grows under explicit Euler", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			x0 := osc.State{1, 0, 0}
			result, err := s.Run(context.Background(), x0, osc.Zeros(3), sim.Config{Dt: 0.01, Duration: 10})
			Expect(err).NotTo(HaveOccurred())

			e0 := sys.Energy(x0, osc.Zeros(3))
			last := result.Trajectory[len(result.Trajectory)-1]
			eFinal := sys.Energy(last.X, last.V)

			Expect(eFinal).To(BeNumerically(">", e0))
			Expect(result.EnergyDrift).To(BeNumerically(">", 0))
		})
	})

	Describe("streaming", func() {
		It("visits the same samples as an eager run", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			cfg := sim.Config{Dt: 0.02, Duration: 1}

			eager, err := s.Run(context.Background(), osc.State{0, 1, 0}, osc.Zeros(3), cfg)
			Expect(err).NotTo(HaveOccurred())

			var streamed []osc.State
			err = s.RunWithCallback(context.Background(), osc.State{0, 1, 0}, osc.Zeros(3), cfg,
				func(t float64, x, v osc.State) bool {
					streamed = append(streamed, x.Clone())
					return true
				})
			Expect(err).NotTo(HaveOccurred())
			Expect(streamed).To(HaveLen(len(eager.Trajectory)))
			for i := range streamed {
				Expect([]float64(streamed[i])).To(Equal(eager.Trajectory[i].X), "sample %d", i)
			}
		})

		It("stops early when the callback returns false", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			seen := 0
			err := s.RunWithCallback(context.Background(), osc.State{1, 0, 0}, osc.Zeros(3),
				sim.Config{Dt: 0.01, Duration: 10},
				func(t float64, x, v osc.State) bool {
					seen++
					return seen < 5
				})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal(5))
		})
	})

	Describe("cancellation", func() {
		It("returns the context error mid-run", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			s := sim.New(integrators.NewMatrixMode(sys))
			_, err := s.Run(ctx, osc.State{1, 0, 0}, osc.Zeros(3), sim.Config{Dt: 0.01, Duration: 10})
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("metrics", func() {
		It("resets and reports registered metrics", func() {
			s := sim.New(integrators.NewMatrixMode(sys))
			m := &countingMetric{}
			s.AddMetric(m)

			result, err := s.Run(context.Background(), osc.State{1, 0, 0}, osc.Zeros(3), sim.Config{Dt: 0.1, Duration: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics).To(HaveKeyWithValue("count", 10.0))
		})
	})
})

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                      { return "count" }
func (c *countingMetric) Observe(x, v osc.State, t float64) { c.n++ }
func (c *countingMetric) Value() float64                    { return float64(c.n) }
func (c *countingMetric) Reset()                            { c.n = 0 }

var _ = Describe("Explicit Euler discriminant", func() {
	It("is not replaced by a symplectic scheme", func() {
		// Semi-implicit Euler conserves a shadow energy and would not show
		// monotone growth; explicit Euler multiplies the single-mode energy
		// by (1+ω²dt²) every step.
		traj, err := sim.SimulateMode(context.Background(), 2.0, osc.State{1}, 0.01, 1000)
		Expect(err).NotTo(HaveOccurred())

		energy := func(s sim.Sample) float64 {
			return 0.5*s.V[0]*s.V[0] + 0.5*4*s.X[0]*s.X[0]
		}
		growth := energy(traj[1000]) / energy(traj[0])
		Expect(growth).To(BeNumerically("~", math.Pow(1+4*0.01*0.01, 1000), 1e-6))
	})
})
