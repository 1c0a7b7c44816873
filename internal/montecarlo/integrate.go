// Package montecarlo provides the repository's statistical estimators: mean
// Monte Carlo integration with a convergence study, and 1D random-walk
// probability estimation. All randomness flows from an explicit seed, so
// every estimate is reproducible.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/oscillab/internal/osc"
)

// Integrand is a real function of one variable.
type Integrand func(x float64) float64

// Integrator estimates definite integrals by uniform sampling.
type Integrator struct {
	rng *rand.Rand
}

func NewIntegrator(seed int64) *Integrator {
	return &Integrator{rng: rand.New(rand.NewSource(seed))}
}

// Estimate computes (b-a)·mean(f(U)) over n uniform samples U in [a, b).
func (it *Integrator) Estimate(f Integrand, a, b float64, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: sample count %d, must be at least 1", osc.ErrInvalidParameters, n)
	}
	if b <= a {
		return 0, fmt.Errorf("%w: interval [%v, %v) is empty", osc.ErrInvalidParameters, a, b)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		x := a + (b-a)*it.rng.Float64()
		sum += f(x)
	}
	return (b - a) * sum / float64(n), nil
}

// ConvergencePoint summarizes repeated trials at one sample size.
type ConvergencePoint struct {
	N        int
	Mean     float64
	AbsError float64 // |Mean - exact|
	StdDev   float64 // spread across trials
}

// Convergence runs `trials` independent estimates at each sample size and
// reports how the error shrinks as N grows (expected rate: 1/√N).
func (it *Integrator) Convergence(f Integrand, a, b, exact float64, sizes []int, trials int) ([]ConvergencePoint, error) {
	if trials < 1 {
		return nil, fmt.Errorf("%w: trial count %d, must be at least 1", osc.ErrInvalidParameters, trials)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no sample sizes given", osc.ErrInvalidParameters)
	}

	points := make([]ConvergencePoint, 0, len(sizes))
	for _, n := range sizes {
		var sum, sumSq float64
		for trial := 0; trial < trials; trial++ {
			est, err := it.Estimate(f, a, b, n)
			if err != nil {
				return nil, err
			}
			sum += est
			sumSq += est * est
		}

		mean := sum / float64(trials)
		variance := sumSq/float64(trials) - mean*mean
		if variance < 0 {
			variance = 0
		}
		points = append(points, ConvergencePoint{
			N:        n,
			Mean:     mean,
			AbsError: math.Abs(mean - exact),
			StdDev:   math.Sqrt(variance),
		})
	}
	return points, nil
}
