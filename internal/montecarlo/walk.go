package montecarlo

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/oscillab/internal/osc"
)

// Walker simulates symmetric 1D random walks with unit steps.
type Walker struct {
	rng *rand.Rand
}

func NewWalker(seed int64) *Walker {
	return &Walker{rng: rand.New(rand.NewSource(seed))}
}

// Walk returns the final position after steps unit moves from start.
func (w *Walker) Walk(start, steps int) int {
	pos := start
	for i := 0; i < steps; i++ {
		if w.rng.Intn(2) == 0 {
			pos--
		} else {
			pos++
		}
	}
	return pos
}

// ReturnProbability estimates the probability that a walk starting at start
// sits at the origin after exactly steps moves.
func (w *Walker) ReturnProbability(start, steps, trials int) (float64, error) {
	if steps < 1 || trials < 1 {
		return 0, fmt.Errorf("%w: steps=%d trials=%d, both must be at least 1", osc.ErrInvalidParameters, steps, trials)
	}

	returns := 0
	for i := 0; i < trials; i++ {
		if w.Walk(start, steps) == 0 {
			returns++
		}
	}
	return float64(returns) / float64(trials), nil
}

// MeetingProbability estimates the probability that two independent walks
// starting at startA and startB occupy the same position after exactly steps
// moves. The gap between the walkers changes by -2, 0, or +2 per step, so an
// odd starting gap never meets.
func (w *Walker) MeetingProbability(startA, startB, steps, trials int) (float64, error) {
	if steps < 1 || trials < 1 {
		return 0, fmt.Errorf("%w: steps=%d trials=%d, both must be at least 1", osc.ErrInvalidParameters, steps, trials)
	}

	meetings := 0
	for i := 0; i < trials; i++ {
		if w.Walk(startA, steps) == w.Walk(startB, steps) {
			meetings++
		}
	}
	return float64(meetings) / float64(trials), nil
}

// MeetingPoint is one entry of a meeting-probability curve.
type MeetingPoint struct {
	Steps       int
	Probability float64
}

// MeetingCurve estimates the meeting probability for step counts from, from+incr,
// ..., up to and including to.
func (w *Walker) MeetingCurve(startA, startB, from, to, incr, trials int) ([]MeetingPoint, error) {
	if from < 1 || to < from || incr < 1 {
		return nil, fmt.Errorf("%w: step range %d..%d by %d", osc.ErrInvalidParameters, from, to, incr)
	}

	curve := make([]MeetingPoint, 0, (to-from)/incr+1)
	for n := from; n <= to; n += incr {
		p, err := w.MeetingProbability(startA, startB, n, trials)
		if err != nil {
			return nil, err
		}
		curve = append(curve, MeetingPoint{Steps: n, Probability: p})
	}
	return curve, nil
}

// ReturnCurve estimates the return probability for every step count from 1 to
// maxSteps. Index i holds the estimate for i+1 steps.
func (w *Walker) ReturnCurve(start, maxSteps, trials int) ([]float64, error) {
	if maxSteps < 1 {
		return nil, fmt.Errorf("%w: maxSteps=%d, must be at least 1", osc.ErrInvalidParameters, maxSteps)
	}

	curve := make([]float64, maxSteps)
	for n := 1; n <= maxSteps; n++ {
		p, err := w.ReturnProbability(start, n, trials)
		if err != nil {
			return nil, err
		}
		curve[n-1] = p
	}
	return curve, nil
}
