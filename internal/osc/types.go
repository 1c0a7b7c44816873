package osc

import "math"

// State is a vector of per-mass quantities, one entry per mass in the chain.
// It holds positions or velocities depending on context.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Zeros returns a zero State of length n.
func Zeros(n int) State {
	return make(State, n)
}

// Metric accumulates a scalar statistic over a simulation run.
type Metric interface {
	Name() string
	Observe(x, v State, t float64)
	Value() float64
	Reset()
}

// Observer receives each sample of a run as it is produced.
type Observer interface {
	OnStep(x, v State, t float64)
}

// EnergyComputer is implemented by acceleration models that can report the
// total mechanical energy of a state.
type EnergyComputer interface {
	Energy(x, v State) float64
}
