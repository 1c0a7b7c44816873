package sim

import "math"

// Config holds run parameters. Steps are derived as ⌈Duration/Dt⌉.
type Config struct {
	Dt       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		Duration: 10.0,
	}
}

// Steps returns the number of integration steps for the configured duration.
func (c Config) Steps() int {
	return int(math.Ceil(c.Duration / c.Dt))
}

// Sample is the system state at one instant.
type Sample struct {
	T float64
	X []float64
	V []float64
}

// Trajectory is the time series produced by a run, starting at t=0 and
// advancing by dt per sample. A run of n steps yields n+1 samples: the
// initial state is always included, so the final sample sits at t=n·dt
// rather than stopping one increment short of the requested duration.
// Read-only once produced; owned by the caller.
type Trajectory []Sample

// Times returns the time axis.
func (tr Trajectory) Times() []float64 {
	ts := make([]float64, len(tr))
	for i, s := range tr {
		ts[i] = s.T
	}
	return ts
}

// Positions returns the displacement time series of mass i.
func (tr Trajectory) Positions(i int) []float64 {
	xs := make([]float64, len(tr))
	for j, s := range tr {
		xs[j] = s.X[i]
	}
	return xs
}

// Velocities returns the velocity time series of mass i.
func (tr Trajectory) Velocities(i int) []float64 {
	vs := make([]float64, len(tr))
	for j, s := range tr {
		vs[j] = s.V[i]
	}
	return vs
}

// Result bundles a trajectory with run statistics.
type Result struct {
	Trajectory  Trajectory
	Metrics     map[string]float64
	EnergyDrift float64 // relative drift |E_final - E_0| / |E_0|, when computable
	StepsTaken  int
}
