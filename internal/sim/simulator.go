// Package sim advances a coupled-oscillator system through time and
// materializes the resulting trajectory.
//
// A run is a pure function of its inputs: no randomness, no I/O, no shared
// state. Concurrent runs on independent Simulator values need no
// coordination. A single invalid input aborts before any stepping occurs.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/oscillab/internal/integrators"
	"github.com/san-kum/oscillab/internal/osc"
)

// Simulator evolves one acceleration model under explicit Euler stepping.
type Simulator struct {
	acc       integrators.Acceleration
	integ     integrators.Euler
	metrics   []osc.Metric
	observers []osc.Observer
}

func New(acc integrators.Acceleration) *Simulator {
	return &Simulator{
		acc:       acc,
		integ:     integrators.NewEuler(),
		metrics:   make([]osc.Metric, 0),
		observers: make([]osc.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m osc.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o osc.Observer) { s.observers = append(s.observers, o) }

// Run integrates from (x0, v0) over the configured duration and returns the
// full trajectory: the initial sample plus one per step, ⌈Duration/Dt⌉+1
// samples in total.
func (s *Simulator) Run(ctx context.Context, x0, v0 osc.State, cfg Config) (*Result, error) {
	if err := s.validate(x0, v0, cfg.Dt, 1); err != nil {
		return nil, err
	}
	steps := cfg.Steps()
	if steps < 1 {
		return nil, fmt.Errorf("%w: duration %v yields no steps at dt=%v", osc.ErrInvalidParameters, cfg.Duration, cfg.Dt)
	}

	result := &Result{
		Trajectory: make(Trajectory, 0, steps+1),
		Metrics:    make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	x, v := x0.Clone(), v0.Clone()
	result.Trajectory = append(result.Trajectory, Sample{T: 0, X: x.Clone(), V: v.Clone()})

	var initialEnergy float64
	ec, hasEnergy := s.acc.(osc.EnergyComputer)
	if hasEnergy {
		initialEnergy = ec.Energy(x, v)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		for _, m := range s.metrics {
			m.Observe(x, v, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, v, t)
		}

		x, v = s.integ.Step(s.acc, x, v, cfg.Dt)
		result.StepsTaken++
		result.Trajectory = append(result.Trajectory, Sample{T: float64(i+1) * cfg.Dt, X: x.Clone(), V: v.Clone()})
	}

	if hasEnergy && initialEnergy != 0 {
		final := ec.Energy(x, v)
		result.EnergyDrift = math.Abs(final-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback streams samples one at a time instead of materializing the
// trajectory. The callback sees the state before each step, then once more at
// the final state; returning false stops the run early without error.
func (s *Simulator) RunWithCallback(ctx context.Context, x0, v0 osc.State, cfg Config, callback func(t float64, x, v osc.State) bool) error {
	if err := s.validate(x0, v0, cfg.Dt, 1); err != nil {
		return err
	}
	steps := cfg.Steps()
	if steps < 1 {
		return fmt.Errorf("%w: duration %v yields no steps at dt=%v", osc.ErrInvalidParameters, cfg.Duration, cfg.Dt)
	}

	x, v := x0.Clone(), v0.Clone()
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(float64(i)*cfg.Dt, x, v) {
			return nil
		}
		x, v = s.integ.Step(s.acc, x, v, cfg.Dt)
	}
	callback(float64(steps)*cfg.Dt, x, v)
	return nil
}

func (s *Simulator) validate(x0, v0 osc.State, dt float64, steps int) error {
	if dt <= 0 || math.IsNaN(dt) {
		return fmt.Errorf("%w: dt must be positive, got %v", osc.ErrInvalidParameters, dt)
	}
	if steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", osc.ErrInvalidParameters, steps)
	}
	if len(x0) != len(v0) {
		return fmt.Errorf("%w: position length %d does not match velocity length %d", osc.ErrInvalidParameters, len(x0), len(v0))
	}
	if len(x0) != s.acc.Dim() {
		return fmt.Errorf("%w: state length %d does not match system dimension %d", osc.ErrInvalidParameters, len(x0), s.acc.Dim())
	}
	return nil
}

func (s *Simulator) runSteps(ctx context.Context, x0, v0 osc.State, dt float64, steps int) (Trajectory, error) {
	if err := s.validate(x0, v0, dt, steps); err != nil {
		return nil, err
	}

	traj := make(Trajectory, 0, steps+1)
	x, v := x0.Clone(), v0.Clone()
	traj = append(traj, Sample{T: 0, X: x.Clone(), V: v.Clone()})

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return traj, ctx.Err()
		default:
		}
		x, v = s.integ.Step(s.acc, x, v, dt)
		traj = append(traj, Sample{T: float64(i+1) * dt, X: x.Clone(), V: v.Clone()})
	}
	return traj, nil
}

// SimulateMode evolves a single normal mode released from rest at the given
// amplitude vector, under the scalar rule a = -ω²·x.
func SimulateMode(ctx context.Context, omega float64, amplitude osc.State, dt float64, steps int) (Trajectory, error) {
	if len(amplitude) == 0 {
		return nil, fmt.Errorf("%w: empty amplitude vector", osc.ErrInvalidParameters)
	}
	mode, err := integrators.NewScalarMode(omega, len(amplitude))
	if err != nil {
		return nil, err
	}
	return New(mode).runSteps(ctx, amplitude, osc.Zeros(len(amplitude)), dt, steps)
}

// SimulateSystem evolves the full chain from an arbitrary initial condition,
// under the matrix rule a = -M⁻¹·K·x.
func SimulateSystem(ctx context.Context, sys *osc.System, x0, v0 osc.State, dt float64, steps int) (Trajectory, error) {
	return New(integrators.NewMatrixMode(sys)).runSteps(ctx, x0, v0, dt, steps)
}
