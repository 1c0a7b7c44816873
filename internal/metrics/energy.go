// Package metrics provides per-step statistics for simulation runs.
package metrics

import (
	"math"

	"github.com/san-kum/oscillab/internal/osc"
)

// Energy tracks the mean total mechanical energy of a chain over a run.
type Energy struct {
	name    string
	sys     *osc.System
	samples int
	total   float64
}

func NewEnergy(sys *osc.System) *Energy {
	return &Energy{
		name: "energy",
		sys:  sys,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x, v osc.State, t float64) {
	e.total += e.sys.Energy(x, v)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the maximum relative deviation from the initial energy.
// Explicit Euler grows energy monotonically on an undamped chain, so this is
// the headline number for judging a chosen dt.
type EnergyDrift struct {
	name          string
	sys           *osc.System
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(sys *osc.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		sys:  sys,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x, v osc.State, t float64) {
	energy := e.sys.Energy(x, v)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
