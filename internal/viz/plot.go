// Package viz renders trajectories and mode shapes in the terminal.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscillab/internal/modal"
	"github.com/san-kum/oscillab/internal/sim"
)

const (
	plotWidth  = 80
	plotHeight = 10
	maxPlots   = 6
)

// TrajectoryPlot renders the displacement of each mass against time, one
// graph per mass, capped at maxPlots masses.
func TrajectoryPlot(traj sim.Trajectory) string {
	if len(traj) == 0 {
		return "no data to plot"
	}

	var b strings.Builder
	n := len(traj[0].X)
	if n > maxPlots {
		n = maxPlots
	}

	for i := 0; i < n; i++ {
		graph := asciigraph.Plot(traj.Positions(i),
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(fmt.Sprintf("mass %d displacement vs time", i+1)),
		)
		b.WriteString(graph)
		b.WriteString("\n\n")
	}
	return b.String()
}

// CombinedPlot renders all mass displacements in a single graph.
func CombinedPlot(traj sim.Trajectory) string {
	if len(traj) == 0 {
		return "no data to plot"
	}

	n := len(traj[0].X)
	if n > maxPlots {
		n = maxPlots
	}
	series := make([][]float64, n)
	for i := 0; i < n; i++ {
		series[i] = traj.Positions(i)
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("displacement vs time"),
	)
}

// ModeShapePlot draws a mode shape as a per-mass bar chart.
func ModeShapePlot(m modal.Mode, index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode %d: ω = %.4f rad/s\n", index+1, m.Omega)

	const barWidth = 24
	var max float64
	for _, v := range m.Shape {
		if a := abs(v); a > max {
			max = a
		}
	}
	if max == 0 {
		max = 1
	}

	for i, v := range m.Shape {
		cells := int(abs(v) / max * barWidth)
		left, right := "", ""
		if v < 0 {
			left = strings.Repeat("█", cells)
		} else {
			right = strings.Repeat("█", cells)
		}
		fmt.Fprintf(&b, "  mass %d %*s|%-*s %+.4f\n", i+1, barWidth, left, barWidth, right, v)
	}
	return b.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
