package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscillab/internal/integrators"
	"github.com/san-kum/oscillab/internal/osc"
)

const (
	chainWidth      = 64
	historyCapacity = 400
	displaceScale   = 8.0
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	chainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Live animates a chain simulation in the terminal.
type Live struct {
	sys     *osc.System
	acc     integrators.Acceleration
	integ   integrators.Euler
	x, v    osc.State
	x0, v0  osc.State
	t, dt   float64
	fps     int
	running bool
	history [][]float64
	title   string
}

func NewLive(sys *osc.System, x0, v0 osc.State, dt float64, fps int, title string) Live {
	return Live{
		sys:     sys,
		acc:     integrators.NewMatrixMode(sys),
		integ:   integrators.NewEuler(),
		x:       x0.Clone(),
		v:       v0.Clone(),
		x0:      x0.Clone(),
		v0:      v0.Clone(),
		dt:      dt,
		fps:     fps,
		running: true,
		history: make([][]float64, sys.Dim()),
		title:   title,
	}
}

// RunLive blocks until the viewer exits.
func RunLive(m Live) error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m Live) Init() tea.Cmd { return m.tick() }

func (m Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.x, m.v, m.t = m.x0.Clone(), m.v0.Clone(), 0
			m.history = make([][]float64, m.sys.Dim())
		}
		return m, nil

	case TickMsg:
		if m.running {
			substeps := int(1 / (float64(m.fps) * m.dt))
			if substeps < 1 {
				substeps = 1
			}
			for i := 0; i < substeps; i++ {
				m.x, m.v = m.integ.Step(m.acc, m.x, m.v, m.dt)
				m.t += m.dt
			}
			for i := range m.history {
				m.history[i] = append(m.history[i], m.x[i])
				if len(m.history[i]) > historyCapacity {
					m.history[i] = m.history[i][len(m.history[i])-historyCapacity:]
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Live) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("t: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%8.2f s", m.t)))
	b.WriteString(labelStyle.Render("   energy: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.6f", m.sys.Energy(m.x, m.v))))
	b.WriteString("\n\n")

	b.WriteString(chainStyle.Render(m.chainRow()))
	b.WriteString("\n")

	if len(m.history) > 0 && len(m.history[0]) > 1 {
		series := m.history
		if len(series) > 3 {
			series = series[:3]
		}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(8),
			asciigraph.Width(chainWidth),
			asciigraph.Caption("displacement"),
		)
		b.WriteString(graphStyle.Render(graph))
	}

	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	return b.String()
}

// chainRow draws the walls and each mass at its equilibrium column offset by
// its current displacement.
func (m Live) chainRow() string {
	row := make([]rune, chainWidth)
	for i := range row {
		row[i] = '·'
	}
	row[0], row[chainWidth-1] = '|', '|'

	n := m.sys.Dim()
	for i := 0; i < n; i++ {
		col := (i+1)*chainWidth/(n+1) + int(m.x[i]*displaceScale)
		if col < 1 {
			col = 1
		}
		if col > chainWidth-2 {
			col = chainWidth - 2
		}
		row[col] = rune('1' + i%9)
	}
	return string(row)
}
