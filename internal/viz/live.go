package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/smoroz/ledfluid/internal/fluid"
	"github.com/smoroz/ledfluid/internal/render"
	"github.com/smoroz/ledfluid/internal/telemetry"
)

const (
	historyCapacity = 600
	graphWidth      = 50
	graphHeight     = 8
	tiltStep        = 0.25
)

var (
	matrixStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	// One style per intensity level, near-black up to bright cyan.
	ledStyles = [render.MaxIntensity + 1]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("17")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("18")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("19")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("20")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("21")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	}
)

type TickMsg time.Time

// Model drives the interactive terminal view: the LED matrix, live stats
// and an energy chart, with arrow keys steering the tilt.
type Model struct {
	sim      *fluid.Simulation
	renderer *render.Renderer
	frame    *render.Frame

	fps     int
	running bool

	tiltX, tiltY float64
	energy       []float64
	showHelp     bool
}

func NewModel(sim *fluid.Simulation, renderer *render.Renderer, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		sim:      sim,
		renderer: renderer,
		frame:    renderer.Render(sim).Clone(),
		fps:      fps,
		running:  true,
		tiltY:    1,
		energy:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.sim.Reset()
			m.frame = m.renderer.Render(m.sim).Clone()
			m.energy = m.energy[:0]
		case "left":
			m.setTilt(m.tiltX-tiltStep, m.tiltY)
		case "right":
			m.setTilt(m.tiltX+tiltStep, m.tiltY)
		case "up":
			m.setTilt(m.tiltX, m.tiltY-tiltStep)
		case "down":
			m.setTilt(m.tiltX, m.tiltY+tiltStep)
		case "0":
			m.setTilt(0, 1)
		case "h", "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case TickMsg:
		if m.running {
			if err := m.sim.Tick(); err != nil {
				return m, tea.Quit
			}
			m.frame = m.renderer.Render(m.sim).Clone()
			m.energy = append(m.energy, m.sim.KineticEnergy())
			if len(m.energy) > historyCapacity {
				m.energy = m.energy[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) setTilt(tx, ty float64) {
	m.tiltX = clampTilt(tx)
	m.tiltY = clampTilt(ty)
	m.sim.SetTilt(m.tiltX, m.tiltY)
}

func clampTilt(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func (m Model) View() string {
	matrix := matrixStyle.Render(m.renderMatrix())
	stats := statsStyle.Render(m.renderStats())
	view := lipgloss.JoinHorizontal(lipgloss.Top, matrix, stats)

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy,
			asciigraph.Width(graphWidth),
			asciigraph.Height(graphHeight),
			asciigraph.Caption("kinetic energy"))
		view = lipgloss.JoinVertical(lipgloss.Left, view, graphStyle.Render(chart))
	}

	help := "q quit | space pause | r reset | arrows tilt | 0 level"
	if m.showHelp {
		help += "\ntilt steers the force vector; 0 restores straight-down gravity"
	}
	return lipgloss.JoinVertical(lipgloss.Left, view, helpStyle.Render(help))
}

func (m Model) renderMatrix() string {
	var b strings.Builder
	for row := 0; row < m.frame.Height; row++ {
		for col := 0; col < m.frame.Width; col++ {
			level := m.frame.At(col, row)
			b.WriteString(ledStyles[level].Render("██"))
		}
		if row < m.frame.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderStats() string {
	s := telemetry.Capture(m.sim)
	var b strings.Builder
	b.WriteString(headerStyle.Render("ledfluid"))
	b.WriteByte('\n')

	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteByte('\n')
	}
	line("tick", fmt.Sprintf("%d", s.Tick))
	line("sim time", fmt.Sprintf("%.1f", s.Time))
	line("fluid cells", fmt.Sprintf("%d", s.FluidCells))
	line("divergence", fmt.Sprintf("%.4f", s.DivergenceSum))
	line("energy", fmt.Sprintf("%.3f", s.KineticEnergy))
	line("max speed", fmt.Sprintf("%.3f", s.MaxSpeed))
	line("tilt", fmt.Sprintf("%+.2f %+.2f", m.tiltX, m.tiltY))
	if !m.running {
		line("state", "paused")
	}
	return b.String()
}

// Run starts the interactive view and blocks until the user quits.
func Run(sim *fluid.Simulation, renderer *render.Renderer, fps int) error {
	p := tea.NewProgram(NewModel(sim, renderer, fps))
	_, err := p.Run()
	return err
}
