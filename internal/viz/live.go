package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nbody/internal/compute"
	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 300
	frameInterval   = time.Second / 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// tunables are the fields of a parameter set that may change while the
// stage is running.
var tunables = []string{"timestep", "damping", "softening"}

// Live steps a stage on every tick and draws the particles.
type Live struct {
	setup   sim.Setup
	initial config.Parameters
	params  config.Parameters

	stage *compute.Stage
	step  int
	t     float64

	stepsPerFrame int
	running       bool
	err           error

	canvas   *Canvas
	camera   *Camera
	theme    Theme
	selected int
	showHelp bool
	showAxes bool
	kinetic  []float64
}

// NewLive prepares a stage for setup. The caller releases it with Close.
func NewLive(setup sim.Setup, stepsPerFrame int) (*Live, error) {
	stage, err := sim.Prepare(setup)
	if err != nil {
		return nil, err
	}

	m := &Live{
		setup:         setup,
		initial:       setup.Parameters,
		params:        setup.Parameters,
		stage:         stage,
		stepsPerFrame: max(1, stepsPerFrame),
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		theme:         Themes[0],
		kinetic:       make([]float64, 0, historyCapacity),
	}
	m.camera.Fit(stage.Position())
	m.record()
	return m, nil
}

func (m *Live) Stage() *compute.Stage         { return m.stage }
func (m *Live) Step() int                     { return m.step }
func (m *Live) Running() bool                 { return m.running }
func (m *Live) Err() error                    { return m.err }
func (m *Live) Parameters() config.Parameters { return m.params }
func (m *Live) Theme() Theme                  { return m.theme }

func (m *Live) SetTheme(t Theme) { m.theme = t }

func (m *Live) Close() {
	if m.stage != nil {
		m.stage.Cleanup()
		m.stage = nil
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Live) Init() tea.Cmd {
	return tick()
}

func (m *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.05)
		case "down", "j":
			m.adjust(0.95)
		case "t":
			m.theme = NextTheme(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		case "a":
			m.showAxes = !m.showAxes
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs stepsPerFrame integration steps.
func (m *Live) advance() {
	if m.stage == nil {
		return
	}
	for range m.stepsPerFrame {
		if err := m.stage.Step(); err != nil {
			m.err = err
			m.running = false
			return
		}
		m.step++
		m.t += float64(m.stage.Prefs().Timestep)
	}
	m.record()
}

func (m *Live) record() {
	m.kinetic = append(m.kinetic, metrics.Kinetic(m.stage.Position(), m.stage.Velocity()))
	if len(m.kinetic) > historyCapacity {
		m.kinetic = m.kinetic[1:]
	}
}

// adjust scales the selected tunable and pushes the new parameters to the
// running stage.
func (m *Live) adjust(factor float32) {
	switch tunables[m.selected] {
	case "timestep":
		m.params.Timestep *= factor
	case "damping":
		m.params.Damping = min(1, m.params.Damping*factor)
	case "softening":
		m.params.Softening *= factor
	}
	m.stage.SetParameters(m.params)
}

// reset regenerates the initial conditions with the starting parameters.
func (m *Live) reset() {
	m.Close()

	m.params = m.initial
	m.setup.Parameters = m.initial
	stage, err := sim.Prepare(m.setup)
	if err != nil {
		m.err = err
		m.running = false
		return
	}

	m.stage = stage
	m.step, m.t = 0, 0
	m.err = nil
	m.kinetic = m.kinetic[:0]
	m.camera.Fit(stage.Position())
	m.record()
}

func (m *Live) tunableValue(name string) float32 {
	switch name {
	case "timestep":
		return m.params.Timestep
	case "damping":
		return m.params.Damping
	default:
		return m.params.Softening
	}
}

func (m *Live) View() string {
	if m.stage != nil {
		RenderParticles(m.canvas, m.stage.Position(), m.camera)
		if m.showAxes {
			RenderAxes(m.canvas, m.camera, float32(m.camera.Extent))
		}
	}
	canvasView := canvasStyle.Foreground(m.theme.Particles).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.params.Name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.kinetic) > 1 {
		chart := asciigraph.Plot(m.kinetic, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(KeyValue("step", m.step) + "\n")
	s.WriteString(KeyValue("time", fmt.Sprintf("%.3f", m.t)) + "\n")
	if m.stage != nil {
		p := m.stage.Prefs()
		s.WriteString(KeyValue("particles", p.Particles) + "\n")
		s.WriteString(KeyValue("backend", m.stage.Backend().Name()) + "\n")
		s.WriteString(KeyValue("softeningSqr", fmt.Sprintf("%.4g", p.SofteningSqr)) + "\n")
	}

	s.WriteString(KeyValue("damping", ProgressBar(float64(m.params.Damping), 12)) + "\n")

	s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Render("PARAMETERS") + "\n")
	for i, name := range tunables {
		line := fmt.Sprintf("%-10s %.4g", name, m.tunableValue(name))
		if i == m.selected {
			s.WriteString(ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}

	help := helpStyle.Foreground(m.theme.Muted)
	if m.showHelp {
		s.WriteString(help.Render("SPACE pause  R regenerate  Q quit\nTAB select  ↑↓ tune  T theme\nX/Y/Z rotate  +/- zoom  A axes"))
	} else {
		s.WriteString(help.Render("? help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
