package viz

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/aerolattice/internal/experiment"
	"github.com/san-kum/aerolattice/internal/export"
	"github.com/san-kum/aerolattice/internal/vortex"
)

const (
	width       = 60
	height      = 22
	defaultStep = 0.5 // deg
	maxAngle    = 30.0
)

// SolvedMsg carries the result of an asynchronous solve.
type SolvedMsg struct {
	AlphaDeg, BetaDeg float64
	Results           *vortex.Results
	Err               error
}

// Model is an interactive explorer for one case. Every change of angle of
// attack or sideslip re-solves against the cached factorization.
type Model struct {
	exp         *experiment.Experiment
	name        string
	alpha, beta float64 // deg
	alpha0      float64
	beta0       float64
	step        float64
	res         *vortex.Results
	err         error
	pending     bool
	solves      int
	field       int
	iso         bool
	camera      *Camera
	canvas      *Canvas
	clHistory   []float64
	showHelp    bool
	cols, rows  int
}

// NewModel wraps an experiment that has already been set up.
func NewModel(exp *experiment.Experiment, name string) Model {
	fc := exp.Flow()
	a := fc.Alpha * 180 / math.Pi
	b := fc.Beta * 180 / math.Pi
	return Model{
		exp:       exp,
		name:      name,
		alpha:     a,
		beta:      b,
		alpha0:    a,
		beta0:     b,
		step:      defaultStep,
		camera:    NewCamera(),
		canvas:    NewCanvas(width, height),
		clHistory: make([]float64, 0, 64),
		cols:      width,
		rows:      height,
	}
}

func (m Model) Init() tea.Cmd {
	return m.solveCmd()
}

func (m Model) solveCmd() tea.Cmd {
	exp, a, b := m.exp, m.alpha, m.beta
	return func() tea.Msg {
		res, err := exp.RunAt(context.Background(), a, b)
		return SolvedMsg{AlphaDeg: a, BetaDeg: b, Results: res, Err: err}
	}
}

// Update handles keys and solve completions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case SolvedMsg:
		// drop results for angles the user has already moved past
		if msg.AlphaDeg != m.alpha || msg.BetaDeg != m.beta {
			return m, nil
		}
		m.pending = false
		m.err = msg.Err
		if msg.Err == nil {
			m.res = msg.Results
			m.solves++
			m.clHistory = append(m.clHistory, msg.Results.CL)
			if len(m.clHistory) > 64 {
				m.clHistory = m.clHistory[1:]
			}
		}
	case tea.WindowSizeMsg:
		m.cols = max(20, min(msg.Width/2, 100))
		m.rows = max(8, min(msg.Height-4, 40))
		m.canvas = NewCanvas(m.cols, m.rows)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		return m.setAngles(m.alpha+m.step, m.beta)
	case "down", "j":
		return m.setAngles(m.alpha-m.step, m.beta)
	case "right", "l":
		return m.setAngles(m.alpha, m.beta+m.step)
	case "left", "h":
		return m.setAngles(m.alpha, m.beta-m.step)
	case "r":
		return m.setAngles(m.alpha0, m.beta0)
	case "]":
		m.step = math.Min(m.step*2, 8)
	case "[":
		m.step = math.Max(m.step/2, 0.125)
	case "tab":
		m.field = (m.field + 1) % len(export.Fields())
	case "v":
		m.iso = !m.iso
		if m.iso {
			m.camera.IsoView()
		} else {
			m.camera.TopView()
		}
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
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) setAngles(alpha, beta float64) (Model, tea.Cmd) {
	alpha = math.Max(-maxAngle, math.Min(maxAngle, alpha))
	beta = math.Max(-maxAngle, math.Min(maxAngle, beta))
	if alpha == m.alpha && beta == m.beta && m.res != nil {
		return m, nil
	}
	m.alpha, m.beta = alpha, beta
	m.pending = true
	return m, m.solveCmd()
}

// Angles returns the current angle of attack and sideslip in degrees.
func (m Model) Angles() (float64, float64) { return m.alpha, m.beta }

// Results returns the latest completed solve, or nil.
func (m Model) Results() *vortex.Results { return m.res }

// Field returns the section field shown in the distribution chart.
func (m Model) Field() string { return export.Fields()[m.field] }

func (m Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, LatticeWireframe(m.exp.GetSolver().Lattice(), m.res), m.camera)
}

func (m Model) View() string {
	st := themeStyles(CurrentTheme)
	m.draw()
	canvasView := lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Padding(1, 2).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")

	status := "SOLVED"
	switch {
	case m.err != nil:
		status = st.errMsg.Render("ERROR: " + m.err.Error())
	case m.pending || m.res == nil:
		status = "SOLVING"
	}
	s.WriteString(status + "\n\n")

	s.WriteString(st.label.Render("alpha") + st.active.Render(fmt.Sprintf("%+.2f°", m.alpha)) + "\n")
	s.WriteString(st.label.Render("beta") + st.active.Render(fmt.Sprintf("%+.2f°", m.beta)) + "\n")
	s.WriteString(st.label.Render("step") + st.value.Render(fmt.Sprintf("%.3f°", m.step)) + "\n\n")

	if m.res != nil {
		for _, row := range coefficientRows(m.res) {
			s.WriteString(st.label.Render(row[0]) + st.value.Render(row[1]) + "\n")
		}
		s.WriteString(st.label.Render("solves") + st.value.Render(fmt.Sprintf("%d (%d LU)", m.solves, m.exp.GetSolver().Factorizations())) + "\n")

		values := make([]float64, len(m.res.Sections))
		for i, sec := range m.res.Sections {
			v, err := export.SectionValue(sec, m.Field())
			if err == nil {
				values[i] = v
			}
		}
		if chart := DistributionChart(values, 36, 5, m.Field()); chart != "" {
			s.WriteString(st.graph.Render(chart) + "\n")
		}
		s.WriteString(st.label.Render("Γ") + st.value.Render(SparklineChart(m.res.Circulation(), 30)) + "\n")
		if len(m.clHistory) > 1 {
			s.WriteString(st.label.Render("CL hist") + st.value.Render(SparklineChart(m.clHistory, 30)) + "\n")
		}
	}

	s.WriteString(st.muted.Render("\n↑↓:alpha ←→:beta [ ]:step TAB:field\nV:view XYZ:rotate +-:zoom T:theme\nR:reset ?:help Q:quit"))
	statsView := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Muted).
		Padding(1, 2).
		Width(48).
		Render(s.String())

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Up/K     - Increase alpha           ║
║  Down/J   - Decrease alpha           ║
║  Right/L  - Increase beta            ║
║  Left/H   - Decrease beta            ║
║  [ ]      - Halve/double step        ║
║  Tab      - Cycle distribution field ║
║  V        - Top/iso view             ║
║  R        - Reset angles             ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the explorer on the terminal.
func Run(exp *experiment.Experiment, name string) error {
	_, err := tea.NewProgram(NewModel(exp, name), tea.WithAltScreen()).Run()
	return err
}
