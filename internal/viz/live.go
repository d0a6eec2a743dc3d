package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mpmsim/internal/control"
	"github.com/san-kum/mpmsim/internal/metrics"
	"github.com/san-kum/mpmsim/internal/mpm"
	"github.com/san-kum/mpmsim/internal/sim"
	"github.com/san-kum/mpmsim/internal/telemetry"
)

const (
	canvasWidth     = 64
	canvasHeight    = 32
	historyCapacity = 600

	// canvas origin on screen, set by canvasStyle padding
	canvasOffsetX = 2
	canvasOffsetY = 1
)

type TickMsg time.Time

// LiveModel is the interactive particle viewer. Mouse drags on the canvas
// drive the pointer; the simulation advances on every tick message.
type LiveModel struct {
	sim           *sim.Simulator
	pointer       *control.Manual
	perf          *telemetry.PerfCollector
	canvas        *Canvas
	views         []mpm.ParticleView
	name          string
	space         float64
	running       bool
	stepsPerFrame int
	frameRate     time.Duration
	heightHist    []float64
	energyHist    []float64
	mass          float64
	err           error
}

// NewLiveModel wraps s, which must sample its pointer from pointer.
func NewLiveModel(s *sim.Simulator, pointer *control.Manual, name string) LiveModel {
	perf := s.Perf()
	if perf == nil {
		perf = telemetry.NewPerfCollector(60)
		s.SetPerf(perf)
	}
	mass := 0.0
	if ps := s.Solver().Particles(); ps.Len() > 0 {
		mass = ps.At(0).Mass()
	}
	m := LiveModel{
		sim:           s,
		pointer:       pointer,
		perf:          perf,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		name:          name,
		space:         s.Solver().Config().SpaceWidth,
		running:       true,
		stepsPerFrame: 1,
		frameRate:     time.Second / 60,
		heightHist:    make([]float64, 0, historyCapacity),
		energyHist:    make([]float64, 0, historyCapacity),
		mass:          mass,
	}
	m.views = s.Solver().Snapshot(nil)
	return m
}

// SetStepsPerFrame trades smoothness for simulation speed.
func (m *LiveModel) SetStepsPerFrame(n int) {
	if n > 0 {
		m.stepsPerFrame = n
	}
}

func (m *LiveModel) SetFrameRate(fps int) {
	if fps > 0 {
		m.frameRate = time.Second / time.Duration(fps)
	}
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.setStrengthSign(1)
		case "-", "_":
			m.setStrengthSign(-1)
		case "]":
			m.SetStepsPerFrame(m.stepsPerFrame + 1)
		case "[":
			m.SetStepsPerFrame(m.stepsPerFrame - 1)
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		m.perf.RecordFrame()
		return m, m.tick()
	}
	return m, nil
}

func (m *LiveModel) handleMouse(msg tea.MouseMsg) {
	pos, ok := m.canvas.ToSim(msg.X-canvasOffsetX, msg.Y-canvasOffsetY, m.space)
	ptr := mpm.Pointer{Pos: pos, HasPos: ok}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			ptr.Pressed = true
			m.pointer.Set(ptr)
		}
	case tea.MouseActionMotion:
		m.pointer.Move(ptr)
	case tea.MouseActionRelease:
		m.pointer.Release()
	}
}

func (m *LiveModel) setStrengthSign(sign float64) {
	solver := m.sim.Solver()
	in := solver.Interaction()
	in.Strength = sign * math.Abs(in.Strength)
	solver.SetInteraction(in)
}

func (m *LiveModel) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		m.sim.Step()
	}
	if err := m.sim.Solver().CheckFinite(); err != nil {
		m.err = err
		m.running = false
	}

	m.views = m.sim.Solver().Snapshot(m.views)
	stats := metrics.SummarizeFrame(m.views, m.mass)
	m.heightHist = appendCapped(m.heightHist, stats.MeanHeight)
	m.energyHist = appendCapped(m.energyHist, stats.KineticEnergy)
}

func (m *LiveModel) reset() {
	m.sim.Reset()
	m.pointer.Release()
	m.err = nil
	m.heightHist = m.heightHist[:0]
	m.energyHist = m.energyHist[:0]
	m.views = m.sim.Solver().Snapshot(m.views)
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *LiveModel) draw() {
	m.canvas.Clear()
	m.canvas.Frame()
	m.canvas.Plot(m.views, m.space)
	if ptr := m.pointer.Sample(0); ptr.Active() {
		x, y := m.canvas.ToSub(ptr.Pos, m.space)
		m.canvas.DrawLine(x-2, y, x+2, y)
		m.canvas.DrawLine(x, y-2, x, y+2)
	}
}

func (m LiveModel) View() string {
	m.draw()
	maxSpeed := 0.0
	for _, v := range m.views {
		maxSpeed = math.Max(maxSpeed, v.Color)
	}
	canvasView := canvasStyle.Render(m.canvas.Styled(maxSpeed))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("DIVERGED") + "\n" + m.err.Error() + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.heightHist) > 1 {
		s.WriteString(graphStyle.Render(PlotSeries(m.heightHist, "mean height", 30, 4)) + "\n")
	}
	s.WriteString(labelStyle.Render("Energy") + SparklineChart(m.energyHist, 28) + "\n\n")

	solver := m.sim.Solver()
	ptr := m.pointer.Sample(solver.Tick())
	mode := "repel"
	if solver.Interaction().Strength < 0 {
		mode = "attract"
	}
	pointer := "released"
	if ptr.Active() {
		pointer = fmt.Sprintf("(%.1f, %.1f)", ptr.Pos.X, ptr.Pos.Y)
	}
	perf := m.perf.Stats()

	rows := [][2]string{
		{"Tick", fmt.Sprintf("%d", solver.Tick())},
		{"Time", fmt.Sprintf("%.1f", solver.Time())},
		{"Particles", fmt.Sprintf("%d", len(m.views))},
		{"Max speed", fmt.Sprintf("%.3f", maxSpeed)},
		{"Pointer", pointer},
		{"Mode", mode},
		{"Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame)},
		{"Ticks/s", fmt.Sprintf("%.0f", perf.TicksPerSecond)},
		{"FPS", fmt.Sprintf("%.0f", perf.FPS)},
		{"Backend", solver.Backend().Name()},
	}
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r[0]) + valueStyle.Render(r[1]) + "\n")
	}

	s.WriteString(helpStyle.Render("─────────────────────\nDrag:Push  +/-:Repel/Attract\nSP:Pause  R:Reset  Q:Quit\n[ ]:Steps per frame"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// RunLive starts the viewer full-screen with mouse drag reporting enabled.
func RunLive(m LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
