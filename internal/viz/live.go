package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/solsim/internal/metrics"
	"github.com/san-kum/solsim/internal/sim"
)

const (
	fps             = 60
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives a simulation at the terminal frame rate and draws it on a
// braille canvas with a side panel.
type Model struct {
	sim    *sim.Simulation
	title  string
	drift  *metrics.EnergyDrift
	camera *Camera
	canvas *Canvas

	width, height int
	driftHistory  []float64
	lastErr       error

	showHelp   bool
	showLabels bool
	recording  bool
	recorder   *gifRecorder
	GIFPath    string
}

// NewModel wraps s. The model registers its own energy drift metric on s.
func NewModel(s *sim.Simulation, title string) Model {
	drift := metrics.NewEnergyDrift(s.Gravity())
	s.AddMetric(drift)

	m := Model{
		sim:          s,
		title:        title,
		drift:        drift,
		camera:       NewCamera(),
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		width:        canvasWidth,
		height:       canvasHeight,
		driftHistory: make([]float64, 0, historyCapacity),
		showLabels:   true,
		GIFPath:      "solsim.gif",
	}
	m.followFocus()
	m.camera.Snap()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.step(1.0 / fps)
		if m.recording {
			m.recorder.capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

// handleKey applies a key press and reports whether the program should quit.
func (m *Model) handleKey(key string) bool {
	c := m.sim.Clock()
	switch key {
	case "q", "ctrl+c":
		if m.recording {
			m.stopRecording()
		}
		return true
	case " ":
		c.TogglePause()
	case "r":
		m.sim.Reset()
		m.driftHistory = m.driftHistory[:0]
		m.lastErr = nil
		m.followFocus()
		m.camera.Snap()
	case "+", "=":
		c.Faster()
	case "-", "_":
		c.Slower()
	case ">", ".":
		c.MuchFaster()
	case "<", ",":
		c.MuchSlower()
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "left", "h":
		m.camera.RotateYaw(-0.1)
	case "right", "l":
		m.camera.RotateYaw(0.1)
	case "up", "k":
		m.camera.RotatePitch(0.1)
	case "down", "j":
		m.camera.RotatePitch(-0.1)
	case "i":
		m.camera.ZoomIn()
	case "o":
		m.camera.ZoomOut()
	case "n":
		m.showLabels = !m.showLabels
	case "t":
		NextTheme()
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recording = true
			m.recorder = newGIFRecorder()
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return false
}

func (m *Model) resize(w, h int) {
	cw, ch := w-50, h-4
	if cw < 20 || ch < 8 {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

// step advances the simulation by realDt seconds of wall time. A failed
// tick pauses the clock and is shown in the panel.
func (m *Model) step(realDt float64) {
	if err := m.sim.Tick(realDt); err != nil {
		m.lastErr = err
		m.sim.Clock().Pause()
		log.Warn("simulation paused", "err", err)
	}
	if !m.sim.Clock().Paused() {
		m.driftHistory = append(m.driftHistory, m.drift.Current())
		if len(m.driftHistory) > historyCapacity {
			m.driftHistory = m.driftHistory[1:]
		}
	}
	m.followFocus()
	m.camera.Animate()
	m.sim.SetView(m.camera.Orientation())
	m.draw()
}

func (m *Model) followFocus() {
	if b, ok := m.sim.Registry().Focused(); ok {
		m.camera.Follow(b.Position)
	}
}

func (m *Model) cycleFocus(dir int) {
	bodies := m.sim.Registry().Bodies()
	if len(bodies) == 0 {
		return
	}
	cur := -1
	for i, b := range bodies {
		if b.Focused {
			cur = i
			break
		}
	}
	for n := 1; n <= len(bodies); n++ {
		i := ((cur+dir*n)%len(bodies) + len(bodies)) % len(bodies)
		if bodies[i].Selectable {
			_ = m.sim.Registry().Focus(bodies[i].Name)
			return
		}
	}
}

// draw renders trails, then lagrange markers, then bodies on top.
func (m *Model) draw() {
	m.canvas.Clear()
	frame := m.sim.Frame(true)
	sw, sh := m.canvas.SubWidth(), m.canvas.SubHeight()

	for _, b := range frame.Bodies {
		if !b.Visible || len(b.Trail) < 2 {
			continue
		}
		color := Fade(BodyColor(b.Name, b.Mass), 0.5)
		px, py, _, pok := m.camera.Project(b.Trail[0], sw, sh)
		for _, p := range b.Trail[1:] {
			x, y, _, ok := m.camera.Project(p, sw, sh)
			if ok && pok {
				m.canvas.DrawLineColor(px, py, x, y, color)
			}
			px, py, pok = x, y, ok
		}
	}

	marker := string(CurrentTheme.Marker)
	for _, p := range frame.Points {
		x, y, _, ok := m.camera.Project(p.Position, sw, sh)
		if !ok {
			continue
		}
		m.canvas.SetColor(x, y, marker)
		if m.showLabels {
			m.canvas.Label(x+2, y, p.Name, marker)
		}
	}

	for _, b := range frame.Bodies {
		if !b.Visible {
			continue
		}
		x, y, _, ok := m.camera.Project(b.Position, sw, sh)
		if !ok {
			continue
		}
		color := BodyColor(b.Name, b.Mass)
		r := 0
		if b.Mass > 1e5 {
			r = 1
		}
		m.canvas.Dot(x, y, r, color)
		if b.Focused {
			m.canvas.Label(x-2, y-4, "▾", marker)
		}
		if m.showLabels {
			m.canvas.Label(x+2, y, b.Name, color)
		}
	}
}

func (m *Model) stopRecording() {
	m.recording = false
	if err := m.recorder.save(m.GIFPath); err != nil {
		m.lastErr = err
		log.Warn("gif not saved", "path", m.GIFPath, "err", err)
	}
	m.recorder = nil
}

func (m Model) View() string {
	frame := m.sim.Frame(false)
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), CurrentTheme.Primary, CurrentTheme.Secondary) + "\n\n")

	status := "RUNNING"
	switch {
	case m.recording:
		status = "● REC"
	case frame.Paused:
		status = "PAUSED"
	}
	s.WriteString(statusStyle(frame.Paused, m.recording).Render(status) + "\n\n")

	s.WriteString(labelStyle.Render("Date") + valueStyle.Render(frame.Date.Format("2006-01-02 15:04")) + "\n")
	s.WriteString(labelStyle.Render("Day") + valueStyle.Render(fmt.Sprintf("%.2f", frame.SimTime)) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%g d/s", frame.Speed)) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", len(frame.Bodies))) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.3e", m.drift.Current())) + "\n")
	if b, ok := m.sim.Registry().Focused(); ok {
		s.WriteString(labelStyle.Render("Focus") + valueStyle.Render(b.Name) + "\n")
	}

	if len(frame.Points) > 0 {
		s.WriteString("\n" + headerStyle().Render("LAGRANGE") + "\n")
		for _, p := range frame.Points {
			v := p.Position
			s.WriteString(labelStyle.Render(p.Name) + valueStyle.Render(fmt.Sprintf("%6.2f %6.2f %6.2f", v.X(), v.Y(), v.Z())) + "\n")
		}
	}

	if len(m.driftHistory) > 1 {
		chart := asciigraph.Plot(m.driftHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("energy drift"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.lastErr != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Width(36).Render(m.lastErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render(Separator(36) + "\n" + keyHint("spc", "pause") + keyHint("r", "reset") + keyHint("?", "help")))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay() + "\n" + mainView
	}
	return mainView
}

func helpOverlay() string {
	rows := [][2]string{
		{"Space", "pause / resume"},
		{"R", "reset to the initial table"},
		{"+ / -", "speed x2 / ÷2"},
		{"> / <", "speed x10 / ÷10"},
		{"Tab", "focus next body"},
		{"← → ↑ ↓", "rotate camera"},
		{"I / O", "zoom in / out"},
		{"N", "toggle labels"},
		{"T", "cycle themes"},
		{"G", "toggle GIF recording"},
		{"Q", "quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-9s %s\n", r[0], r[1]))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(CurrentTheme.Muted).
		Padding(0, 1).
		Render(headerStyle().Render("KEYBOARD SHORTCUTS") + "\n" + b.String())
}

// RunLive opens the live view full screen and blocks until it quits.
func RunLive(s *sim.Simulation, title string) error {
	_, err := tea.NewProgram(NewModel(s, title), tea.WithAltScreen()).Run()
	return err
}
