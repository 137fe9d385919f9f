package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/integrators"
)

var presetInfo = map[string]string{
	"solar":      "sun to pluto",
	"full":       "planets, moon and spacecraft",
	"inner":      "rocky planets",
	"earth-moon": "the moon's month",
	"binary":     "equal-mass pair",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var configFields = []string{"integrator", "speed", "substeps", "trails", "halo"}

type app struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	field         int
	err           error
	width, height int
	live          Model
}

func NewInteractiveApp() *app {
	return &app{state: stateMenu, presets: config.ListPresets()}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			m.live.resize(msg.Width, msg.Height)
		}
		return m, nil
	default:
		if m.state == stateSim {
			next, cmd := m.live.Update(msg)
			m.live = next.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.field, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.field > 0 {
			m.field--
		}
	case "down", "j":
		if m.field < len(configFields)-1 {
			m.field++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l", "enter", " ":
		m.adjust(1)
	case "s":
		return m, m.start()
	}
	return m, nil
}

func (m *app) adjust(dir int) {
	switch configFields[m.field] {
	case "integrator":
		names := integrators.Names()
		i := 0
		for j, n := range names {
			if n == m.cfg.Integrator {
				i = j
			}
		}
		m.cfg.Integrator = names[((i+dir)%len(names)+len(names))%len(names)]
	case "speed":
		if dir > 0 {
			m.cfg.Speed *= 2
		} else {
			m.cfg.Speed /= 2
		}
	case "substeps":
		if m.cfg.Substeps+dir >= 1 {
			m.cfg.Substeps += dir
		}
	case "trails":
		m.cfg.Trail.Enabled = !m.cfg.Trail.Enabled
	case "halo":
		m.cfg.Halo.Enabled = !m.cfg.Halo.Enabled
	}
}

func (m *app) start() tea.Cmd {
	s, err := experiment.Build(m.cfg)
	if err != nil {
		m.err = err
		return nil
	}
	m.live = NewModel(s, m.cfg.Preset)
	if m.width > 0 {
		m.live.resize(m.width, m.height)
	}
	m.state = stateSim
	return m.live.Init()
}

func (m app) fieldValue(name string) string {
	switch name {
	case "integrator":
		return m.cfg.Integrator
	case "speed":
		return fmt.Sprintf("%g d/s", m.cfg.Speed)
	case "substeps":
		return fmt.Sprintf("%d", m.cfg.Substeps)
	case "trails":
		return onOff(m.cfg.Trail.Enabled)
	case "halo":
		return onOff(m.cfg.Halo.Enabled)
	}
	return ""
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func (m app) heading(title, sub string) string {
	h := GradientText(title, CurrentTheme.Primary, CurrentTheme.Secondary)
	dim := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	return "\n\n    " + h + "\n    " + dim.Render(sub) + "\n    " + dim.Render("─────────────────────────") + "\n\n"
}

func (m app) row(selected bool, name, value string) string {
	if selected {
		arrow := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).Render("▸")
		n := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-12s", name))
		v := lipgloss.NewStyle().Foreground(CurrentTheme.Marker).Render(value)
		return fmt.Sprintf("    %s %s  %s\n", arrow, n, v)
	}
	dim := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	return fmt.Sprintf("    %s  %s\n", dim.Render(fmt.Sprintf("  %-12s", name)), dim.Render(value))
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString(m.heading("SOLSIM", "solar system simulator"))
	for i, name := range m.presets {
		b.WriteString(m.row(i == m.cursor, name, presetInfo[name]))
	}
	b.WriteString("\n    " + keyHint("j/k", "navigate") + keyHint("enter", "select") + keyHint("q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString(m.heading(strings.ToUpper(m.cfg.Preset), strings.Join(m.cfg.Bodies, " ")))
	for i, name := range configFields {
		b.WriteString(m.row(i == m.field, name, m.fieldValue(name)))
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "select") + keyHint("h/l", "adjust") + keyHint("s", "start") + keyHint("esc", "back") + "\n")
	return b.String()
}

func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen()).Run()
	return err
}
