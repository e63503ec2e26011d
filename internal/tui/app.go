// Package tui is the terminal render loop: it draws interpolated frames from
// shared-state snapshots at a fixed frame rate and turns key presses into
// clamped control writes. It never blocks on the simulation side; if nothing
// new was published since the last frame it re-renders the previous
// snapshot.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simlab/simviz/internal/config"
	"github.com/simlab/simviz/internal/geom"
	"github.com/simlab/simviz/internal/simstate"
)

// Mode selects which demo view to draw.
type Mode int

const (
	ModeVehicle Mode = iota
	ModeTank
)

const (
	factorStep = 0.1
	flowStep   = 5.0
	trailCap   = 50
)

type tickMsg time.Time

// Model is the bubbletea consumer loop.
type Model struct {
	mode  Mode
	cfg   *config.Config
	state *simstate.State

	snap      simstate.Snapshot
	trail     []geom.Point
	lastFrame time.Time
	fps       float64

	width  int
	height int
}

// New creates the consumer model over an already-running simulation state.
func New(mode Mode, cfg *config.Config, state *simstate.State) Model {
	return Model{
		mode:  mode,
		cfg:   cfg,
		state: state,
		snap:  state.Snapshot(),
		trail: make([]geom.Point, 0, trailCap),
		width: 80,
	}
}

// Run drives the program until the user quits or the simulation dies.
func Run(mode Mode, cfg *config.Config, state *simstate.State) error {
	p := tea.NewProgram(New(mode, cfg, state), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.cfg.FrameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		now := time.Now()
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.fps = 1.0 / dt
			}
		}
		m.lastFrame = now

		m.snap = m.state.Snapshot()
		if !m.snap.Running {
			// Simulation side is gone; the last frame stays on screen
			// until the program exits.
			return m, tea.Quit
		}

		if m.mode == ModeVehicle {
			m.trail = append(m.trail, m.snap.Position)
			if len(m.trail) > trailCap {
				m.trail = m.trail[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// handleKey is the slider surface: every value is clamped here, before it
// reaches shared state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctl := m.snap.Controls

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.state.Shutdown()
		return m, tea.Quit

	case "+", "=":
		m.state.SetFactor(config.ClampFactor(ctl.Factor + factorStep))
	case "-", "_":
		m.state.SetFactor(config.ClampFactor(ctl.Factor - factorStep))
	case "0":
		m.state.SetFactor(1.0)
	}

	if m.mode == ModeTank {
		switch msg.String() {
		case "i":
			m.state.SetInflow(config.ClampFlow(ctl.Inflow + flowStep))
		case "I":
			m.state.SetInflow(config.ClampFlow(ctl.Inflow - flowStep))
		case "o":
			m.state.SetOutflow(config.ClampFlow(ctl.Outflow + flowStep))
		case "O":
			m.state.SetOutflow(config.ClampFlow(ctl.Outflow - flowStep))
		}
	}
	return m, nil
}
