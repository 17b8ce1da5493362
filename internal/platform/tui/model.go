package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
	"github.com/vovakirdan/tui-automata/internal/storage"
)

// helpLines is the number of rows below the scenario frame.
const helpLines = 1

// Journal records runs. *storage.Store implements it.
type Journal interface {
	StartRun(info storage.RunInfo) (string, error)
	FinishRun(runID string, steps, liveCells int) error
}

// Model is the Bubble Tea model that animates one scenario.
type Model struct {
	scenario registry.Scenario
	screen   *core.Screen
	journal  Journal
	boundary string
	config   core.RuntimeConfig
	keys     KeyMap
	help     help.Model
	state    core.SimState
	runID    string
	paused   bool
	err      error
	quitting bool
	back     bool
	loop     uint64
}

// NewModel resets the scenario for cfg and journals the run when journal is
// not nil. boundary is recorded in the journal only.
func NewModel(sc registry.Scenario, journal Journal, boundary string, cfg core.RuntimeConfig) (Model, error) {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	h := help.New()
	h.ShowAll = false

	m := Model{
		scenario: sc,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-helpLines, 1)),
		journal:  journal,
		boundary: boundary,
		config:   cfg,
		keys:     DefaultKeyMap(),
		help:     h,
		loop:     newTickLoop(),
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// restart finishes the current journal entry and starts a fresh run.
func (m *Model) restart() error {
	m.finish()
	if err := m.scenario.Reset(m.runtimeConfig()); err != nil {
		return fmt.Errorf("reset %s: %w", m.scenario.ID(), err)
	}
	m.state = m.scenario.State()
	m.err = nil
	if m.journal != nil {
		w, h := m.scenario.Size()
		id, err := m.journal.StartRun(storage.RunInfo{
			Scenario: m.scenario.ID(),
			Seed:     m.config.Seed,
			Width:    w,
			Height:   max(h-scenarios.StatusLines, 0),
			Boundary: m.boundary,
			Workers:  m.config.Workers,
		})
		if err == nil {
			m.runID = id
		}
	}
	return nil
}

// finish closes the journal entry of the current run, once.
func (m *Model) finish() {
	if m.journal == nil || m.runID == "" {
		return
	}
	//nolint:errcheck // Best-effort save, the view continues regardless
	m.journal.FinishRun(m.runID, m.state.Time, m.state.Population)
	m.runID = ""
}

// runtimeConfig is the config handed to Reset: the screen minus the help line.
func (m Model) runtimeConfig() core.RuntimeConfig {
	cfg := m.config
	cfg.ScreenH = max(cfg.ScreenH-helpLines, 1)
	return cfg
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.loop, m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.finish()
		m.back = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, m.keys.Step):
		m.paused = true
		m.step()

	case key.Matches(msg, m.keys.Reset):
		m.config.Seed = time.Now().UnixNano()
		m.paused = false
		if err := m.restart(); err != nil {
			m.err = err
		}

	case key.Matches(msg, m.keys.Faster):
		m.config.TickRate = stepTickRate(m.config.TickRate, true)

	case key.Matches(msg, m.keys.Slower):
		m.config.TickRate = stepTickRate(m.config.TickRate, false)

	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleResize processes window resize events. The board is rebuilt for the
// new size only while the run has not started.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, max(msg.Height-helpLines, 1))
	m.help.Width = msg.Width

	if m.state.Time == 0 {
		if err := m.restart(); err != nil {
			m.err = err
		}
	}
	return m, nil
}

// handleTick advances the scenario unless paused or finished.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.back || m.quitting {
		return m, nil
	}
	if !m.paused && !m.state.Done && m.err == nil {
		m.step()
	}
	return m, tickCmd(m.loop, m.config.TickRate)
}

func (m *Model) step() {
	res := m.scenario.Step()
	m.state = res.State
	if res.Err != nil {
		m.err = res.Err
	}
	if m.state.Done {
		m.finish()
	}
}

// saveScreenshot saves the current frame to a file.
func (m *Model) saveScreenshot() {
	m.scenario.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".automata", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_t%d_%s.txt", m.scenario.ID(), m.state.Time, timestamp)
	//nolint:errcheck // Best-effort save, the view continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting || m.back {
		return ""
	}

	m.screen.Clear()
	m.scenario.Render(m.screen)

	return RenderScreen(m.screen) + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("error: " + m.err.Error())
	case m.state.Done:
		return style.Render(fmt.Sprintf("finished at t=%d  ", m.state.Time) + m.help.View(m.keys))
	case m.paused:
		return style.Render("paused  " + m.help.View(m.keys))
	default:
		return style.Render(fmt.Sprintf("%d/s  ", m.config.TickRate) + m.help.View(m.keys))
	}
}

// State returns the latest scenario state.
func (m Model) State() core.SimState { return m.state }

// Paused reports whether stepping is paused.
func (m Model) Paused() bool { return m.paused }

// Err returns the error that stopped the run, if any.
func (m Model) Err() error { return m.err }

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to the menu.
func (m Model) BackToMenu() bool { return m.back }

// Run starts the Bubble Tea program for one scenario.
func Run(sc registry.Scenario, journal Journal, boundary string, cfg core.RuntimeConfig) error {
	model, err := NewModel(sc, journal, boundary, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.finish()
	}
	return err
}
