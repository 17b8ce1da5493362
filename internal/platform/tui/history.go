package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-automata/internal/storage"
)

// maxRuns is the number of journal entries loaded into the table.
const maxRuns = 100

// History reads the run journal. *storage.Store implements it.
type History interface {
	RecentRuns(limit int) ([]storage.Run, error)
	Generations(runID string) ([]storage.GenerationRecord, error)
}

// HistoryKeyMap defines the key bindings for the journal view.
type HistoryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k HistoryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k HistoryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultHistoryKeyMap returns default key bindings.
func DefaultHistoryKeyMap() HistoryKeyMap {
	return HistoryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "generations"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// HistoryModel is the Bubble Tea model for the run journal. It lists recent
// runs and, on select, the generations of the highlighted run.
type HistoryModel struct {
	source    History
	runs      []storage.Run
	gens      []storage.GenerationRecord
	detail    bool // Showing generations of runs[table cursor]
	runTable  table.Model
	genTable  table.Model
	help      help.Model
	keys      HistoryKeyMap
	width     int
	height    int
	err       error
	quitting  bool
	goingBack bool
}

// NewHistoryModel creates a journal view. source may be nil.
func NewHistoryModel(source History, width, height int) HistoryModel {
	m := HistoryModel{
		source: source,
		keys:   DefaultHistoryKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.runTable = newTable(runColumns(), height)
	m.genTable = newTable(generationColumns(), height)
	m.loadRuns()
	return m
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "Run", Width: 8},
		{Title: "Scenario", Width: 11},
		{Title: "Size", Width: 9},
		{Title: "Seed", Width: 20},
		{Title: "Steps", Width: 7},
		{Title: "Live", Width: 7},
		{Title: "Started", Width: 12},
	}
}

func generationColumns() []table.Column {
	return []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Pop", Width: 5},
		{Title: "Best", Width: 7},
		{Title: "Mean", Width: 7},
		{Title: "Live", Width: 7},
		{Title: "Best rule", Width: 20},
	}
}

// newTable creates a focused table with the shared styles.
func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads the most recent runs.
func (m *HistoryModel) loadRuns() {
	m.runs = nil
	if m.source != nil {
		m.runs, m.err = m.source.RecentRuns(maxRuns)
	}
	m.runTable.SetRows(runRows(m.runs))
	m.runTable.GotoTop()
}

// loadGenerations loads the generations of the highlighted run.
func (m *HistoryModel) loadGenerations() {
	m.gens = nil
	i := m.runTable.Cursor()
	if m.source == nil || i < 0 || i >= len(m.runs) {
		return
	}
	m.gens, m.err = m.source.Generations(m.runs[i].ID)
	m.genTable.SetRows(generationRows(m.gens))
	m.genTable.GotoTop()
}

func runRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		steps := "-"
		if r.Finished() {
			steps = fmt.Sprintf("%d", r.Steps)
		}
		rows[i] = table.Row{
			shortID(r.ID),
			r.Scenario,
			fmt.Sprintf("%dx%d", r.Width, r.Height),
			fmt.Sprintf("%d", r.Seed),
			steps,
			fmt.Sprintf("%d", r.LiveCells),
			r.StartedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows
}

func generationRows(gens []storage.GenerationRecord) []table.Row {
	rows := make([]table.Row, len(gens))
	for i, g := range gens {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%d", g.Population),
			fmt.Sprintf("%.3f", g.BestFitness),
			fmt.Sprintf("%.3f", g.MeanFitness),
			fmt.Sprintf("%d", g.LiveCells),
			g.BestRule,
		}
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Init initializes the journal model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the journal view.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			if m.detail {
				m.detail = false
				return m, nil
			}
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if !m.detail && len(m.runs) > 0 {
				m.loadGenerations()
				m.detail = true
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runTable.SetHeight(max(m.height-8, 3))
		m.genTable.SetHeight(max(m.height-8, 3))
		m.help.Width = msg.Width
		return m, nil
	}

	if m.detail {
		m.genTable, cmd = m.genTable.Update(msg)
	} else {
		m.runTable, cmd = m.runTable.Update(msg)
	}
	return m, cmd
}

// View renders the journal.
func (m HistoryModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "RUN JOURNAL"
	if m.detail {
		r := m.runs[m.runTable.Cursor()]
		title = fmt.Sprintf("GENERATIONS - %s %s", r.Scenario, shortID(r.ID))
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the active table or an empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.err != nil:
		return emptyStyle.Render("Journal unavailable:\n" + m.err.Error())
	case m.detail && len(m.gens) == 0:
		return emptyStyle.Render("No generations recorded for this run.")
	case m.detail:
		return m.genTable.View()
	case len(m.runs) == 0:
		return emptyStyle.Render("No runs recorded yet.\nRun a scenario to fill the journal!")
	default:
		return m.runTable.View()
	}
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}

// RunHistory runs the journal screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunHistory(source History, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(
		NewHistoryModel(source, width, height),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(HistoryModel)
	if !ok {
		return false, nil
	}

	return m.IsGoingBack(), nil
}
