package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.automata/host_key.
	HostKeyPath string

	// DBPath is the path to the run journal. Empty disables journaling.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the initial steps per second of every session.
	TickRate int

	// Sim is handed to every scenario factory.
	Sim config.Simulation

	// Logger receives server events. Nil means a stderr logger.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23235",
		DBPath:      "~/.automata/runs.db",
		IdleTimeout: 30 * time.Minute,
		TickRate:    core.DefaultConfig().TickRate,
		Sim:         config.Default(),
	}
}

// SSHServer wraps a Wish SSH server that serves scenarios to SSH clients.
// The first word of the SSH command selects a scenario; without one the
// session starts at the menu.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "automata-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	if cfg.DBPath != "" {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			// Continue without the journal
			logger.Warn("could not open run journal", "error", err)
		} else {
			srv.store = store
		}
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".automata", "host_key")
	}

	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if srv.store != nil {
			srv.store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	model := NewSessionModel(s.config.Sim, s.store, cfg)
	if args := sshSession.Command(); len(args) > 0 {
		if err := model.Open(args[0]); err != nil {
			s.logger.Warn("cannot open scenario", "user", sshSession.User(), "scenario", args[0], "error", err)
		}
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"command", sshSession.Command(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type sessionView int

const (
	viewMenu sessionView = iota
	viewScenario
	viewHistory
)

// SessionModel manages the full session flow: menu -> scenario or journal ->
// menu. It is the top-level model of SSH sessions and of `play` without a
// scenario argument. Child models quit on back; the session drops that
// command and returns to the menu instead.
type SessionModel struct {
	sim      config.Simulation
	journal  Journal
	history  History
	config   core.RuntimeConfig
	view     sessionView
	menu     MenuModel
	model    *Model
	journalV *HistoryModel
	quitting bool
}

// NewSessionModel creates a new session model. store may be nil.
func NewSessionModel(sim config.Simulation, store *storage.Store, cfg core.RuntimeConfig) *SessionModel {
	m := &SessionModel{
		sim:    sim,
		config: cfg,
		menu:   NewMenuModel(cfg),
	}
	if store != nil {
		m.journal = store
		m.history = store
	}
	return m
}

// Open switches the session to the scenario with the given ID.
func (m *SessionModel) Open(id string) error {
	sc, err := registry.Create(id, m.sim)
	if err != nil {
		return err
	}
	model, err := NewModel(sc, m.journal, m.sim.Board.Boundary, m.config)
	if err != nil {
		return err
	}
	m.model = &model
	m.view = viewScenario
	return nil
}

// Init initializes the session.
func (m *SessionModel) Init() tea.Cmd {
	if m.view == viewScenario {
		return m.model.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.view {
	case viewScenario:
		return m.updateScenario(msg)
	case viewHistory:
		return m.updateHistory(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m *SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.view = viewMenu
	m.model = nil
	m.journalV = nil
	m.menu = NewMenuModel(m.config)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m *SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsHistory():
		hv := NewHistoryModel(m.history, m.config.ScreenW, m.config.ScreenH)
		m.journalV = &hv
		m.view = viewHistory
		return m, hv.Init()

	case m.menu.Selected() != nil:
		m.config = m.menu.Config()
		if err := m.Open(m.menu.Selected().ID); err != nil {
			return m.toMenu()
		}
		return m, m.model.Init()
	}

	return m, cmd
}

// updateScenario handles updates while a scenario runs.
func (m *SessionModel) updateScenario(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.model.Update(msg)
	if model, ok := next.(Model); ok {
		m.model = &model
	}

	if m.model.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.model.BackToMenu() {
		return m.toMenu()
	}
	return m, cmd
}

// updateHistory handles updates while the journal is shown.
func (m *SessionModel) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.journalV.Update(msg)
	if hv, ok := next.(HistoryModel); ok {
		m.journalV = &hv
	}

	if m.journalV.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.journalV.IsGoingBack() {
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m *SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.view {
	case viewScenario:
		return m.model.View()
	case viewHistory:
		return m.journalV.View()
	default:
		return m.menu.View()
	}
}

// RunSession runs the menu-driven session locally.
func RunSession(sim config.Simulation, store *storage.Store, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(sim, store, cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
