package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-automata/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the automata SSH server",
	Long: `Start an SSH server that lets users connect and watch scenarios.

Each SSH connection gets its own session with a scenario picker menu.
A scenario ID passed as the SSH command opens that scenario directly.
Runs from every session go to the same journal.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.automata/host_key

Examples:
  automata serve                           # Listen on :23235 with auto-generated key
  automata serve --ssh :2222               # Listen on port 2222
  automata serve --host-key ./my_host_key  # Use specific host key
  automata serve --db ""                   # Run without a journal

Users can connect with:
  ssh localhost -p 23235
  ssh localhost -p 23235 -t life`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", tui.DefaultSSHServerConfig().Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.TickRate = flagFPS
	cfg.Sim = sim
	cfg.Logger = logger.WithPrefix("automata-ssh")

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting automata SSH server on %s\n", server.Addr())
	fmt.Println("Connect with: ssh localhost -p 23235")
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
