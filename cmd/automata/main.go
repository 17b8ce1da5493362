// automata runs cellular automata and rule evolution in the terminal.
//
// Usage:
//
//	automata list                 - List available scenarios
//	automata play [scenario]      - Watch a scenario (menu without argument)
//	automata run <scenario>       - Run a scenario headless and print the result
//	automata evolve               - Evolve life-like rules headless
//	automata history              - Show the run journal
//	automata serve                - Start SSH server for remote viewing
//
// Global flags:
//
//	--fps <rate>        - Steps per second in interactive mode (default: 10)
//	--seed <value>      - RNG seed for reproducible runs
//	--workers <n>       - Read-phase workers (0 = one per CPU)
//	--db <path>         - Run journal path (default: ~/.automata/runs.db)
//	--config <path>     - Simulation config YAML
//	--log-level <level> - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/storage"

	// Import scenarios to register them
	_ "github.com/vovakirdan/tui-automata/internal/scenarios/ant"
	_ "github.com/vovakirdan/tui-automata/internal/scenarios/evolve"
	_ "github.com/vovakirdan/tui-automata/internal/scenarios/forestfire"
	_ "github.com/vovakirdan/tui-automata/internal/scenarios/life"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagWorkers  int
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

var (
	sim    config.Simulation
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "automata",
	Short: "TUI Automata - Cellular automata in your terminal",
	Long: `TUI Automata runs two-dimensional cellular automata and evolves
life-like rules with a genetic search, in the terminal or over SSH.

Available commands:
  list     - Show all available scenarios
  play     - Watch a scenario interactively
  run      - Run a scenario headless
  evolve   - Evolve life-like rules headless
  history  - View the run journal
  serve    - Start SSH server for remote viewing

Examples:
  automata list
  automata play life
  automata run forestfire --steps 200
  automata evolve --generations 50
  automata serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", core.DefaultConfig().TickRate, "Steps per second in interactive mode")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config seed or time based)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Read-phase workers (0 = config value or one per CPU)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.automata/runs.db", "Path to the run journal")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a custom simulation config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evolveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup builds the logger and loads the simulation config for every command.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "automata",
		Level:           level,
	})

	sim, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	return nil
}

// runtimeConfig returns the runtime config for a screen of w x h characters.
// Flags win over the config file; a seed left at zero stays time based.
func runtimeConfig(w, h int) core.RuntimeConfig {
	cfg := core.RuntimeConfig{
		ScreenW:  w,
		ScreenH:  h,
		TickRate: flagFPS,
		Seed:     flagSeed,
		Workers:  flagWorkers,
	}
	if cfg.Seed == 0 {
		cfg.Seed = sim.Run.Seed
	}
	if cfg.Workers == 0 {
		cfg.Workers = sim.Run.Workers
	}
	return cfg
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return width, height
}

// openStore opens the run journal, or returns nil with a warning.
// Runs still work without it.
func openStore() *storage.Store {
	if flagDBPath == "" {
		return nil
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open run journal", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}
