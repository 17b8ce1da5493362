package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-automata/internal/platform/tui"
	"github.com/vovakirdan/tui-automata/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [scenario]",
	Short: "Watch a scenario",
	Long: `Watch a scenario step in the terminal. Without a scenario the
session starts at a picker menu and returns there when a scenario ends.

Controls:
  P/Space    - Pause
  S/Right    - Single step (pauses)
  R          - Restart with a new seed
  +/-        - Faster/slower
  Ctrl+S     - Save a screenshot to ~/.automata/screenshots
  Esc/B      - Back to menu
  Q/Ctrl+C   - Quit

Examples:
  automata play
  automata play life --seed 42
  automata play ant --fps 60
  automata play evolve --config ./my-automata.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	width, height := terminalSize()
	cfg := runtimeConfig(width, height)

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	if len(args) == 0 {
		return tui.RunSession(sim, store, cfg)
	}

	id := args[0]
	if !registry.Exists(id) {
		return fmt.Errorf("unknown scenario %q, run 'automata list' to see available scenarios", id)
	}
	sc, err := registry.Create(id, sim)
	if err != nil {
		return fmt.Errorf("creating scenario: %w", err)
	}

	// A nil *Store must not become a non-nil Journal
	var journal tui.Journal
	if store != nil {
		journal = store
	}
	return tui.Run(sc, journal, sim.Board.Boundary, cfg)
}
