package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-automata/internal/platform/tui"
	"github.com/vovakirdan/tui-automata/internal/storage"
)

var (
	flagRunID string
	flagLimit int
	flagTable bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the run journal",
	Long: `Display recent runs from the run journal, or the generation log of
one evolution run.

Examples:
  automata history
  automata history --limit 5
  automata history --run 3f2a9c1e-...
  automata history --tui`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagRunID, "run", "", "Show the generations of one run")
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of runs to list")
	historyCmd.Flags().BoolVar(&flagTable, "tui", false, "Browse the journal interactively")
}

func runHistory(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening run journal: %w", err)
	}
	defer store.Close()

	switch {
	case flagTable:
		width, height := terminalSize()
		_, err := tui.RunHistory(store, width, height)
		return err
	case flagRunID != "":
		return printRun(store, flagRunID)
	default:
		return printRuns(store, flagLimit)
	}
}

func printRuns(store *storage.Store, limit int) error {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}

	fmt.Println("Recent runs")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'automata play' or 'automata run <id>' to fill the journal!")
		return nil
	}

	fmt.Printf("  %-8s  %-10s  %-9s  %-7s  %-7s  %s\n", "Run", "Scenario", "Size", "Steps", "Live", "Started")
	fmt.Printf("  %-8s  %-10s  %-9s  %-7s  %-7s  %s\n", "---", "--------", "----", "-----", "----", "-------")
	for _, r := range runs {
		steps := "-"
		if r.Finished() {
			steps = fmt.Sprintf("%d", r.Steps)
		}
		fmt.Printf("  %-8s  %-10s  %-9s  %-7s  %-7d  %s\n",
			shortRunID(r.ID), r.Scenario, fmt.Sprintf("%dx%d", r.Width, r.Height),
			steps, r.LiveCells, r.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func printRun(store *storage.Store, id string) error {
	run, err := store.Run(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return fmt.Errorf("no run with id %q", id)
	}
	if err != nil {
		return fmt.Errorf("retrieving run: %w", err)
	}

	fmt.Printf("Run %s - %s\n", run.ID, run.Scenario)
	fmt.Printf("  board    %dx%d %s\n", run.Width, run.Height, run.Boundary)
	fmt.Printf("  seed     %d\n", run.Seed)
	fmt.Printf("  started  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Finished() {
		fmt.Printf("  finished %s after %d steps, %d live cells\n",
			run.FinishedAt.Local().Format("2006-01-02 15:04:05"), run.Steps, run.LiveCells)
	}
	fmt.Println()

	gens, err := store.Generations(id)
	if err != nil {
		return fmt.Errorf("retrieving generations: %w", err)
	}
	if len(gens) == 0 {
		fmt.Println("No generations recorded for this run.")
		return nil
	}

	fmt.Printf("  %-4s  %-4s  %-7s  %-7s  %-6s  %s\n", "Gen", "Pop", "Best", "Mean", "Live", "Best rule")
	fmt.Printf("  %-4s  %-4s  %-7s  %-7s  %-6s  %s\n", "---", "---", "----", "----", "----", "---------")
	for _, g := range gens {
		fmt.Printf("  %-4d  %-4d  %-7.3f  %-7.3f  %-6d  %s\n",
			g.Generation, g.Population, g.BestFitness, g.MeanFitness, g.LiveCells, g.BestRule)
	}
	return nil
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
