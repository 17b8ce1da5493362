package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-automata/internal/rules"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
	"github.com/vovakirdan/tui-automata/internal/scenarios/evolve"
	"github.com/vovakirdan/tui-automata/internal/storage"
)

var (
	flagGenerations int
	flagWidth       int
	flagHeight      int
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Evolve life-like rules headless",
	Long: `Run the genetic rule search without the interactive view. Every
generation steps the shared board with each rule of the population, then
culls and breeds the population by fitness against the target density.

Per-generation statistics are logged and recorded in the run journal;
'automata history --run <id>' shows them afterwards.

Examples:
  automata evolve
  automata evolve --generations 100 --width 64 --height 64
  automata evolve --config ./search.yaml --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runEvolve,
}

func init() {
	evolveCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to run (0 = config value)")
	evolveCmd.Flags().IntVar(&flagWidth, "width", 0, "Board width (0 = config value or terminal)")
	evolveCmd.Flags().IntVar(&flagHeight, "height", 0, "Board height (0 = config value or terminal)")
}

func runEvolve(_ *cobra.Command, _ []string) error {
	generations := flagGenerations
	if generations <= 0 {
		generations = sim.Genetic.Generations
	}
	if generations <= 0 {
		return fmt.Errorf("--generations must be positive")
	}

	board := sim.Board
	if flagWidth > 0 {
		board.Width = flagWidth
	}
	if flagHeight > 0 {
		board.Height = flagHeight
	}
	cfg := runtimeConfig(terminalSize())
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	w, h := scenarios.BoardSize(board, cfg)

	engine, err := evolve.NewEngine(sim, w, h, cfg.Seed, cfg.Workers, logger)
	if err != nil {
		return err
	}

	store := openStore()
	var runID string
	if store != nil {
		defer store.Close()
		runID, err = store.StartRun(storage.RunInfo{
			Scenario: evolve.ID,
			Seed:     cfg.Seed,
			Width:    w,
			Height:   h,
			Boundary: sim.Board.Boundary,
			Workers:  cfg.Workers,
		})
		if err != nil {
			logger.Warn("could not journal run", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("evolving", "board", fmt.Sprintf("%dx%d", w, h), "population", engine.Population().Len(),
		"generations", generations, "seed", cfg.Seed)

	var runErr error
	for range generations {
		if ctx.Err() != nil {
			logger.Warn("interrupted", "generation", engine.Time())
			break
		}

		res, err := engine.Step()
		if err != nil {
			runErr = fmt.Errorf("generation %d: %w", engine.Time()+1, err)
			break
		}

		live := engine.Board().Count(rules.IsAlive)
		rec := storage.GenerationRecord{
			Generation: res.Time,
			Population: res.Population,
			LiveCells:  live,
		}
		stats, err := engine.Stats()
		if err != nil {
			runErr = fmt.Errorf("generation %d: %w", res.Time, err)
			break
		}
		if stats.BestIndex >= 0 {
			rec.BestFitness = stats.Best
			rec.MeanFitness = stats.Mean
			rec.BestRule = engine.Population().Genotypes()[stats.BestIndex].String()
		}

		logger.Info("generation", "n", rec.Generation, "population", rec.Population, "live", live,
			"best", fmt.Sprintf("%.3f", rec.BestFitness), "mean", fmt.Sprintf("%.3f", rec.MeanFitness), "rule", rec.BestRule)

		if runID != "" {
			if err := store.RecordGeneration(runID, rec); err != nil {
				logger.Warn("could not record generation", "generation", rec.Generation, "error", err)
			}
		}

		if res.Err != nil {
			logger.Warn("search ended", "generation", res.Time, "error", res.Err)
			break
		}
	}

	if runID != "" {
		if err := store.FinishRun(runID, engine.Time(), engine.Board().Count(rules.IsAlive)); err != nil {
			logger.Warn("could not finish journal entry", "run", runID, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if err := printLeaders(engine); err != nil {
		return err
	}
	if runID != "" {
		fmt.Printf("\nRun %s recorded. Show it with 'automata history --run %s'.\n", shortRunID(runID), runID)
	}
	return nil
}

// printLeaders prints the surviving rules ranked by fitness.
func printLeaders(engine *evolve.Engine) error {
	pop := engine.Population()
	if pop.Len() == 0 {
		fmt.Println("The population died out.")
		return nil
	}

	scores, err := pop.FitnessScores(engine.Board())
	if err != nil {
		return err
	}
	genes := pop.Genotypes()
	order := make([]int, len(genes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	fmt.Printf("Rules after %d generations:\n\n", engine.Time())
	fmt.Printf("  %-4s  %-20s  %s\n", "Rank", "Rule", "Fitness")
	fmt.Printf("  %-4s  %-20s  %s\n", "----", "----", "-------")
	for rank, i := range order {
		fmt.Printf("  %-4d  %-20s  %.3f\n", rank+1, genes[i].String(), scores[i])
	}
	return nil
}
