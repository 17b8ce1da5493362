package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/platform/tui"
	"github.com/vovakirdan/tui-automata/internal/registry"
	"github.com/vovakirdan/tui-automata/internal/scenarios"
	"github.com/vovakirdan/tui-automata/internal/storage"
)

var (
	flagSteps    int
	flagInterval time.Duration
	flagEvery    int
	flagPlain    bool
)

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Run a scenario headless",
	Long: `Step a scenario without the interactive view and print the final
board. The run stops early when the scenario finishes, fails, or on Ctrl+C,
and is recorded in the run journal.

Examples:
  automata run life --steps 500 --seed 42
  automata run forestfire --every 50
  automata run ant --steps 11000 --plain > ant.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagSteps, "steps", 0, "Steps to run (0 = config value)")
	runCmd.Flags().DurationVar(&flagInterval, "interval", 0, "Pause between steps (0 = config value)")
	runCmd.Flags().IntVar(&flagEvery, "every", 0, "Print the board every N steps (0 = final board only)")
	runCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print without colors")
}

func runRun(_ *cobra.Command, args []string) error {
	id := args[0]
	if !registry.Exists(id) {
		return fmt.Errorf("unknown scenario %q, run 'automata list' to see available scenarios", id)
	}
	sc, err := registry.Create(id, sim)
	if err != nil {
		return fmt.Errorf("creating scenario: %w", err)
	}

	steps := flagSteps
	if steps <= 0 {
		steps = sim.Run.Steps
	}
	if steps <= 0 {
		return fmt.Errorf("--steps must be positive")
	}
	interval := flagInterval
	if interval <= 0 {
		interval = sim.Run.Interval
	}

	width, height := terminalSize()
	cfg := runtimeConfig(width, height)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := sc.Reset(cfg); err != nil {
		return fmt.Errorf("reset %s: %w", id, err)
	}

	store := openStore()
	var runID string
	if store != nil {
		defer store.Close()
		w, h := sc.Size()
		runID, err = store.StartRun(storage.RunInfo{
			Scenario: id,
			Seed:     cfg.Seed,
			Width:    w,
			Height:   max(h-scenarios.StatusLines, 0),
			Boundary: sim.Board.Boundary,
			Workers:  cfg.Workers,
		})
		if err != nil {
			logger.Warn("could not journal run", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running", "scenario", id, "steps", steps, "seed", cfg.Seed)
	state, runErr := stepScenario(ctx, sc, steps, interval)

	if runID != "" {
		if err := store.FinishRun(runID, state.Time, state.Population); err != nil {
			logger.Warn("could not finish journal entry", "run", runID, "error", err)
		}
	}

	printFrame(sc)
	if runErr != nil {
		return runErr
	}
	logger.Info("done", "scenario", id, "t", state.Time, "live", state.Population, "run", runID)
	return nil
}

// stepScenario steps sc up to steps times and returns the last state.
func stepScenario(ctx context.Context, sc registry.Scenario, steps int, interval time.Duration) (core.SimState, error) {
	state := sc.State()
	for range steps {
		if ctx.Err() != nil {
			logger.Warn("interrupted", "t", state.Time)
			return state, nil
		}

		res := sc.Step()
		state = res.State
		logger.Debug("step", "t", state.Time, "changed", res.Changed, "dropped", res.Dropped, "live", state.Population)

		if res.Err != nil {
			return state, fmt.Errorf("%s stopped at t=%d: %w", sc.ID(), state.Time, res.Err)
		}
		if state.Done {
			logger.Info("scenario cannot progress further", "t", state.Time)
			return state, nil
		}
		if flagEvery > 0 && state.Time%flagEvery == 0 {
			printFrame(sc)
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
	}
	return state, nil
}

// printFrame renders the scenario with its glyph census to stdout.
func printFrame(sc registry.Scenario) {
	fmt.Println(tui.RenderFrame(sc, flagPlain))
}
