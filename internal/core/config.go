package core

// RuntimeConfig is handed to a scenario when it is (re)started.
// Scenarios use it to size their board and seed their randomness.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation steps per second in interactive mode
	Seed     int64 // RNG seed, 0 means the platform picks one
	Workers  int   // Read-phase worker limit, 0 means one per CPU
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 10,
	}
}

// SimState summarizes a running scenario for status lines and the run journal.
type SimState struct {
	Time       int    // Completed steps
	Population int    // Cells in a non-background state
	Summary    string // Scenario-specific one-line status
	Done       bool   // Scenario cannot make further progress
}

// StepResult is returned by Scenario.Step after each simulation step.
type StepResult struct {
	State   SimState
	Changed int   // Deltas that were applied
	Dropped int   // Deltas that could not be applied
	Err     error // Fatal step error, the scenario state is unchanged
}
