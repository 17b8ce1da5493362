// Package registry provides a global registry of runnable scenarios.
// Scenarios register themselves in init() functions, so the CLI and the
// presenters can list and build them without importing each one by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tui-automata/internal/config"
	"github.com/vovakirdan/tui-automata/internal/core"
)

// ErrUnknownScenario is returned by Create for unregistered IDs.
var ErrUnknownScenario = errors.New("registry: unknown scenario")

// Scenario is one runnable simulation: a board, a rule set and a way to draw
// them. Scenarios know nothing about terminals or key presses; the platform
// handles pacing, input and display.
type Scenario interface {
	// ID returns a unique identifier used on the command line (e.g. "life").
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset builds a fresh board sized for the runtime config.
	// Called once before the first step and again on restart.
	Reset(cfg core.RuntimeConfig) error

	// Step advances the simulation by one time step.
	Step() core.StepResult

	// Render draws the board and a status line into dst.
	Render(dst *core.Screen)

	// State returns the current summary.
	State() core.SimState

	// Size returns the screen area Render needs, in characters.
	Size() (width, height int)
}

// ScenarioInfo contains metadata about a registered scenario.
type ScenarioInfo struct {
	ID    string
	Title string
}

// Factory builds a scenario from the simulation config.
type Factory func(sim config.Simulation) Scenario

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Panics if a scenario with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", id))
	}

	factories[id] = f
	titles[id] = f(config.Default()).Title()
}

// List returns all registered scenarios sorted by ID.
func List() []ScenarioInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ScenarioInfo, 0, len(factories))
	for id := range factories {
		result = append(result, ScenarioInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create builds a scenario by ID.
func Create(id string, sim config.Simulation) (Scenario, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownScenario, id)
	}
	return f(sim), nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
