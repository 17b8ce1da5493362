// Package config provides YAML-based simulation configuration for the
// automata platform: board geometry, run pacing, per-scenario rule
// parameters and the genetic search settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Simulation is the root of automata.yaml.
type Simulation struct {
	Board      BoardConfig      `yaml:"board"`
	Run        RunConfig        `yaml:"run"`
	Ant        AntConfig        `yaml:"ant"`
	ForestFire ForestFireConfig `yaml:"forest_fire"`
	Genetic    GeneticConfig    `yaml:"genetic"`
}

// BoardConfig defines the grid every scenario starts from.
type BoardConfig struct {
	Width    int      `yaml:"width"`    // 0 means fit the terminal
	Height   int      `yaml:"height"`   // 0 means fit the terminal
	Boundary string   `yaml:"boundary"` // "periodic" or "fixed"
	Density  float64  `yaml:"density"`  // Initial live fraction for random soups
	Pattern  []string `yaml:"pattern"`  // Rows of '.' and '#' centered on an empty life board
}

// RunConfig defines how long and how fast a run goes.
type RunConfig struct {
	Steps    int           `yaml:"steps"`
	Interval time.Duration `yaml:"interval"` // Pause between headless steps
	Workers  int           `yaml:"workers"`  // 0 means one per CPU
	Seed     int64         `yaml:"seed"`     // 0 means time-based
}

// AntConfig defines Langton's ant parameters.
type AntConfig struct {
	Direction string `yaml:"direction"` // up, right, down or left
}

// ForestFireConfig defines forest fire probabilities.
type ForestFireConfig struct {
	GrowProbability float64 `yaml:"grow_probability"`
	BurnProbability float64 `yaml:"burn_probability"`
	TreeDensity     float64 `yaml:"tree_density"`
}

// GeneticConfig defines the rule-evolution search.
type GeneticConfig struct {
	PopulationSize int             `yaml:"population_size"`
	MutationRate   float64         `yaml:"mutation_rate"`
	Selection      SelectionConfig `yaml:"selection"`
	DeathFraction  float64         `yaml:"death_fraction"`
	GrowthFraction float64         `yaml:"growth_fraction"`
	Generations    int             `yaml:"generations"`
	TargetDensity  float64         `yaml:"target_density"`
	Horizon        int             `yaml:"horizon"`
	Seeds          []string        `yaml:"seeds"` // Initial rules in B/S notation
}

// SelectionConfig names a selection strategy and its parameter.
type SelectionConfig struct {
	Kind     string  `yaml:"kind"` // tournament, roulette, rank or truncation
	Size     int     `yaml:"size"`
	Pressure float64 `yaml:"pressure"`
	Fraction float64 `yaml:"fraction"`
}

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Validate checks ranges that the engine would otherwise reject at run time.
func (s Simulation) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(s.Board.Width >= 0 && s.Board.Height >= 0, "board size %dx%d", s.Board.Width, s.Board.Height)
	b := strings.ToLower(s.Board.Boundary)
	check(b == "periodic" || b == "fixed", "board.boundary %q", s.Board.Boundary)
	check(unit(s.Board.Density), "board.density %g", s.Board.Density)
	for i, row := range s.Board.Pattern {
		check(utf8.RuneCountInString(row) == utf8.RuneCountInString(s.Board.Pattern[0]), "board.pattern row %d is ragged", i)
	}
	check(s.Run.Steps >= 0, "run.steps %d", s.Run.Steps)
	check(s.Run.Interval >= 0, "run.interval %v", s.Run.Interval)
	check(s.Run.Workers >= 0, "run.workers %d", s.Run.Workers)
	check(unit(s.ForestFire.GrowProbability), "forest_fire.grow_probability %g", s.ForestFire.GrowProbability)
	check(unit(s.ForestFire.BurnProbability), "forest_fire.burn_probability %g", s.ForestFire.BurnProbability)
	check(unit(s.ForestFire.TreeDensity), "forest_fire.tree_density %g", s.ForestFire.TreeDensity)
	check(s.Genetic.PopulationSize >= 1, "genetic.population_size %d", s.Genetic.PopulationSize)
	check(unit(s.Genetic.MutationRate), "genetic.mutation_rate %g", s.Genetic.MutationRate)
	check(unit(s.Genetic.DeathFraction), "genetic.death_fraction %g", s.Genetic.DeathFraction)
	check(unit(s.Genetic.GrowthFraction), "genetic.growth_fraction %g", s.Genetic.GrowthFraction)
	check(s.Genetic.Generations >= 0, "genetic.generations %d", s.Genetic.Generations)
	check(unit(s.Genetic.TargetDensity), "genetic.target_density %g", s.Genetic.TargetDensity)
	check(s.Genetic.Horizon >= 0, "genetic.horizon %d", s.Genetic.Horizon)

	return errors.Join(errs...)
}

func unit(f float64) bool {
	return f >= 0 && f <= 1
}
