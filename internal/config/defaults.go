package config

import (
	_ "embed"
)

//go:embed defaults/automata.yaml
var defaultYAML []byte

// Default returns the built-in configuration without touching the filesystem.
func Default() Simulation {
	return Simulation{
		Board: BoardConfig{
			Boundary: "periodic",
			Density:  0.3,
		},
		Run: RunConfig{
			Steps: 200,
		},
		Ant: AntConfig{
			Direction: "up",
		},
		ForestFire: ForestFireConfig{
			GrowProbability: 0.02,
			BurnProbability: 0.0005,
			TreeDensity:     0.55,
		},
		Genetic: GeneticConfig{
			PopulationSize: 12,
			MutationRate:   0.05,
			Selection: SelectionConfig{
				Kind:     "tournament",
				Size:     3,
				Pressure: 1.5,
				Fraction: 0.5,
			},
			DeathFraction:  0.25,
			GrowthFraction: 0.35,
			Generations:    30,
			TargetDensity:  0.3,
			Horizon:        8,
			Seeds:          []string{"B3/S23", "B36/S23", "B3678/S34678", "B2/S"},
		},
	}
}
