package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestEmbeddedMatchesDefault(t *testing.T) {
	cfg, err := parse(defaultYAML)
	if err != nil {
		t.Fatalf("embedded config does not parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded config drifted from Default():\n%+v\n%+v", cfg, Default())
	}
}

func TestLoadCustomPathOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte(`
board:
  width: 40
  boundary: fixed
run:
  interval: 150ms
genetic:
  selection:
    kind: rank
    pressure: 2
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.Width != 40 || cfg.Board.Boundary != "fixed" {
		t.Errorf("board = %+v", cfg.Board)
	}
	if cfg.Run.Interval != 150*time.Millisecond {
		t.Errorf("run.interval = %v", cfg.Run.Interval)
	}
	if cfg.Genetic.Selection.Kind != "rank" || cfg.Genetic.Selection.Pressure != 2 {
		t.Errorf("selection = %+v", cfg.Genetic.Selection)
	}
	// Untouched values keep their defaults.
	if cfg.Board.Density != 0.3 || cfg.Genetic.PopulationSize != 12 {
		t.Errorf("defaults lost: density=%v population=%d", cfg.Board.Density, cfg.Genetic.PopulationSize)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing custom file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("board:\n  boundary: spherical\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, expected ErrInvalid", err)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Error("expected embedded default when no file exists")
	}

	local := filepath.Join(work, "configs")
	if err := os.MkdirAll(local, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(local, FileName), []byte("run:\n  steps: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := Load(""); cfg.Run.Steps != 7 {
		t.Errorf("local config ignored, steps = %d", cfg.Run.Steps)
	}

	user := filepath.Join(home, ".automata", "configs")
	if err := os.MkdirAll(user, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(user, FileName), []byte("run:\n  steps: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, _ := Load(""); cfg.Run.Steps != 9 {
		t.Errorf("user config should win over local, steps = %d", cfg.Run.Steps)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Board.Density = 2
	cfg.Genetic.MutationRate = -1
	cfg.Genetic.PopulationSize = 0

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() = %v", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 3 {
		t.Errorf("expected three joined errors, got %v", err)
	}
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern []string
		wantErr bool
	}{
		{"none", nil, false},
		{"rectangular", []string{".#.", "..#", "###"}, false},
		{"ragged", []string{".#.", "#"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Board.Pattern = tc.pattern
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
