// Package storage provides a SQLite run journal: one row per simulation run
// and one row per generation of a genetic run. Only summaries are stored;
// boards are never persisted.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrRunNotFound is returned for run IDs the journal does not know.
var ErrRunNotFound = errors.New("storage: run not found")

// Store manages the SQLite database connection for the journal.
type Store struct {
	db *sql.DB
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	Scenario string
	Seed     int64
	Width    int
	Height   int
	Boundary string
	Workers  int
}

// Run is a journal entry. FinishedAt is zero while the run is in progress.
type Run struct {
	ID string
	RunInfo
	Steps      int
	LiveCells  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// GenerationRecord summarizes one generation of a genetic run.
type GenerationRecord struct {
	Generation  int
	Population  int
	BestFitness float64
	MeanFitness float64
	BestRule    string
	LiveCells   int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			boundary TEXT NOT NULL,
			workers INTEGER NOT NULL DEFAULT 0,
			steps INTEGER NOT NULL DEFAULT 0,
			live_cells INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);

		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			population INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			best_rule TEXT NOT NULL DEFAULT '',
			live_cells INTEGER NOT NULL DEFAULT 0,
			UNIQUE(run_id, generation)
		);
		CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id, generation);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun journals a new run and returns its ID.
func (s *Store) StartRun(info RunInfo) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, scenario, seed, width, height, boundary, workers)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, info.Scenario, info.Seed, info.Width, info.Height, info.Boundary, info.Workers,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return id, nil
}

// FinishRun records the final step count and live cell count of a run.
func (s *Store) FinishRun(runID string, steps, liveCells int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET steps = ?, live_cells = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		steps, liveCells, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordGeneration journals one generation of a genetic run.
func (s *Store) RecordGeneration(runID string, g GenerationRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO generations
		 (run_id, generation, population, best_fitness, mean_fitness, best_rule, live_cells)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, g.Generation, g.Population, g.BestFitness, g.MeanFitness, g.BestRule, g.LiveCells,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation: %w", err)
	}
	return nil
}

const runColumns = `id, scenario, seed, width, height, boundary, workers,
	steps, live_cells, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var startedAt, finishedAt any
	err := row.Scan(
		&r.ID,
		&r.Scenario,
		&r.Seed,
		&r.Width,
		&r.Height,
		&r.Boundary,
		&r.Workers,
		&r.Steps,
		&r.LiveCells,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)
	return r, nil
}

// Run retrieves one run by ID.
func (s *Store) Run(runID string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return r, nil
}

// RecentRuns retrieves the most recently started runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Generations retrieves every generation of a run in order.
func (s *Store) Generations(runID string) ([]GenerationRecord, error) {
	rows, err := s.db.Query(
		`SELECT generation, population, best_fitness, mean_fitness, best_rule, live_cells
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var gens []GenerationRecord
	for rows.Next() {
		var g GenerationRecord
		if err := rows.Scan(&g.Generation, &g.Population, &g.BestFitness, &g.MeanFitness, &g.BestRule, &g.LiveCells); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		gens = append(gens, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return gens, nil
}

// parseTime handles DATETIME values returned either as time.Time or as text.
// NULL yields the zero time.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
