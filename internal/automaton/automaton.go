package automaton

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-automata/internal/core"
)

// Options tune the stepping engine.
type Options struct {
	Workers int         // Read-phase goroutine limit, <= 0 means GOMAXPROCS
	Logger  *log.Logger // Receives dropped-delta and rule-error diagnostics
}

// Option configures Options.
type Option func(*Options)

// WithWorkers limits the number of goroutines used by the read phase.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// StepResult describes one completed step.
type StepResult struct {
	Time       int // Time after the step
	Deltas     int // Deltas that reached the apply phase
	Applied    int // Deltas written to the board
	Dropped    int // Deltas rejected by Board.Set
	Elided     int // Deltas that rewrote a cell's pre-step value
	RuleErrors int // Cells whose rule evaluation returned an error
}

// Automaton steps one Board under an ordered list of rules.
// It owns the board: callers must not mutate it while a step runs.
type Automaton[S State] struct {
	board *Board[S]
	rules []Rule[S]
	time  int
	opts  Options
}

// New returns an automaton at time 0.
func New[S State](board *Board[S], rules []Rule[S], opts ...Option) *Automaton[S] {
	return &Automaton[S]{
		board: board,
		rules: append([]Rule[S](nil), rules...),
		opts:  NewOptions(opts...),
	}
}

// Time returns the number of completed steps.
func (a *Automaton[S]) Time() int { return a.time }

// Board returns the live board.
func (a *Automaton[S]) Board() *Board[S] { return a.board }

// Rules returns a copy of the rule list.
func (a *Automaton[S]) Rules() []Rule[S] {
	return append([]Rule[S](nil), a.rules...)
}

// AddRule appends r. It is evaluated after every existing rule.
func (a *Automaton[S]) AddRule(r Rule[S]) {
	a.rules = append(a.rules, r)
}

// Step runs one read, collect and apply cycle and advances time by one.
// Per-delta write failures are counted and logged, never returned. The only
// error is a rule panicking during the read phase, in which case the board
// and time are left untouched.
func (a *Automaton[S]) Step() (StepResult, error) {
	batch, err := Collect(a.board, a.rules, a.opts)
	if err != nil {
		return StepResult{Time: a.time}, err
	}
	applied, dropped := ApplyDeltas(a.board, batch.Deltas, a.opts.Logger)
	a.time++

	return StepResult{
		Time:       a.time,
		Deltas:     len(batch.Deltas),
		Applied:    applied,
		Dropped:    dropped,
		Elided:     batch.Elided,
		RuleErrors: batch.RuleErrors,
	}, nil
}

// Evolve runs n steps, stopping at the first step-level error.
func (a *Automaton[S]) Evolve(n int) error {
	return a.EvolveWithObserver(n, 0, nil)
}

// EvolveWithObserver runs n steps, calling fn after each one and sleeping
// interval between steps. The pause exists only for visual pacing.
func (a *Automaton[S]) EvolveWithObserver(n int, interval time.Duration, fn func(StepResult)) error {
	for i := 0; i < n; i++ {
		if i > 0 && interval > 0 {
			time.Sleep(interval)
		}
		res, err := a.Step()
		if err != nil {
			return fmt.Errorf("step %d: %w", a.time+1, err)
		}
		if fn != nil {
			fn(res)
		}
	}
	return nil
}

// Frames returns n color frames: the current board followed by the board
// after each of the next n-1 steps.
func (a *Automaton[S]) Frames(n int, project func(S) core.Color) ([][][]core.Color, error) {
	frames := make([][][]core.Color, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := a.Step(); err != nil {
				return frames, err
			}
		}
		frames = append(frames, a.board.ToRepresentation(project))
	}
	return frames, nil
}

// Batch is the output of one read phase.
type Batch[S State] struct {
	Deltas     []Delta[S]
	Elided     int
	RuleErrors int
}

type cellOutput[S State] struct {
	deltas []Delta[S]
	err    error
}

// Collect evaluates every rule at every coordinate of b in parallel and
// returns the deltas in apply order: rule-list order, then row-major
// coordinate order, then emission order. Deltas whose state equals the
// pre-step value of their target cell are elided. b is only read.
//
// Among deltas that change a cell the last one applied wins. A later delta
// that writes back the pre-step value is elided, so it never undoes an
// earlier change to the same cell.
func Collect[S State](b *Board[S], rules []Rule[S], opts Options) (Batch[S], error) {
	coords := b.Coords()
	n := len(coords)
	workers := max(opts.Workers, 1)
	chunk := max(1, (n+workers*4-1)/(workers*4))

	outputs := make([][]cellOutput[S], len(rules))
	var g errgroup.Group
	g.SetLimit(workers)
	for ri, rule := range rules {
		out := make([]cellOutput[S], n)
		outputs[ri] = out
		for start := 0; start < n; start += chunk {
			end := min(start+chunk, n)
			g.Go(func() (err error) {
				i := start
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("automaton: rule %d panicked at %v: %v", ri, coords[i], r)
					}
				}()
				for ; i < end; i++ {
					ds, rerr := rule.Apply(coords[i], b)
					out[i] = cellOutput[S]{deltas: ds, err: rerr}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Batch[S]{}, err
	}

	var batch Batch[S]
	for ri, out := range outputs {
		for i, cell := range out {
			if cell.err != nil {
				batch.RuleErrors++
				opts.Logger.Debug("rule error", "rule", ri, "cell", coords[i], "error", cell.err)
				continue
			}
			for _, d := range cell.deltas {
				if c, ok := b.Resolve(d.X, d.Y); ok && b.At(c) == d.State {
					batch.Elided++
					continue
				}
				batch.Deltas = append(batch.Deltas, d)
			}
		}
	}
	return batch, nil
}

// ApplyDeltas writes deltas to b in order. Deltas rejected by Board.Set are
// logged at debug level and dropped.
func ApplyDeltas[S State](b *Board[S], deltas []Delta[S], logger *log.Logger) (applied, dropped int) {
	for _, d := range deltas {
		if err := d.ApplyTo(b); err != nil {
			dropped++
			if logger != nil {
				logger.Debug("delta dropped", "x", d.X, "y", d.Y, "error", err)
			}
			continue
		}
		applied++
	}
	return applied, dropped
}
