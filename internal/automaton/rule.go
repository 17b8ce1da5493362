package automaton

// Delta is a pending write of State at (X, Y). Deltas are only meaningful for
// the board they were computed from.
type Delta[S State] struct {
	X, Y  int
	State S
}

// NewDelta builds a Delta.
func NewDelta[S State](x, y int, s S) Delta[S] {
	return Delta[S]{X: x, Y: y, State: s}
}

// ApplyTo writes the delta to b through Board.Set.
func (d Delta[S]) ApplyTo(b *Board[S]) error {
	return b.Set(d.X, d.Y, d.State)
}

// Rule computes the writes for one cell from a read-only board snapshot.
//
// Apply runs concurrently for many cells of the same step, so it must not call
// Board.Set or change the rule itself. All intended writes go into the
// returned deltas. An error (usually an *OutOfBoundsError) discards that
// cell's deltas for the step.
//
// When several rules write the same cell, the rule later in the list wins
// unless its delta only restates the cell's pre-step value. Such deltas are
// dropped before any write, so "leave it as it was" never overrides another
// rule's change.
type Rule[S State] interface {
	Apply(c Coord, b *Board[S]) ([]Delta[S], error)
}

// RuleFunc adapts an ordinary function to the Rule interface.
type RuleFunc[S State] func(c Coord, b *Board[S]) ([]Delta[S], error)

// Apply calls f(c, b).
func (f RuleFunc[S]) Apply(c Coord, b *Board[S]) ([]Delta[S], error) {
	return f(c, b)
}
