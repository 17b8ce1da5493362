package automaton

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is matched by every *OutOfBoundsError.
	ErrOutOfBounds = errors.New("automaton: coordinate out of bounds")

	// ErrInvalidBoard is returned when a board is built from an empty or ragged matrix.
	ErrInvalidBoard = errors.New("automaton: invalid board")
)

// OutOfBoundsError reports a coordinate outside a Fixed board.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("automaton: (%d, %d) is outside the %dx%d board", e.X, e.Y, e.Width, e.Height)
}

// Is lets errors.Is(err, ErrOutOfBounds) match.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
