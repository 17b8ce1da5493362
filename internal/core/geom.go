// Package core provides the small shared vocabulary of the automata platform:
// screen buffers, colors, integer helpers and runtime configuration.
// It has no external dependencies so simulation packages stay pure and testable.
package core

// Mod returns the Euclidean remainder of a divided by n, always in [0, n).
// n must be positive.
func Mod(a, n int) int {
	return ((a % n) + n) % n
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
