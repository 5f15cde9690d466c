// Package sequence provides wrapping order number generation.
package sequence

// Generator hands out order numbers.
type Generator interface {
	// Next returns the next number and advances the sequence.
	Next() int

	// ResetFrom forces the sequence so that the next call to Next returns n.
	// n is not range-checked.
	ResetFrom(n int)
}

const (
	// DefaultMin is the first number handed out and the value the sequence wraps to.
	DefaultMin = 0
	// DefaultMax is the last number handed out before wrapping.
	DefaultMax = 300
)
