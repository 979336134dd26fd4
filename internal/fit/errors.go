package fit

import "errors"

var (
	// ErrInvalidInput reports missing, mismatched or too few samples.
	ErrInvalidInput = errors.New("fit: invalid input")

	// ErrOutOfMemory reports an equation buffer size that cannot be allocated.
	ErrOutOfMemory = errors.New("fit: not enough memory")

	// ErrNotConverged reports a failed eigen-decomposition of the normal equations.
	ErrNotConverged = errors.New("fit: eigen-decomposition did not converge")
)
