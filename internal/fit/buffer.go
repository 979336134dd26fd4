package fit

import (
	"fmt"
	"math"
)

const (
	// unknowns is the number of conic coefficients (a, b, c, d, e, f).
	unknowns = 6

	// rowsPerSample is the number of equations a point contributes:
	// three tangential and one positional.
	rowsPerSample = 4

	// sampleStride is the number of buffer elements one point occupies.
	sampleStride = rowsPerSample * unknowns
)

// maxBufferBytes caps the size of a grown buffer. Larger requests fail with
// ErrOutOfMemory instead of reaching the allocator, which panics on lengths
// beyond the address space.
const maxBufferBytes = min(1<<40, math.MaxInt)

// maxSamples is the largest point count whose grown buffer fits in
// maxBufferBytes.
const maxSamples = maxBufferBytes / (8 * 2 * sampleStride)

// Buffer is the scratch space for equation coefficients.
//
// The caller owns a Buffer and passes it to every Fit call of a session; Fit
// grows it in place when it is too small. Capacity is counted in float64
// elements, 24 per point. A Buffer never shrinks and its old contents are
// always overwritten before use.
//
// A Buffer must not be used by more than one goroutine at a time.
type Buffer struct {
	data []float64
}

// NewBuffer returns a Buffer with room for capacity float64 values.
// A non-positive capacity yields a one-element buffer.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{data: make([]float64, capacity)}
}

// Cap returns the tracked capacity in float64 elements.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Reserve makes room for the equations of n points.
//
// When the current capacity is below 24·n, the buffer is reallocated to
// exactly twice that size, 48·n elements, so that a following call with a
// slightly larger point set does not allocate again. Otherwise it is left
// untouched.
//
// Returns ErrInvalidInput for n < 1 and ErrOutOfMemory when the grown size
// would exceed 1 TiB (or the int range on 32-bit platforms).
func (b *Buffer) Reserve(n int) error {
	if n < 1 {
		return fmt.Errorf("reserve: invalid point count %d: %w", n, ErrInvalidInput)
	}
	if n > maxSamples {
		return fmt.Errorf("reserve: %d points: %w", n, ErrOutOfMemory)
	}

	required := n * sampleStride
	if required > len(b.data) {
		b.data = make([]float64, 2*required)
	}
	return nil
}

// rows returns the first n·4 equation rows as a flat slice of n·24 values.
func (b *Buffer) rows(n int) []float64 {
	return b.data[:n*sampleStride]
}
