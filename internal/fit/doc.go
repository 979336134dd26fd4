// Package fit fits an ellipse to 2D edge points that carry gradient directions.
//
// The fit is algebraic: every point contributes one positional equation
// (the conic passes through the point) and three tangential equations (the
// conic's tangent at the point is perpendicular to the measured gradient).
// The stacked system is solved in the least-squares sense as the eigenvector
// of the smallest eigenvalue of its 6×6 Gram matrix.
//
// # Pipeline
//
//  1. Normalization: Conditioner builds a similarity transform T that moves
//     the centroid to the origin and scales the point set to a mean extent
//     of √2.
//  2. Equation assembly: four rows per point over the conic unknowns
//     (a, b, c, d, e, f) of a·x² + b·xy + c·y² + d·x + e·y + f = 0, written
//     into a caller-owned Buffer.
//  3. Solution: eigen-decomposition of the Gram matrix (gonum EigenSym),
//     first eigenvector taken as the conic in normalized coordinates.
//  4. Un-normalization: C = Tᵀ·s·T, expanded in closed form.
//  5. Conversion: FromConic turns the conic matrix into center, semi-axes
//     and orientation.
//
// # Gradients
//
// The gradient of a point is the edge normal, as produced by a Sobel or
// Canny stage. Only its direction matters; magnitude and sign are ignored.
// Points and gradients are index-aligned slices of equal length.
//
// # Buffer Reuse
//
// Assembly needs 24 float64 values per point. A Buffer grows to twice the
// size required by the current call whenever it is too small and never
// shrinks, so a sequence of fits on point sets of similar size allocates
// only a handful of times. A Buffer is not safe for concurrent use; fit
// independent point sets in parallel with independent buffers.
//
// # Degenerate Results
//
// A conic that is not a proper ellipse along one of its rotated axes
// (parabolic or line-like) is reported as the all-zero Ellipse, see
// IsDegenerate. A fitted hyperbola or an imaginary ellipse produces a
// negative semi-axis instead of an error. Neither case is an error; callers
// that need a real ellipse check IsReal.
//
// # Errors
//
// Invalid input is reported with ErrInvalidInput, buffer sizes that cannot
// be represented with ErrOutOfMemory and a failed eigen-decomposition with
// ErrNotConverged. All are matched with errors.Is.
//
// # Tests
//
// Tests in this package compare floating point results with tolerances and
// use testify's require and assert for that, unlike the plain testing
// style of the imaging and server packages.
package fit
