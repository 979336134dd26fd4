package fit

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"
)

// MinSamples is the smallest point count Fit accepts: two points give eight
// equations for the six conic unknowns.
const MinSamples = 2

// Fit fits an ellipse to points with gradient directions.
//
// Parameters:
//   - points: Edge point positions.
//   - gradients: Edge normals at each point, index-aligned with points.
//     Only the direction is used.
//   - buf: Caller-owned scratch buffer, grown in place when undersized.
//     Pass the same Buffer to consecutive calls to avoid reallocation.
//
// Returns:
//   - Ellipse: The fitted ellipse, or the all-zero sentinel when the best
//     conic is not a proper ellipse. A negative semi-axis marks a conic
//     that is not a real ellipse.
//   - error: ErrInvalidInput for fewer than MinSamples points, mismatched
//     lengths, coincident points or a nil buffer; ErrOutOfMemory when the
//     buffer cannot grow; ErrNotConverged when the eigen-decomposition fails.
//
// Fit does not reject outliers. The work is linear in the number of points.
func Fit(points, gradients []vec.Vec2, buf *Buffer) (Ellipse, error) {
	n := len(points)
	if n < MinSamples {
		return Ellipse{}, fmt.Errorf("fit: %d points, need at least %d: %w", n, MinSamples, ErrInvalidInput)
	}
	if len(gradients) != n {
		return Ellipse{}, fmt.Errorf("fit: %d points but %d gradients: %w", n, len(gradients), ErrInvalidInput)
	}
	if buf == nil {
		return Ellipse{}, fmt.Errorf("fit: nil buffer: %w", ErrInvalidInput)
	}

	if err := buf.Reserve(n); err != nil {
		return Ellipse{}, err
	}

	t, err := Conditioner(points)
	if err != nil {
		return Ellipse{}, err
	}

	eq := buf.rows(n)
	if err := assembleEquations(points, gradients, t, eq); err != nil {
		return Ellipse{}, err
	}

	s, err := solveConic(eq)
	if err != nil {
		return Ellipse{}, err
	}

	return FromConic(denormalize(s, t)), nil
}

// solveConic returns the conic, in normalized coordinates, that minimizes
// ‖B·x‖ subject to ‖x‖ = 1 for the stacked equation rows B.
//
// The minimizer is the eigenvector of BᵀB with the smallest eigenvalue.
// EigenSym returns eigenvalues in ascending order with eigenvectors in the
// matching columns, so column zero is the solution.
func solveConic(eq []float64) (Mat3, error) {
	var gram [unknowns * unknowns]float64
	rows := len(eq) / unknowns
	for i := 0; i < unknowns; i++ {
		for j := i; j < unknowns; j++ {
			var sum float64
			for k := 0; k < rows; k++ {
				sum += eq[k*unknowns+i] * eq[k*unknowns+j]
			}
			gram[i*unknowns+j] = sum
			gram[j*unknowns+i] = sum
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(unknowns, gram[:]), true); !ok {
		return Mat3{}, fmt.Errorf("solve conic: %w", ErrNotConverged)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	x0 := vectors.At(0, 0)
	x1 := vectors.At(1, 0)
	x2 := vectors.At(2, 0)
	x3 := vectors.At(3, 0)
	x4 := vectors.At(4, 0)
	x5 := vectors.At(5, 0)

	return Mat3{
		x0, x1, x2,
		x1, x3, x4,
		x2, x4, x5,
	}, nil
}

// denormalize returns Tᵀ·s·T, moving the conic s from normalized back to
// original coordinates. The product is expanded for the fixed layout of a
// normalization transform, whose last row is (0, 0, 1).
func denormalize(s, t Mat3) Mat3 {
	var c Mat3
	c[0] = t[0]*t[0]*s[0] + t[0]*t[3]*s[3] +
		t[0]*t[3]*s[1] + t[3]*t[3]*s[4]
	c[1] = t[0]*t[1]*s[0] + t[1]*t[3]*s[3] +
		t[0]*t[4]*s[1] + t[3]*t[4]*s[4]
	c[2] = t[0]*t[2]*s[0] + t[2]*t[3]*s[3] +
		t[0]*t[5]*s[1] + t[3]*t[5]*s[4] + t[0]*s[2] + t[3]*s[5]

	c[3] = t[0]*t[1]*s[0] + t[0]*t[4]*s[3] +
		t[1]*t[3]*s[1] + t[3]*t[4]*s[4]
	c[4] = t[1]*t[1]*s[0] + t[1]*t[4]*s[3] +
		t[1]*t[4]*s[1] + t[4]*t[4]*s[4]
	c[5] = t[1]*t[2]*s[0] + t[2]*t[4]*s[3] +
		t[1]*t[5]*s[1] + t[4]*t[5]*s[4] + t[1]*s[2] + t[4]*s[5]

	c[6] = t[0]*t[2]*s[0] + t[0]*t[5]*s[3] +
		t[0]*s[6] + t[2]*t[3]*s[1] + t[3]*t[5]*s[4] + t[3]*s[7]
	c[7] = t[1]*t[2]*s[0] + t[1]*t[5]*s[3] +
		t[1]*s[6] + t[2]*t[4]*s[1] + t[4]*t[5]*s[4] + t[4]*s[7]
	c[8] = t[2]*t[2]*s[0] + t[2]*t[5]*s[3] + t[2]*s[6] +
		t[2]*t[5]*s[1] + t[5]*t[5]*s[4] + t[5]*s[7] + t[2]*s[2] +
		t[5]*s[5] + s[8]
	return c
}
