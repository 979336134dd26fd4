package fit

import (
	"fmt"

	"seehuhn.de/go/geom/vec"
)

// assembleEquations writes four equation rows per point into eq, which must
// hold at least 24·len(points) values.
//
// Each point p is taken to normalized homogeneous coordinates with t. Its
// gradient is rotated by 90° into the tangent direction and mapped through
// the linear part of t only. The tangent line l = p × d then gives three
// tangential rows, -(kron(p, antisym(l)))ᵀ·J, which vanish when the polar
// line C·p coincides with l. The fourth row is the incidence constraint
// pᵀ·C·p = 0.
func assembleEquations(points, gradients []vec.Vec2, t Mat3, eq []float64) error {
	n := len(points)
	if n == 0 {
		return fmt.Errorf("assemble equations: empty point set: %w", ErrInvalidInput)
	}
	if len(gradients) != n {
		return fmt.Errorf("assemble equations: %d points but %d gradients: %w", n, len(gradients), ErrInvalidInput)
	}
	if len(eq) < n*sampleStride {
		return fmt.Errorf("assemble equations: buffer holds %d values, need %d: %w", len(eq), n*sampleStride, ErrInvalidInput)
	}

	for i, p := range points {
		g := gradients[i]
		row := eq[i*sampleStride : (i+1)*sampleStride]

		px := t[0]*p.X + t[1]*p.Y + t[2]
		py := t[3]*p.X + t[4]*p.Y + t[5]

		dx := -t[0]*g.Y + t[1]*g.X
		dy := -t[3]*g.Y + t[4]*g.X

		line := Vec3{px, py, 1}.Cross(Vec3{dx, dy, 0})
		a := Antisym(line)

		// One row per column of antisym(l).
		for r := 0; r < 3; r++ {
			c0, c1, c2 := a[r], a[3+r], a[6+r]
			eqr := row[r*unknowns : (r+1)*unknowns]
			eqr[0] = -(c0 * px)
			eqr[1] = -(c1*px + c0*py)
			eqr[2] = -(c2*px + c0)
			eqr[3] = -(c1 * py)
			eqr[4] = -(c2*py + c1)
			eqr[5] = -c2
		}

		pos := row[3*unknowns:]
		pos[0] = px * px
		pos[1] = 2 * px * py
		pos[2] = 2 * px
		pos[3] = py * py
		pos[4] = 2 * py
		pos[5] = 1
	}
	return nil
}
