package fit

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// degenerateTolerance is the relative size below which a rotated quadratic
// coefficient counts as zero. Coefficients produced by an eigensolver are
// never exactly zero, so FromConic compares against the larger of the two.
const degenerateTolerance = 1e-10

// Ellipse holds the geometric parameters of a fitted ellipse.
//
// The zero value is the degenerate sentinel: FromConic returns it when the
// conic is not a proper ellipse along one of its rotated axes. A negative
// semi-axis marks an axis whose squared length came out negative.
type Ellipse struct {
	// CenterX is the horizontal position of the center.
	CenterX float64 `json:"center_x"`

	// CenterY is the vertical position of the center.
	CenterY float64 `json:"center_y"`

	// SemiAxisA is the semi-axis along the rotated u axis.
	SemiAxisA float64 `json:"semi_axis_a"`

	// SemiAxisB is the semi-axis along the rotated v axis.
	SemiAxisB float64 `json:"semi_axis_b"`

	// Orientation is the angle of the u axis in radians, measured from the
	// positive x axis towards the positive y axis.
	Orientation float64 `json:"orientation"`
}

// FromConic converts a symmetric conic matrix
//
//	[ a    b/2  d/2 ]
//	[ b/2  c    e/2 ]
//	[ d/2  e/2  f   ]
//
// of a·x² + b·xy + c·y² + d·x + e·y + f = 0 into geometric parameters.
//
// The conic is rotated by θ = ½·atan2(b, a−c) to remove the cross term. If
// either rotated quadratic coefficient vanishes the result is the all-zero
// Ellipse. Otherwise the center follows from completing the square and the
// semi-axes are signed square roots of the squared radii: a negative squared
// radius gives a negative semi-axis. No other validity check is made.
//
// A rotated coefficient counts as vanishing when it is at most 1e-10 times
// the larger of the two, not only when it is exactly zero. Nearly
// parabolic conics therefore come back as the all-zero Ellipse rather than
// as an ellipse with huge semi-axes.
func FromConic(m Mat3) Ellipse {
	a := m[0]
	b := 2 * m[1]
	c := m[4]
	d := 2 * m[2]
	e := 2 * m[5]
	f := m[8]

	theta := 0.5 * math.Atan2(b, a-c)
	cost := math.Cos(theta)
	sint := math.Sin(theta)
	cos2 := cost * cost
	sin2 := sint * sint
	cossin := sint * cost

	ao := f
	au := d*cost + e*sint
	av := -d*sint + e*cost
	auu := a*cos2 + c*sin2 + b*cossin
	avv := a*sin2 + c*cos2 - b*cossin

	scale := math.Max(math.Abs(auu), math.Abs(avv))
	if math.Abs(auu) <= degenerateTolerance*scale || math.Abs(avv) <= degenerateTolerance*scale {
		return Ellipse{}
	}

	tu := -au / (2 * auu)
	tv := -av / (2 * avv)
	w := ao - auu*tu*tu - avv*tv*tv

	return Ellipse{
		CenterX:     tu*cost - tv*sint,
		CenterY:     tu*sint + tv*cost,
		SemiAxisA:   signedSqrt(-w / auu),
		SemiAxisB:   signedSqrt(-w / avv),
		Orientation: theta,
	}
}

// signedSqrt returns √x for positive x and -√(-x) otherwise.
func signedSqrt(x float64) float64 {
	if x > 0 {
		return math.Sqrt(x)
	}
	return -math.Sqrt(-x)
}

// IsDegenerate reports whether e is the all-zero sentinel.
func (e Ellipse) IsDegenerate() bool {
	return e == Ellipse{}
}

// IsReal reports whether both semi-axes are positive and finite.
func (e Ellipse) IsReal() bool {
	return e.SemiAxisA > 0 && e.SemiAxisB > 0 &&
		!math.IsInf(e.SemiAxisA, 0) && !math.IsInf(e.SemiAxisB, 0)
}

// Params returns the parameters in the order center x, center y,
// semi-axis a, semi-axis b, orientation.
func (e Ellipse) Params() [5]float64 {
	return [5]float64{e.CenterX, e.CenterY, e.SemiAxisA, e.SemiAxisB, e.Orientation}
}

// Center returns the center as a vector.
func (e Ellipse) Center() vec.Vec2 {
	return vec.Vec2{X: e.CenterX, Y: e.CenterY}
}

// Canonical returns the same ellipse with |SemiAxisA| ≥ |SemiAxisB| and the
// orientation in (-π/2, π/2].
//
// The eigenvector behind a fit is only defined up to sign, and a flipped
// sign swaps the two axes and turns the orientation by π/2. Canonical
// removes that ambiguity. The sentinel is returned unchanged.
func (e Ellipse) Canonical() Ellipse {
	if e.IsDegenerate() {
		return e
	}
	if math.Abs(e.SemiAxisA) < math.Abs(e.SemiAxisB) {
		e.SemiAxisA, e.SemiAxisB = e.SemiAxisB, e.SemiAxisA
		e.Orientation += math.Pi / 2
	}
	e.Orientation = math.Mod(e.Orientation, math.Pi)
	if e.Orientation <= -math.Pi/2 {
		e.Orientation += math.Pi
	} else if e.Orientation > math.Pi/2 {
		e.Orientation -= math.Pi
	}
	return e
}

// Transform maps the ellipse through the affine matrix m, which must be a
// similarity: uniform scale, rotation, translation and optionally a
// reflection. A reflecting m (negative determinant) mirrors the
// orientation. The result is meaningless for non-uniform scaling or shear,
// which do not map the semi-axes onto semi-axes.
//
// m uses the [a b c d e f] layout of seehuhn.de/go/geom/matrix, mapping
// (x, y) to (a·x + c·y + e, b·x + d·y + f).
func (e Ellipse) Transform(m matrix.Matrix) Ellipse {
	if e.IsDegenerate() {
		return e
	}
	det := m[0]*m[3] - m[1]*m[2]
	k := math.Sqrt(math.Abs(det))
	phi := math.Atan2(m[1], m[0])
	orientation := e.Orientation + phi
	if det < 0 {
		orientation = phi - e.Orientation
	}
	return Ellipse{
		CenterX:     m[0]*e.CenterX + m[2]*e.CenterY + m[4],
		CenterY:     m[1]*e.CenterX + m[3]*e.CenterY + m[5],
		SemiAxisA:   k * e.SemiAxisA,
		SemiAxisB:   k * e.SemiAxisB,
		Orientation: orientation,
	}
}

// Distance approximates the Euclidean distance from p to the outline of a
// real ellipse.
//
// The point is moved into the ellipse frame and compared with the outline
// point on the same ray from the center. The error is zero on the outline
// and on the axes and grows with eccentricity away from them, which is good
// enough for inlier counting. Non-real ellipses return +Inf.
func (e Ellipse) Distance(p vec.Vec2) float64 {
	if !e.IsReal() {
		return math.Inf(1)
	}
	cost := math.Cos(e.Orientation)
	sint := math.Sin(e.Orientation)
	dx := p.X - e.CenterX
	dy := p.Y - e.CenterY
	u := dx*cost + dy*sint
	v := -dx*sint + dy*cost

	r := math.Hypot(u, v)
	if r == 0 {
		return math.Min(e.SemiAxisA, e.SemiAxisB)
	}
	k := math.Hypot(u/e.SemiAxisA, v/e.SemiAxisB)
	return math.Abs(r - r/k)
}

// Bounds returns the axis-aligned bounding box of a real ellipse as
// minimum and maximum corners.
func (e Ellipse) Bounds() (vec.Vec2, vec.Vec2) {
	cost := math.Cos(e.Orientation)
	sint := math.Sin(e.Orientation)
	a := math.Abs(e.SemiAxisA)
	b := math.Abs(e.SemiAxisB)
	hw := math.Hypot(a*cost, b*sint)
	hh := math.Hypot(a*sint, b*cost)
	return vec.Vec2{X: e.CenterX - hw, Y: e.CenterY - hh},
		vec.Vec2{X: e.CenterX + hw, Y: e.CenterY + hh}
}
