package fit

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// sampleEllipse returns n points spread over the parameter range [t0, t1)
// of the ellipse e, together with the outward normals at those points.
func sampleEllipse(e Ellipse, n int, t0, t1 float64) ([]vec.Vec2, []vec.Vec2) {
	cost := math.Cos(e.Orientation)
	sint := math.Sin(e.Orientation)
	points := make([]vec.Vec2, n)
	normals := make([]vec.Vec2, n)
	for i := 0; i < n; i++ {
		t := t0 + (t1-t0)*float64(i)/float64(n)
		u := e.SemiAxisA * math.Cos(t)
		v := e.SemiAxisB * math.Sin(t)
		points[i] = vec.Vec2{
			X: e.CenterX + u*cost - v*sint,
			Y: e.CenterY + u*sint + v*cost,
		}
		nu := math.Cos(t) / e.SemiAxisA
		nv := math.Sin(t) / e.SemiAxisB
		normals[i] = vec.Vec2{
			X: nu*cost - nv*sint,
			Y: nu*sint + nv*cost,
		}
	}
	return points, normals
}

// conicOf returns the conic matrix u²/A² + v²/B² - 1 = 0 of a real ellipse.
func conicOf(e Ellipse) Mat3 {
	cost := math.Cos(e.Orientation)
	sint := math.Sin(e.Orientation)
	ia := 1 / (e.SemiAxisA * e.SemiAxisA)
	ib := 1 / (e.SemiAxisB * e.SemiAxisB)

	p := cost*cost*ia + sint*sint*ib
	q := 2 * cost * sint * (ia - ib)
	r := sint*sint*ia + cost*cost*ib
	cx, cy := e.CenterX, e.CenterY
	d := -2*p*cx - q*cy
	ee := -2*r*cy - q*cx
	f := p*cx*cx + q*cx*cy + r*cy*cy - 1

	return Mat3{
		p, q / 2, d / 2,
		q / 2, r, ee / 2,
		d / 2, ee / 2, f,
	}
}

// unknownsOf flattens a conic matrix into the (a, b/2, d/2, c, e/2, f)
// order used by the equation rows.
func unknownsOf(c Mat3) [unknowns]float64 {
	return [unknowns]float64{c[0], c[1], c[2], c[4], c[5], c[8]}
}
