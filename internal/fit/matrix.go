package fit

import "seehuhn.de/go/geom/vec"

// Vec3 is a 3-vector, typically a 2D point or line in homogeneous coordinates.
type Vec3 [3]float64

// Cross returns the cross product u × v.
func (u Vec3) Cross(v Vec3) Vec3 {
	return Vec3{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}

// Mat3 is a 3×3 matrix stored in row-major order.
//
// The fixed size keeps the normalization transform and the conic on the
// stack and lets the hot paths use closed-form expansions.
type Mat3 [9]float64

// Identity3 is the 3×3 identity matrix.
var Identity3 = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Apply maps the 2D point p through the affine part of m.
func (m Mat3) Apply(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// Antisym returns the antisymmetric matrix A of u, so that A·v = u × v for
// every v:
//
//	[  0   -u2   u1 ]
//	[  u2   0   -u0 ]
//	[ -u1   u0   0  ]
func Antisym(u Vec3) Mat3 {
	return Mat3{
		0, -u[2], u[1],
		u[2], 0, -u[0],
		-u[1], u[0], 0,
	}
}
