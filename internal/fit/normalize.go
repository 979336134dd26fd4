package fit

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Conditioner returns the normalization transform of a point set.
//
// The transform is a similarity without rotation: it moves the centroid of
// the points to the origin and applies one uniform scale so that the points
// have a mean extent of √2.
//
// The scale is √2 divided by the average of the per-axis root-sum-square
// deviations from the centroid, not a true isotropic RMS radius. Fitted
// results depend on this exact conditioning, so it is kept as is.
//
// Returns ErrInvalidInput when points is empty or all points coincide.
func Conditioner(points []vec.Vec2) (Mat3, error) {
	if len(points) == 0 {
		return Mat3{}, fmt.Errorf("conditioner: empty point set: %w", ErrInvalidInput)
	}

	var mx, my float64
	for _, p := range points {
		mx += p.X
		my += p.Y
	}
	n := float64(len(points))
	mx /= n
	my /= n

	var valx, valy float64
	for _, p := range points {
		valx += (p.X - mx) * (p.X - mx)
		valy += (p.Y - my) * (p.Y - my)
	}
	qmean := (math.Sqrt(valx) + math.Sqrt(valy)) / 2
	if qmean == 0 {
		return Mat3{}, fmt.Errorf("conditioner: all %d points coincide: %w", len(points), ErrInvalidInput)
	}

	s := math.Sqrt2 / qmean
	return Mat3{
		s, 0, -s * mx,
		0, s, -s * my,
		0, 0, 1,
	}, nil
}
