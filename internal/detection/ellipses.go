package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/ironsheep/ellipse-tools-mcp/internal/fit"
	imgutil "github.com/ironsheep/ellipse-tools-mcp/internal/imaging"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner and (X2, Y2) the bottom-right corner,
// both inclusive.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Options controls DetectEllipses. Zero values select the defaults listed
// with each field.
type Options struct {
	// ThresholdLow and ThresholdHigh are the Canny hysteresis thresholds
	// (0-255). Defaults: 50 and 150.
	ThresholdLow  int
	ThresholdHigh int

	// MinPoints is the smallest contour that is fitted. Default: 20.
	MinPoints int

	// MinAxis and MaxAxis bound both semi-axes in image pixels. MaxAxis
	// zero means unbounded. Default MinAxis: 3.
	MinAxis float64
	MaxAxis float64

	// Tolerance is the distance in pixels of the analyzed image within which
	// a contour point counts as an inlier. Default: 1.5.
	Tolerance float64

	// MinConfidence is the smallest inlier fraction that is reported.
	// Default: 0.8.
	MinConfidence float64

	// Region restricts detection to part of the image.
	Region *imgutil.Region

	// Scale downsamples the image (or region) before edge detection.
	// Values in (0, 1); 0 or 1 disables scaling.
	Scale float64
}

// DefaultOptions returns the options used for zero fields.
func DefaultOptions() Options {
	return Options{
		ThresholdLow:  50,
		ThresholdHigh: 150,
		MinPoints:     20,
		MinAxis:       3,
		Tolerance:     1.5,
		MinConfidence: 0.8,
		Scale:         1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ThresholdLow <= 0 {
		o.ThresholdLow = d.ThresholdLow
	}
	if o.ThresholdHigh <= 0 {
		o.ThresholdHigh = d.ThresholdHigh
	}
	if o.MinPoints <= 0 {
		o.MinPoints = d.MinPoints
	}
	if o.MinPoints < fit.MinSamples {
		o.MinPoints = fit.MinSamples
	}
	if o.MinAxis <= 0 {
		o.MinAxis = d.MinAxis
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = d.MinConfidence
	}
	if o.Scale == 0 {
		o.Scale = d.Scale
	}
	return o
}

func (o Options) validate() error {
	if o.Scale < 0 || o.Scale > 1 || math.IsNaN(o.Scale) {
		return fmt.Errorf("scale %v outside (0, 1]", o.Scale)
	}
	if o.MaxAxis < 0 || (o.MaxAxis > 0 && o.MaxAxis < o.MinAxis) {
		return fmt.Errorf("max axis %v smaller than min axis %v", o.MaxAxis, o.MinAxis)
	}
	if o.ThresholdLow > o.ThresholdHigh {
		return fmt.Errorf("threshold low %d above threshold high %d", o.ThresholdLow, o.ThresholdHigh)
	}
	return nil
}

// Ellipse is a detected ellipse with metadata.
type Ellipse struct {
	fit.Ellipse

	// Bounds is the axis-aligned bounding box of the outline.
	Bounds Bounds `json:"bounds"`

	// Points is the number of edge pixels in the fitted contour.
	Points int `json:"points"`

	// Confidence is the fraction of contour points within Tolerance of the
	// fitted outline (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Coverage is the fraction of 10° sectors around the center that hold
	// at least one inlier. A closed outline scores 1.0, a half arc 0.5.
	Coverage float64 `json:"coverage"`

	// FillColor is the mean color inside the ellipse as "#RRGGBB".
	FillColor string `json:"fill_color,omitempty"`
}

// EllipsesResult contains all ellipses detected in an image.
type EllipsesResult struct {
	// Ellipses is sorted by confidence, highest first.
	Ellipses []Ellipse `json:"ellipses"`

	// Count is the number of ellipses detected.
	Count int `json:"count"`

	// Contours is the number of contours that were fitted.
	Contours int `json:"contours"`

	// BufferCapacity is the final size of the shared fitting buffer in
	// float64 elements.
	BufferCapacity int `json:"buffer_capacity"`
}

// coverageSectors is the number of angular sectors used for Coverage.
const coverageSectors = 36

// DetectEllipses finds elliptical outlines in an image by fitting an
// ellipse to every edge contour.
//
// Parameters:
//   - img: Source image to analyze.
//   - opts: Detection options; zero fields use DefaultOptions.
//
// Returns:
//   - *EllipsesResult: Detected ellipses in image coordinates, sorted by
//     confidence (highest first).
//   - error: Non-nil for invalid options or a region outside the image.
//
// # Algorithm
//
//  1. Crop to Region and downscale by Scale (disintegration/imaging)
//  2. Canny edge pixels with their gradients
//  3. Contour Finding: 8-connected flood fill over edge pixels
//  4. Fitting: one fit.Fit per contour, all sharing one fit.Buffer
//  5. Scoring: inlier fraction and angular coverage of the contour
//  6. Filtering: drop failed, degenerate, non-real and out-of-range fits
//  7. Mapping back to image coordinates with an affine matrix
//  8. Duplicate Removal: the inner and outer edge of a drawn outline give
//     two nearly identical ellipses; only the more confident one is kept
//
// # Limitations
//
//   - Touching or overlapping shapes share one contour and fit poorly
//   - Fitting does not reject outliers, so each contour should hold a
//     single shape
func DetectEllipses(img image.Image, opts Options) (*EllipsesResult, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	work := img
	origin := img.Bounds().Min
	if opts.Region != nil {
		r := opts.Region.Rect().Intersect(img.Bounds())
		if r.Empty() {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) does not overlap the image",
				opts.Region.X1, opts.Region.Y1, opts.Region.X2, opts.Region.Y2)
		}
		work = imaging.Crop(img, r)
		origin = r.Min
	}

	// toImage maps pixel centers of the analyzed image to the source
	scale := 1.0
	if opts.Scale < 1 {
		w := work.Bounds().Dx()
		h := work.Bounds().Dy()
		nw := max(1, int(math.Round(float64(w)*opts.Scale)))
		nh := max(1, int(math.Round(float64(h)*opts.Scale)))
		work = imaging.Resize(work, nw, nh, imaging.Linear)
		scale = float64(nw) / float64(w)
	}
	shift := 0.5/scale - 0.5
	toImage := matrix.Matrix{
		1 / scale, 0,
		0, 1 / scale,
		float64(origin.X) + shift, float64(origin.Y) + shift,
	}

	field := imgutil.ComputeGradients(work, imgutil.DefaultBlurRadius)
	edges := field.Edges(opts.ThresholdLow, opts.ThresholdHigh)
	contours := findContours(edges, field.Width, field.Height, opts.MinPoints)

	buf := fit.NewBuffer(1)
	found := make([]Ellipse, 0)

	var points, gradients []vec.Vec2
	for _, contour := range contours {
		points = points[:0]
		gradients = gradients[:0]
		for _, p := range contour {
			gx, gy := field.At(p.X, p.Y)
			points = append(points, vec.Vec2{X: float64(p.X), Y: float64(p.Y)})
			gradients = append(gradients, vec.Vec2{X: gx, Y: gy})
		}

		e, err := fit.Fit(points, gradients, buf)
		if err != nil {
			if errors.Is(err, fit.ErrInvalidInput) || errors.Is(err, fit.ErrNotConverged) {
				continue
			}
			return nil, err
		}
		if e.IsDegenerate() || !e.IsReal() {
			continue
		}

		confidence, coverage := score(e, points, opts.Tolerance)
		if confidence < opts.MinConfidence {
			continue
		}

		e = e.Transform(toImage).Canonical()
		if e.SemiAxisB < opts.MinAxis || (opts.MaxAxis > 0 && e.SemiAxisA > opts.MaxAxis) {
			continue
		}

		found = append(found, Ellipse{
			Ellipse:    e,
			Bounds:     boundsOf(e),
			Points:     len(contour),
			Confidence: confidence,
			Coverage:   coverage,
			FillColor:  fillColor(img, e),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	filtered := filterDuplicateEllipses(found, opts.Tolerance/scale)

	return &EllipsesResult{
		Ellipses:       filtered,
		Count:          len(filtered),
		Contours:       len(contours),
		BufferCapacity: buf.Cap(),
	}, nil
}

// score returns the inlier fraction of points and the fraction of angular
// sectors around the center that contain an inlier.
func score(e fit.Ellipse, points []vec.Vec2, tolerance float64) (confidence, coverage float64) {
	var sectors [coverageSectors]bool
	inliers := 0
	for _, p := range points {
		if e.Distance(p) > tolerance {
			continue
		}
		inliers++
		angle := math.Atan2(p.Y-e.CenterY, p.X-e.CenterX)
		k := int((angle + math.Pi) / (2 * math.Pi) * coverageSectors)
		sectors[min(k, coverageSectors-1)] = true
	}

	hit := 0
	for _, s := range sectors {
		if s {
			hit++
		}
	}
	return float64(inliers) / float64(len(points)), float64(hit) / coverageSectors
}

// boundsOf returns the integer bounding box of a real ellipse.
func boundsOf(e fit.Ellipse) Bounds {
	lo, hi := e.Bounds()
	return Bounds{
		X1: int(math.Floor(lo.X)),
		Y1: int(math.Floor(lo.Y)),
		X2: int(math.Ceil(hi.X)),
		Y2: int(math.Ceil(hi.Y)),
	}
}

// fillColor averages the center and eight points halfway to the outline.
func fillColor(img image.Image, e fit.Ellipse) string {
	cost := math.Cos(e.Orientation)
	sint := math.Sin(e.Orientation)
	samples := make([]image.Point, 0, 9)
	samples = append(samples, image.Point{X: int(math.Round(e.CenterX)), Y: int(math.Round(e.CenterY))})
	for k := 0; k < 8; k++ {
		t := float64(k) * math.Pi / 4
		u := 0.5 * e.SemiAxisA * math.Cos(t)
		v := 0.5 * e.SemiAxisB * math.Sin(t)
		samples = append(samples, image.Point{
			X: int(math.Round(e.CenterX + u*cost - v*sint)),
			Y: int(math.Round(e.CenterY + u*sint + v*cost)),
		})
	}

	c, err := imgutil.MeanColor(img, samples)
	if err != nil {
		return ""
	}
	return c.Hex
}

// findContours finds connected components (contours) in a row-major edge
// mask.
//
// Uses flood-fill to group connected edge pixels into contours.
// Connectivity is 8-connected (includes diagonals). Contours smaller than
// minSize pixels are discarded as noise.
func findContours(edges []bool, width, height, minSize int) [][]Point {
	visited := make([]bool, width*height)
	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y*width+x] && !visited[y*width+x] {
				contour := floodFill(edges, visited, x, y, width, height)
				if len(contour) >= minSize {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill collects the 8-connected edge pixels reachable from a start
// pixel, marking them visited.
//
// Uses an explicit stack to avoid deep recursion on large contours.
func floodFill(edges, visited []bool, startX, startY, width, height int) []Point {
	var contour []Point
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if visited[i] || !edges[i] {
			continue
		}

		visited[i] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return contour
}

// filterDuplicateEllipses removes ellipses that repeat an earlier one.
//
// Two ellipses are duplicates when their centers are closer than 2·tol
// pixels plus a tenth of the smaller semi-axis, and both semi-axes differ
// by less than that distance as well. The input must be sorted so that
// the preferred ellipse comes first.
func filterDuplicateEllipses(ellipses []Ellipse, tol float64) []Ellipse {
	filtered := make([]Ellipse, 0, len(ellipses))
	for _, c := range ellipses {
		isDuplicate := false
		for _, f := range filtered {
			limit := 2*tol + 0.1*math.Min(c.SemiAxisB, f.SemiAxisB)
			dist := math.Hypot(c.CenterX-f.CenterX, c.CenterY-f.CenterY)
			if dist < limit &&
				math.Abs(c.SemiAxisA-f.SemiAxisA) < limit &&
				math.Abs(c.SemiAxisB-f.SemiAxisB) < limit {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
