package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"seehuhn.de/go/geom/vec"
)

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect performs Canny edge detection on an image.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Low hysteresis threshold (0-255). Typical value: 50.
//   - thresholdHigh: High hysteresis threshold (0-255). Typical value: 150.
//
// Returns:
//   - *EdgeDetectResult: Grayscale edge image as base64 PNG.
//   - error: Non-nil if PNG encoding fails.
//
// # Algorithm
//
//  1. Grayscale conversion and Gaussian blur (bild)
//  2. Sobel gradients, see ComputeGradients
//  3. Non-maximum suppression along the gradient direction
//  4. Hysteresis: pixels above thresholdHigh are kept, pixels between the
//     thresholds are kept only next to a strong pixel
//
// # Threshold Selection
//
// Recommended starting points:
//   - Clean diagrams: thresholdLow=50, thresholdHigh=150
//   - Photographs: thresholdLow=100, thresholdHigh=200
//   - Noisy images: thresholdLow=75, thresholdHigh=175
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	field := ComputeGradients(img, DefaultBlurRadius)
	return EncodeEdges(field, field.Edges(thresholdLow, thresholdHigh))
}

// EncodeEdges renders an edge mask produced by GradientField.Edges as a
// base64 PNG.
func EncodeEdges(field *GradientField, edges []bool) (*EdgeDetectResult, error) {
	result := image.NewGray(image.Rect(0, 0, field.Width, field.Height))
	for i, on := range edges {
		if on {
			result.Pix[(i/field.Width)*result.Stride+i%field.Width] = 255
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	return &EdgeDetectResult{
		Width:       field.Width,
		Height:      field.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EdgePoint is a Canny edge pixel together with its image gradient.
//
// The gradient is normal to the edge, which is what the ellipse fitter
// expects.
type EdgePoint struct {
	X  int     `json:"x"`
	Y  int     `json:"y"`
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
}

// Position returns the pixel position as a vector.
func (p EdgePoint) Position() vec.Vec2 {
	return vec.Vec2{X: float64(p.X), Y: float64(p.Y)}
}

// Gradient returns the gradient as a vector.
func (p EdgePoint) Gradient() vec.Vec2 {
	return vec.Vec2{X: p.GX, Y: p.GY}
}

// EdgePointsResult lists the edge pixels of an image or region.
type EdgePointsResult struct {
	Count  int         `json:"count"`
	Points []EdgePoint `json:"points"`
}

// EdgePoints runs Canny edge detection and returns every edge pixel with
// its gradient, in row-major order.
//
// Parameters:
//   - img: Source image.
//   - thresholdLow, thresholdHigh: Hysteresis thresholds (0-255).
//   - region: Optional area to restrict the output to. Gradients are still
//     computed on the whole image so the region border adds no false edges.
//
// Returns:
//   - *EdgePointsResult: Edge pixels in absolute image coordinates.
//   - error: Non-nil if the region does not overlap the image.
func EdgePoints(img image.Image, thresholdLow, thresholdHigh int, region *Region) (*EdgePointsResult, error) {
	return EdgePointsFromField(ComputeGradients(img, DefaultBlurRadius), thresholdLow, thresholdHigh, region)
}

// EdgePointsFromField is EdgePoints on a precomputed gradient field.
func EdgePointsFromField(field *GradientField, thresholdLow, thresholdHigh int, region *Region) (*EdgePointsResult, error) {
	area := image.Rect(field.Min.X, field.Min.Y, field.Min.X+field.Width, field.Min.Y+field.Height)
	if region != nil {
		r := region.Rect()
		if r.Empty() || !r.Overlaps(area) {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) does not overlap the image", region.X1, region.Y1, region.X2, region.Y2)
		}
		area = area.Intersect(r)
	}

	edges := field.Edges(thresholdLow, thresholdHigh)
	points := make([]EdgePoint, 0)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		ly := y - field.Min.Y
		for x := area.Min.X; x < area.Max.X; x++ {
			lx := x - field.Min.X
			if !edges[ly*field.Width+lx] {
				continue
			}
			gx, gy := field.At(lx, ly)
			points = append(points, EdgePoint{X: x, Y: y, GX: gx, GY: gy})
		}
	}

	return &EdgePointsResult{Count: len(points), Points: points}, nil
}

// Region represents a rectangular region within an image.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Region struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}
