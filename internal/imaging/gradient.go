package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// DefaultBlurRadius is the Gaussian radius applied before gradient
// computation. With bild's kernel it corresponds to a standard deviation
// of about 1.4 pixels.
const DefaultBlurRadius = 1.0

// GradientField holds the smoothed Sobel gradient of an image.
//
// All slices are row-major with Width*Height entries and use local
// coordinates: index y*Width+x refers to image pixel (Min.X+x, Min.Y+y).
// Intensities are normalized to [0, 1] before differentiation, so a hard
// black/white step yields magnitudes of roughly 1 to 4.
type GradientField struct {
	Width  int
	Height int

	// Min is the top-left corner of the source image bounds.
	Min image.Point

	GX        []float64
	GY        []float64
	Magnitude []float64
}

// ComputeGradients converts img to grayscale, blurs it and applies the
// 3x3 Sobel operators.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - radius: Gaussian blur radius passed to bild. Zero or negative disables
//     blurring.
//
// Border pixels use clamped (replicated) neighbors.
func ComputeGradients(img image.Image, radius float64) *GradientField {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	smooth := make([]float64, width*height)
	if width == 0 || height == 0 {
		return &GradientField{Min: bounds.Min}
	}

	gray := effect.Grayscale(img)
	// Re-anchor at the origin; Pix already starts at the first pixel
	gray.Rect = image.Rect(0, 0, width, height)

	if radius > 0 {
		blurred := blur.Gaussian(gray, radius)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				// Gray input gives R == G == B
				smooth[y*width+x] = float64(blurred.Pix[y*blurred.Stride+x*4]) / 255.0
			}
		}
	} else {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				smooth[y*width+x] = float64(gray.Pix[y*gray.Stride+x]) / 255.0
			}
		}
	}

	f := &GradientField{
		Width:     width,
		Height:    height,
		Min:       bounds.Min,
		GX:        make([]float64, width*height),
		GY:        make([]float64, width*height),
		Magnitude: make([]float64, width*height),
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := smooth[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			f.GX[i] = gx
			f.GY[i] = gy
			f.Magnitude[i] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return f
}

// At returns the gradient at local coordinates (x, y).
func (f *GradientField) At(x, y int) (gx, gy float64) {
	i := y*f.Width + x
	return f.GX[i], f.GY[i]
}

// Edges runs Canny non-maximum suppression and hysteresis on the field and
// returns a row-major edge mask in local coordinates.
//
// Thresholds are given on the 0-255 scale and divided by 255 to match the
// normalized magnitudes. Pixels at or above high are strong edges; pixels
// between low and high are kept only if one of their 8 neighbors is strong.
// Border pixels are never edges.
func (f *GradientField) Edges(low, high int) []bool {
	width, height := f.Width, f.Height
	suppressed := make([]float64, width*height)

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := f.Magnitude[i]
			if mag == 0 {
				continue
			}
			angle := math.Atan2(f.GY[i], f.GX[i])

			// Compare against the two neighbors along the gradient direction
			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = f.Magnitude[i-1]
				n2 = f.Magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = f.Magnitude[i-width-1]
				n2 = f.Magnitude[i+width+1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = f.Magnitude[i-width]
				n2 = f.Magnitude[i+width]
			default:
				n1 = f.Magnitude[i-width+1]
				n2 = f.Magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	lowThresh := float64(low) / 255.0
	highThresh := float64(high) / 255.0
	edges := make([]bool, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y*width+x]
			if val >= highThresh {
				edges[y*width+x] = true
				continue
			}
			if val < lowThresh || val == 0 {
				continue
			}
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					if suppressed[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)] >= highThresh {
						edges[y*width+x] = true
					}
				}
			}
		}
	}
	return edges
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
