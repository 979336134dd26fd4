package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// decodeEdges decodes an EdgeDetect result and returns the edge pixels.
func decodeEdges(t *testing.T, result *EdgeDetectResult) (image.Image, []image.Point) {
	t.Helper()

	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != result.Width || img.Bounds().Dy() != result.Height {
		t.Errorf("decoded image is %v, result says %dx%d", img.Bounds(), result.Width, result.Height)
	}

	var on []image.Point
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				on = append(on, image.Pt(x, y))
			}
		}
	}
	return img, on
}

func createStepImage(width, height, stepX int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < stepX {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestEdgeDetect(t *testing.T) {
	tests := []struct {
		name      string
		img       image.Image
		wantEdges bool
		// every edge pixel must satisfy near, when set
		near func(p image.Point) bool
	}{
		{
			name:      "rectangle",
			img:       createEdgeTestImage(100, 100),
			wantEdges: true,
			near: func(p image.Point) bool {
				return (p.X >= 22 && p.X <= 77) && (p.Y >= 22 && p.Y <= 77)
			},
		},
		{
			name:      "vertical step",
			img:       createStepImage(100, 100, 50),
			wantEdges: true,
			near:      func(p image.Point) bool { return p.X >= 48 && p.X <= 51 },
		},
		{
			name: "uniform",
			img:  createInMemoryImage(50, 50, color.RGBA{128, 128, 128, 255}),
		},
		{
			name: "tiny",
			img:  createInMemoryImage(5, 5, color.RGBA{128, 128, 128, 255}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EdgeDetect(tt.img, 50, 150)
			if err != nil {
				t.Fatalf("EdgeDetect failed: %v", err)
			}
			b := tt.img.Bounds()
			if result.Width != b.Dx() || result.Height != b.Dy() {
				t.Errorf("dimensions: got %dx%d, want %dx%d", result.Width, result.Height, b.Dx(), b.Dy())
			}

			_, on := decodeEdges(t, result)
			if tt.wantEdges != (len(on) > 0) {
				t.Fatalf("edge pixels: got %d, want edges=%v", len(on), tt.wantEdges)
			}
			for _, p := range on {
				if tt.near != nil && !tt.near(p) {
					t.Errorf("unexpected edge pixel at %v", p)
				}
			}
		})
	}
}

func TestEncodeEdges_MatchesMask(t *testing.T) {
	field := ComputeGradients(createEdgeTestImage(40, 40), DefaultBlurRadius)
	mask := field.Edges(50, 150)

	result, err := EncodeEdges(field, mask)
	if err != nil {
		t.Fatalf("EncodeEdges failed: %v", err)
	}
	img, _ := decodeEdges(t, result)

	for i, want := range mask {
		r, _, _, _ := img.At(i%40, i/40).RGBA()
		if (r > 0) != want {
			t.Fatalf("pixel (%d,%d): encoded %v, mask %v", i%40, i/40, r > 0, want)
		}
	}
}

// Helper functions

// createEdgeTestImage creates an image with a black rectangle on white background
// to create clear edges for testing
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// White background
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Black rectangle in center (creates 4 edges)
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}

	return img
}

// createDiscImage draws a white disc of radius r centered at (cx, cy) on a
// black background.
func createDiscImage(width, height int, cx, cy, r float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestEdgePoints_Disc(t *testing.T) {
	img := createDiscImage(80, 80, 40, 40, 20)

	result, err := EdgePoints(img, 50, 150, nil)
	if err != nil {
		t.Fatalf("EdgePoints failed: %v", err)
	}

	if result.Count != len(result.Points) {
		t.Errorf("Count %d does not match %d points", result.Count, len(result.Points))
	}
	// Circumference is about 125 pixels.
	if result.Count < 60 {
		t.Fatalf("expected a closed contour, got %d points", result.Count)
	}

	for _, p := range result.Points {
		dx := float64(p.X) - 40
		dy := float64(p.Y) - 40
		dist := math.Hypot(dx, dy)
		if dist < 17 || dist > 23 {
			t.Errorf("point (%d,%d) is %.1f from the center, want about 20", p.X, p.Y, dist)
		}

		// Intensity rises towards the center, so the gradient points inwards.
		if p.GX*(-dx)+p.GY*(-dy) <= 0 {
			t.Errorf("gradient (%.2f,%.2f) at (%d,%d) does not point inwards", p.GX, p.GY, p.X, p.Y)
		}
		if p.Position().X != float64(p.X) || p.Gradient().Y != p.GY {
			t.Errorf("vector accessors disagree with fields for %+v", p)
		}
	}
}

func TestEdgePoints_Region(t *testing.T) {
	img := createDiscImage(80, 80, 40, 40, 20)

	all, err := EdgePoints(img, 50, 150, nil)
	if err != nil {
		t.Fatalf("EdgePoints failed: %v", err)
	}

	region := &Region{X1: 0, Y1: 0, X2: 40, Y2: 80}
	left, err := EdgePoints(img, 50, 150, region)
	if err != nil {
		t.Fatalf("EdgePoints with region failed: %v", err)
	}

	if left.Count == 0 || left.Count >= all.Count {
		t.Errorf("region count %d should be between 0 and %d", left.Count, all.Count)
	}
	for _, p := range left.Points {
		if p.X >= 40 {
			t.Errorf("point (%d,%d) outside region", p.X, p.Y)
		}
	}
}

func TestEdgePoints_RegionOutside(t *testing.T) {
	img := createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255})

	_, err := EdgePoints(img, 50, 150, &Region{X1: 30, Y1: 30, X2: 40, Y2: 40})
	if err == nil {
		t.Error("EdgePoints should fail for a region outside the image")
	}
}

func TestEdgePoints_UniformImage(t *testing.T) {
	img := createInMemoryImage(30, 30, color.RGBA{200, 10, 10, 255})

	result, err := EdgePoints(img, 50, 150, nil)
	if err != nil {
		t.Fatalf("EdgePoints failed: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("uniform image: got %d edge points, want 0", result.Count)
	}
}
