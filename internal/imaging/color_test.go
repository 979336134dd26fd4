package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSampleColor(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		x, y    int
		wantHex string
		wantRGB RGBColor
	}{
		{"top-left corner", 0, 0, "#FF0000", RGBColor{255, 0, 0}},
		{"top-right corner", 99, 0, "#00FF00", RGBColor{0, 255, 0}},
		{"bottom-left corner", 0, 99, "#0000FF", RGBColor{0, 0, 255}},
		{"bottom-right corner", 99, 99, "#FFFFFF", RGBColor{255, 255, 255}},
		{"quadrant boundary", 50, 49, "#00FF00", RGBColor{0, 255, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SampleColor(img, tt.x, tt.y)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.RGB != tt.wantRGB {
				t.Errorf("RGB: got %+v, want %+v", result.RGB, tt.wantRGB)
			}
			if result.RGBA.A != 255 {
				t.Errorf("alpha: got %d, want 255", result.RGBA.A)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	for _, p := range []image.Point{{-1, 50}, {50, -1}, {100, 50}, {50, 100}, {100, 100}} {
		if _, err := SampleColor(img, p.X, p.Y); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p.X, p.Y)
		}
	}
}

func TestColorOf_Alpha(t *testing.T) {
	// Half-transparent red, premultiplied by the color model
	c := ColorOf(color.NRGBA{R: 255, G: 0, B: 0, A: 128})

	if c.RGBA.A != 128 {
		t.Errorf("alpha: got %d, want 128", c.RGBA.A)
	}
	// RGBA() is premultiplied, so the channels shrink with alpha
	if c.RGB.R != 128 || c.RGB.G != 0 || c.RGB.B != 0 {
		t.Errorf("RGB: got %+v, want {128 0 0}", c.RGB)
	}
	if c.Hex != "#800000" {
		t.Errorf("Hex: got %s, want #800000", c.Hex)
	}
}

func TestColorOf_HSL(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantH   int
		wantS   int
		wantL   int
	}{
		{"red", 255, 0, 0, 0, 100, 50},
		{"green", 0, 255, 0, 120, 100, 50},
		{"blue", 0, 0, 255, 240, 100, 50},
		{"white", 255, 255, 255, 0, 0, 100},
		{"black", 0, 0, 0, 0, 0, 0},
		{"gray", 128, 128, 128, 0, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hsl := ColorOf(color.RGBA{tt.r, tt.g, tt.b, 255}).HSL

			// Allow some tolerance for rounding
			if abs(hsl.H-tt.wantH) > 1 {
				t.Errorf("H: got %d, want %d", hsl.H, tt.wantH)
			}
			if abs(hsl.S-tt.wantS) > 1 {
				t.Errorf("S: got %d, want %d", hsl.S, tt.wantS)
			}
			if abs(hsl.L-tt.wantL) > 1 {
				t.Errorf("L: got %d, want %d", hsl.L, tt.wantL)
			}
		})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestSampleColor_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 30, 40))
	img.Set(10, 20, color.RGBA{0, 0, 255, 255})

	result, err := SampleColor(img, 10, 20)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#0000FF" {
		t.Errorf("Hex: got %s, want #0000FF", result.Hex)
	}

	if _, err := SampleColor(img, 0, 0); err == nil {
		t.Error("SampleColor should fail for (0,0) when bounds start at (10,20)")
	}
}

func TestMeanColor(t *testing.T) {
	img := createPatternImage(100, 100)

	// Two red and two white samples.
	points := []image.Point{{X: 10, Y: 10}, {X: 20, Y: 20}, {X: 80, Y: 80}, {X: 90, Y: 90}, {X: -5, Y: 500}}
	result, err := MeanColor(img, points)
	if err != nil {
		t.Fatalf("MeanColor failed: %v", err)
	}

	if result.RGB.R != 255 || result.RGB.G != 128 || result.RGB.B != 128 {
		t.Errorf("RGB: got (%d,%d,%d), want (255,128,128)", result.RGB.R, result.RGB.G, result.RGB.B)
	}
	if result.RGBA.A != 255 {
		t.Errorf("alpha: got %d, want 255", result.RGBA.A)
	}
}

func TestMeanColor_MatchesSampleColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	img.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 200, B: 90, A: 30})

	for x := 0; x < 2; x++ {
		sampled, err := SampleColor(img, x, 0)
		if err != nil {
			t.Fatalf("SampleColor failed: %v", err)
		}
		mean, err := MeanColor(img, []image.Point{{X: x, Y: 0}})
		if err != nil {
			t.Fatalf("MeanColor failed: %v", err)
		}
		if *mean != *sampled {
			t.Errorf("pixel %d: MeanColor %+v, SampleColor %+v", x, *mean, *sampled)
		}
	}

	// Two copies of a translucent pixel average to the same color
	mean, err := MeanColor(img, []image.Point{{X: 0, Y: 0}, {X: 0, Y: 0}})
	if err != nil {
		t.Fatalf("MeanColor failed: %v", err)
	}
	if mean.Hex != "#800000" || mean.RGBA.A != 128 {
		t.Errorf("translucent red: got %s alpha %d, want #800000 alpha 128", mean.Hex, mean.RGBA.A)
	}
}

func TestMeanColor_NoPointsInside(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 0, 0, 255})

	if _, err := MeanColor(img, nil); err == nil {
		t.Error("MeanColor should fail without sample points")
	}
	if _, err := MeanColor(img, []image.Point{{X: 10, Y: 10}}); err == nil {
		t.Error("MeanColor should fail when all points are outside")
	}
}
