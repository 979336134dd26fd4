package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor is a color as 8-bit channels.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor is RGBColor plus alpha (255 = opaque). The color channels are
// alpha-premultiplied, as color.Color.RGBA returns them.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor holds hue in degrees [0, 360) and saturation and lightness in
// percent.
type HSLColor struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ColorResult reports one color in the notations clients ask for. Hex is
// "#RRGGBB" without alpha.
type ColorResult struct {
	Hex  string    `json:"hex"`
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// SampleColor returns the color of the pixel at (x, y), which must lie
// inside img.Bounds().
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	p := image.Pt(x, y)
	if !p.In(img.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %v", x, y, img.Bounds())
	}
	result := ColorOf(img.At(x, y))
	return &result, nil
}

// MeanColor averages the colors of the given pixels. Points outside the
// image are skipped. Channels are averaged alpha-premultiplied, so a single
// point gives the same result as SampleColor.
//
// Returns an error if no point lies inside the image.
func MeanColor(img image.Image, points []image.Point) (*ColorResult, error) {
	bounds := img.Bounds()
	var sr, sg, sb, sa uint64
	n := 0
	for _, p := range points {
		if !p.In(bounds) {
			continue
		}
		r, g, b, a := img.At(p.X, p.Y).RGBA()
		sr += uint64(r)
		sg += uint64(g)
		sb += uint64(b)
		sa += uint64(a)
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("no sample points inside image bounds")
	}

	avg := func(sum uint64) uint16 {
		return uint16(math.Round(float64(sum) / float64(n)))
	}
	result := ColorOf(color.RGBA64{R: avg(sr), G: avg(sg), B: avg(sb), A: avg(sa)})
	return &result, nil
}

// ColorOf converts any color to a ColorResult.
//
// HSL values come from go-colorful and are truncated to whole degrees and
// percent.
func ColorOf(c color.Color) ColorResult {
	r, g, b, a := c.RGBA()
	r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)

	cf := colorful.Color{R: float64(r8) / 255, G: float64(g8) / 255, B: float64(b8) / 255}
	h, s, l := cf.Hsl()

	return ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB:  RGBColor{R: r8, G: g8, B: b8},
		RGBA: RGBAColor{R: r8, G: g8, B: b8, A: a8},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}
