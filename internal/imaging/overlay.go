package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/ironsheep/ellipse-tools-mcp/internal/fit"
)

// OverlayResult contains an image with fitted ellipses drawn on it.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`

	// Drawn is the number of ellipses that were plotted. Degenerate and
	// non-real ellipses are skipped.
	Drawn int `json:"drawn"`
}

// maxPerimeterSteps bounds the number of samples per outline.
const maxPerimeterSteps = 100_000

// EllipseOverlay draws ellipse outlines onto a copy of img.
//
// Parameters:
//   - img: Source image. It is not modified.
//   - ellipses: Ellipses in image pixel coordinates.
//   - colorHex: Outline color as "#RRGGBB" or "#RRGGBBAA". Invalid or empty
//     values fall back to opaque red.
//   - showLabels: Draw the 1-based index of each ellipse next to its center.
//
// Returns:
//   - *OverlayResult: The annotated image as base64 PNG.
//   - error: Non-nil if PNG encoding fails.
//
// Each outline is sampled densely enough that neighboring samples are less
// than half a pixel apart. A small cross marks each center.
func EllipseOverlay(img image.Image, ellipses []fit.Ellipse, colorHex string, showLabels bool) (*OverlayResult, error) {
	bounds := img.Bounds()

	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = color.RGBA{255, 0, 0, 255}
	}

	// Clone returns an NRGBA image anchored at (0,0)
	result := imaging.Clone(img)
	offset := bounds.Min

	drawn := 0
	for i, e := range ellipses {
		if !e.IsReal() {
			continue
		}
		e = e.Transform(matrix.Matrix{1, 0, 0, 1, -float64(offset.X), -float64(offset.Y)})
		drawEllipse(result, e, lineColor)
		drawCross(result, e.Center(), 3, lineColor)
		if showLabels {
			labelColor := color.RGBA{255, 255, 255, 255}
			bgColor := color.RGBA{0, 0, 0, 180}
			drawLabel(result, int(math.Round(e.CenterX))+4, int(math.Round(e.CenterY))+4, strconv.Itoa(i+1), labelColor, bgColor)
		}
		drawn++
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Drawn:       drawn,
	}, nil
}

// drawEllipse plots the outline of e, clipping to the image bounds.
func drawEllipse(img draw.Image, e fit.Ellipse, c color.Color) {
	a := math.Abs(e.SemiAxisA)
	b := math.Abs(e.SemiAxisB)
	steps := int(math.Ceil(4 * math.Pi * math.Max(a, b)))
	if steps < 16 {
		steps = 16
	}
	if steps > maxPerimeterSteps {
		steps = maxPerimeterSteps
	}

	cosT := math.Cos(e.Orientation)
	sinT := math.Sin(e.Orientation)
	for k := 0; k < steps; k++ {
		t := 2 * math.Pi * float64(k) / float64(steps)
		u := a * math.Cos(t)
		v := b * math.Sin(t)
		setPixel(img, vec.Vec2{
			X: e.CenterX + u*cosT - v*sinT,
			Y: e.CenterY + u*sinT + v*cosT,
		}, c)
	}
}

// drawCross marks p with a plus sign of the given arm length.
func drawCross(img draw.Image, p vec.Vec2, arm int, c color.Color) {
	for d := -arm; d <= arm; d++ {
		setPixel(img, vec.Vec2{X: p.X + float64(d), Y: p.Y}, c)
		setPixel(img, vec.Vec2{X: p.X, Y: p.Y + float64(d)}, c)
	}
}

func setPixel(img draw.Image, p vec.Vec2, c color.Color) {
	pt := image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
	if pt.In(img.Bounds()) {
		img.Set(pt.X, pt.Y, c)
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel draws a label in a 3x5 pixel font at the given position.
// Only digits and commas have glyphs; other characters leave a gap.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits and comma
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
