package fit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"seehuhn.de/go/geom/vec"
)

// ReadSamples parses the plain-text sample format:
//
//	N
//	x y gradx grady
//	...
//
// The first token is the point count N, followed by N groups of four
// whitespace-separated numbers. Tokens after the last group are ignored.
//
// Returns ErrInvalidInput for a non-positive count or a truncated file and
// the underlying parse or read error otherwise.
func ReadSamples(r io.Reader) (points, gradients []vec.Vec2, err error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	tok, ok := next()
	if !ok {
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("read samples: %w", err)
		}
		return nil, nil, fmt.Errorf("read samples: missing point count: %w", ErrInvalidInput)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return nil, nil, fmt.Errorf("read samples: invalid point count %q: %w", tok, err)
	}
	if n <= 0 {
		return nil, nil, fmt.Errorf("read samples: invalid point count %d: %w", n, ErrInvalidInput)
	}

	points = make([]vec.Vec2, n)
	gradients = make([]vec.Vec2, n)
	var vals [4]float64
	for i := 0; i < n; i++ {
		for j := range vals {
			tok, ok := next()
			if !ok {
				if err := sc.Err(); err != nil {
					return nil, nil, fmt.Errorf("read samples: %w", err)
				}
				return nil, nil, fmt.Errorf("read samples: expected %d samples, got %d: %w", n, i, ErrInvalidInput)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("read samples: sample %d: %w", i+1, err)
			}
			vals[j] = v
		}
		points[i] = vec.Vec2{X: vals[0], Y: vals[1]}
		gradients[i] = vec.Vec2{X: vals[2], Y: vals[3]}
	}
	return points, gradients, nil
}

// WriteSamples writes points and gradients in the format read by ReadSamples.
func WriteSamples(w io.Writer, points, gradients []vec.Vec2) error {
	if len(points) != len(gradients) {
		return fmt.Errorf("write samples: %d points but %d gradients: %w", len(points), len(gradients), ErrInvalidInput)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(points))
	for i, p := range points {
		g := gradients[i]
		fmt.Fprintf(bw, "%g %g %g %g\n", p.X, p.Y, g.X, g.Y)
	}
	return bw.Flush()
}
