package coords

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Reference resolution every detection and click coordinate is authored in.
const (
	RefWidth  = 3840
	RefHeight = 2160
)

// Point is an immutable coordinate in reference space.
type Point struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// CheckPoint pairs a reference point with the exact colour expected there.
type CheckPoint struct {
	Point Point
	Color color.RGBA
}

// Matches reports an exact per-channel RGB match. Alpha is ignored.
func (c CheckPoint) Matches(sample color.RGBA) bool {
	return sample.R == c.Color.R && sample.G == c.Color.G && sample.B == c.Color.B
}

// Region is a named reference-space rectangle used for OCR capture.
type Region struct {
	Name                     string
	Left, Top, Right, Bottom int
}

// TopLeft and BottomRight return the corners converted independently by the mapper.
func (r Region) TopLeft() Point     { return Point{X: r.Left, Y: r.Top} }
func (r Region) BottomRight() Point { return Point{X: r.Right, Y: r.Bottom} }

// ParseRegion builds a Region from "left,top,right,bottom".
func ParseRegion(name, text string) (Region, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("coords: region %q: want 4 values, got %d", name, len(parts))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("coords: region %q: %w", name, err)
		}
		v[i] = n
	}
	return Region{Name: name, Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
}

// WindowMetrics describes the target window's client area in screen space.
// Captured once per run; it goes stale if the window moves or resizes.
type WindowMetrics struct {
	Origin image.Point // client-area top-left in screen coordinates
	Width  int
	Height int
	Handle uintptr
}

// Valid reports whether the metrics can be used for mapping.
func (m WindowMetrics) Valid() bool { return m.Width > 0 && m.Height > 0 }

// ClientRect returns the client area as a screen rectangle.
func (m WindowMetrics) ClientRect() image.Rectangle {
	return image.Rect(m.Origin.X, m.Origin.Y, m.Origin.X+m.Width, m.Origin.Y+m.Height)
}
