package coords

import (
	"image"
	"log/slog"
	"math"
)

// Mapper converts reference-space coordinates into screen coordinates for a
// particular window client area. Scale factors are computed once in NewMapper.
type Mapper struct {
	metrics WindowMetrics
	scaleX  float64
	scaleY  float64
	ok      bool
	logger  *slog.Logger
}

// NewMapper returns a mapper seeded with m. Invalid metrics produce a mapper
// whose conversions all fail.
func NewMapper(m WindowMetrics, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mp := &Mapper{metrics: m, logger: logger}
	if m.Valid() {
		mp.scaleX = float64(m.Width) / RefWidth
		mp.scaleY = float64(m.Height) / RefHeight
		mp.ok = true
	}
	return mp
}

// Metrics returns the window metrics the mapper was built from.
func (m *Mapper) Metrics() WindowMetrics {
	if m == nil {
		return WindowMetrics{}
	}
	return m.metrics
}

// Ready reports whether window metrics are populated.
func (m *Mapper) Ready() bool { return m != nil && m.ok }

// Convert maps a reference point to the screen. Both axes round the same way
// so that regions built from two corners do not drift.
func (m *Mapper) Convert(p Point) (image.Point, bool) {
	if !m.Ready() {
		if m != nil {
			m.logger.Warn("coordinate conversion without window metrics", "ref", p.String())
		}
		return image.Point{}, false
	}
	x := m.metrics.Origin.X + int(math.Round(float64(p.X)*m.scaleX))
	y := m.metrics.Origin.Y + int(math.Round(float64(p.Y)*m.scaleY))
	return image.Pt(x, y), true
}

// RegionRect converts both corners of r and returns the screen rectangle
// between them. The empty rectangle is returned on any conversion failure or
// non-positive size.
func (m *Mapper) RegionRect(r Region) image.Rectangle {
	tl, ok1 := m.Convert(r.TopLeft())
	br, ok2 := m.Convert(r.BottomRight())
	if !ok1 || !ok2 {
		return image.Rectangle{}
	}
	if br.X-tl.X <= 0 || br.Y-tl.Y <= 0 {
		m.logger.Debug("region maps to empty rect", "region", r.Name, "tl", tl, "br", br)
		return image.Rectangle{}
	}
	return image.Rectangle{Min: tl, Max: br}
}

// Center returns the client-area centre in screen coordinates.
func (m *Mapper) Center() (image.Point, bool) {
	if !m.Ready() {
		return image.Point{}, false
	}
	return image.Pt(m.metrics.Origin.X+m.metrics.Width/2, m.metrics.Origin.Y+m.metrics.Height/2), true
}
