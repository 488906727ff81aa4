package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/soocke/login-bot-go/metrics"
)

var (
	// ErrInvalidRegion is returned for a non-positive width or height. No OS
	// resource is acquired in that case.
	ErrInvalidRegion = errors.New("capture: invalid region")
	// ErrOutOfBounds is returned when the region lies entirely off the desktop.
	ErrOutOfBounds = errors.New("capture: region outside desktop")
)

// Screen reads pixels from the live display. It holds no capture state; each
// call acquires and releases its own OS resources.
type Screen struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
	bounds  func() image.Rectangle
}

// NewScreen returns a Screen that clips requests to the virtual desktop.
func NewScreen(logger *slog.Logger, rec *metrics.Recorder) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Screen{logger: logger, metrics: rec, bounds: DesktopBounds}
}

// DesktopBounds returns the union of all active display bounds, or the empty
// rectangle when no display is reported.
func DesktopBounds() image.Rectangle {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return image.Rectangle{}
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union
}

// Capture is CaptureRegion expressed as origin plus size.
func (s *Screen) Capture(x, y, width, height int) (*image.RGBA, error) {
	return s.CaptureRegion(image.Rect(x, y, x+width, y+height))
}

// CaptureRegion copies r from the screen into a new RGBA buffer.
func (s *Screen) CaptureRegion(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		s.metrics.CaptureFailed()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, r)
	}
	if s.bounds != nil {
		if desk := s.bounds(); !desk.Empty() {
			clipped := r.Intersect(desk)
			if clipped.Empty() {
				s.metrics.CaptureFailed()
				return nil, fmt.Errorf("%w: region=%v desktop=%v", ErrOutOfBounds, r, desk)
			}
			r = clipped
		}
	}
	start := time.Now()
	img, err := captureRect(r)
	if err != nil {
		s.metrics.CaptureFailed()
		s.logger.Debug("capture failed", "rect", r, "error", err)
		return nil, err
	}
	s.metrics.ObserveCapture(time.Since(start))
	return img, nil
}

// SamplePixel reads one pixel without an intermediate bitmap.
func (s *Screen) SamplePixel(p image.Point) (color.RGBA, error) {
	c, err := samplePixel(p)
	if err != nil {
		s.metrics.CaptureFailed()
		return color.RGBA{}, err
	}
	return c, nil
}
