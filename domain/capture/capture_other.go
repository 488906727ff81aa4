//go:build !windows

package capture

import (
	"fmt"
	"image"
	"image/color"

	"github.com/vova616/screenshot"
)

func captureRect(r image.Rectangle) (*image.RGBA, error) {
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, r)
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return img, nil
}

func samplePixel(p image.Point) (color.RGBA, error) {
	img, err := captureRect(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
	if err != nil {
		return color.RGBA{}, err
	}
	c := img.RGBAAt(img.Rect.Min.X, img.Rect.Min.Y)
	c.A = 0xFF
	return c, nil
}
