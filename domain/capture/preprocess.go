package capture

import (
	"image"

	"github.com/disintegration/imaging"
)

// Grayscale returns a luminance image using the 0.299/0.587/0.114 weights.
// Text on the launcher's translucent panels reads more reliably this way.
func Grayscale(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	return imaging.Grayscale(img)
}

// PrepareForOCR grayscales img and, when it is shorter than minHeight pixels,
// upscales it proportionally so glyphs reach a size tesseract handles well.
// minHeight <= 0 disables upscaling.
func PrepareForOCR(img image.Image, minHeight int) image.Image {
	if img == nil {
		return nil
	}
	gray := Grayscale(img)
	h := gray.Bounds().Dy()
	if minHeight <= 0 || h <= 0 || h >= minHeight {
		return gray
	}
	// Height is fixed, width follows the aspect ratio.
	return imaging.Resize(gray, 0, minHeight, imaging.Lanczos)
}
