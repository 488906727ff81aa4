//go:build windows

package capture

// Windows capture using per-call GDI allocations. captureRect creates a
// temporary top-down DIB, BitBlt's the screen into it and converts
// BGRA->RGBA into a heap-owned *image.RGBA. Each GDI object is released by a
// defer registered right after it is acquired, so a failure at any step frees
// everything acquired before it.

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	srccopy      = 0x00CC0020
	dibRGBColors = 0
	biRgb        = 0
	clrInvalid   = 0xFFFFFFFF
	gdiError     = ^uintptr(0)
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	gdi32                  = windows.NewLazySystemDLL("gdi32.dll")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procBitBlt             = gdi32.NewProc("BitBlt")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procGetPixel           = gdi32.NewProc("GetPixel")
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	_      [4]byte // one RGBQUAD placeholder (unused for 32-bit)
}

func captureRect(r image.Rectangle) (*image.RGBA, error) {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, r)
	}

	screenDC, _, err := procGetDC.Call(0)
	if screenDC == 0 {
		return nil, fmt.Errorf("capture: GetDC failed: %v", err)
	}
	defer procReleaseDC.Call(0, screenDC)

	memDC, _, err := procCreateCompatibleDC.Call(screenDC)
	if memDC == 0 {
		return nil, fmt.Errorf("capture: CreateCompatibleDC failed: %v", err)
	}
	defer procDeleteDC.Call(memDC)

	var bi bitmapInfo
	bi.Header.BiSize = uint32(unsafe.Sizeof(bi.Header))
	bi.Header.BiWidth = int32(w)
	bi.Header.BiHeight = -int32(h) // top-down
	bi.Header.BiPlanes = 1
	bi.Header.BiBitCount = 32
	bi.Header.BiCompression = biRgb
	bi.Header.BiSizeImage = uint32(w * h * 4)

	var bitsPtr unsafe.Pointer
	bmp, _, err := procCreateDIBSection.Call(memDC, uintptr(unsafe.Pointer(&bi)), dibRGBColors, uintptr(unsafe.Pointer(&bitsPtr)), 0, 0)
	if bmp == 0 || bitsPtr == nil {
		if bmp != 0 {
			procDeleteObject.Call(bmp)
		}
		return nil, fmt.Errorf("capture: CreateDIBSection failed: %v", err)
	}
	defer procDeleteObject.Call(bmp)

	prev, _, err := procSelectObject.Call(memDC, bmp)
	if prev == 0 || prev == gdiError {
		return nil, fmt.Errorf("capture: SelectObject failed: %v", err)
	}
	// The bitmap must be deselected before DeleteObject runs.
	defer procSelectObject.Call(memDC, prev)

	ok, _, err := procBitBlt.Call(memDC, 0, 0, uintptr(w), uintptr(h), screenDC, uintptr(int32(r.Min.X)), uintptr(int32(r.Min.Y)), srccopy)
	if ok == 0 {
		return nil, fmt.Errorf("capture: BitBlt failed rect=%v: %v", r, err)
	}

	pixLen := w * h * 4
	src := unsafe.Slice((*byte)(bitsPtr), pixLen)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < pixLen; i += 4 {
		dst.Pix[i+0] = src[i+2]
		dst.Pix[i+1] = src[i+1]
		dst.Pix[i+2] = src[i+0]
		dst.Pix[i+3] = 0xFF
	}
	return dst, nil
}

func samplePixel(p image.Point) (color.RGBA, error) {
	hdc, _, err := procGetDC.Call(0)
	if hdc == 0 {
		return color.RGBA{}, fmt.Errorf("capture: GetDC failed: %v", err)
	}
	defer procReleaseDC.Call(0, hdc)

	v, _, _ := procGetPixel.Call(hdc, uintptr(int32(p.X)), uintptr(int32(p.Y)))
	if uint32(v) == clrInvalid {
		return color.RGBA{}, fmt.Errorf("capture: GetPixel failed at %v", p)
	}
	// COLORREF is 0x00BBGGRR.
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 0xFF}, nil
}
