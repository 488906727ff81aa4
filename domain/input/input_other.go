//go:build !windows

package input

import (
	"image"
	"log/slog"
)

// OS is unavailable off Windows; every call fails with ErrUnsupported.
type OS struct{}

func NewOS(Timings, *slog.Logger) *OS { return &OS{} }

func (*OS) MoveCursor(image.Point) error { return ErrUnsupported }
func (*OS) Click(image.Point) error      { return ErrUnsupported }
func (*OS) PressKey(Key) error           { return ErrUnsupported }
func (*OS) PasteText(string) error       { return ErrUnsupported }

var _ Injector = (*OS)(nil)
