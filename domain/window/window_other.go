//go:build !windows

package window

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/soocke/login-bot-go/domain/coords"
)

func EnableDPIAwareness() error { return ErrUnsupported }

type unsupported struct{}

func newBackend() backend { return unsupported{} }

func (unsupported) FindWindow(string) uintptr      { return 0 }
func (unsupported) IsIconic(uintptr) bool          { return false }
func (unsupported) SendRestore(uintptr)            {}
func (unsupported) ShowWindow(uintptr, int)        {}
func (unsupported) SetForeground(uintptr) bool     { return false }
func (unsupported) BringToTop(uintptr) bool        { return false }
func (unsupported) Foreground() uintptr            { return 0 }
func (unsupported) CursorPos() (image.Point, bool) { return image.Point{}, false }

func (unsupported) ClientMetrics(uintptr) (coords.WindowMetrics, error) {
	return coords.WindowMetrics{}, ErrUnsupported
}

func fixedDrives() []string { return nil }

func isHiddenOrSystem(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
