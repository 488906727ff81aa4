//go:build windows

package window

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/soocke/login-bot-go/domain/coords"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procFindWindowW         = user32.NewProc("FindWindowW")
	procIsIconic            = user32.NewProc("IsIconic")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procShowWindow          = user32.NewProc("ShowWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop    = user32.NewProc("BringWindowToTop")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetClientRect       = user32.NewProc("GetClientRect")
	procClientToScreen      = user32.NewProc("ClientToScreen")
	procGetCursorPos        = user32.NewProc("GetCursorPos")

	procSetProcessDpiAwarenessCtx = user32.NewProc("SetProcessDpiAwarenessContext")
)

const (
	wmSysCommand = 0x0112
	scRestore    = 0xF120
)

// DPI_AWARENESS_CONTEXT_PER_MONITOR_AWARE_V2 is (HANDLE)(-4)
var dpiAwarenessPerMonitorV2 = ^uintptr(3)

// EnableDPIAwareness makes client rects and cursor positions report physical
// pixels. Call once at startup, before any window is queried.
func EnableDPIAwareness() error {
	if procSetProcessDpiAwarenessCtx.Find() != nil {
		return errors.New("window: SetProcessDpiAwarenessContext not available")
	}
	if r, _, err := procSetProcessDpiAwarenessCtx.Call(dpiAwarenessPerMonitorV2); r == 0 {
		return fmt.Errorf("window: SetProcessDpiAwarenessContext: %w", err)
	}
	return nil
}

type win32 struct{}

func newBackend() backend { return win32{} }

func (win32) FindWindow(class string) uintptr {
	p, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0
	}
	h, _, _ := procFindWindowW.Call(uintptr(unsafe.Pointer(p)), 0)
	return h
}

func (win32) IsIconic(h uintptr) bool {
	r, _, _ := procIsIconic.Call(h)
	return r != 0
}

func (win32) SendRestore(h uintptr) {
	_, _, _ = procSendMessageW.Call(h, wmSysCommand, scRestore, 0)
}

func (win32) ShowWindow(h uintptr, cmd int) {
	_, _, _ = procShowWindow.Call(h, uintptr(cmd))
}

func (win32) SetForeground(h uintptr) bool {
	r, _, _ := procSetForegroundWindow.Call(h)
	return r != 0
}

func (win32) BringToTop(h uintptr) bool {
	r, _, _ := procBringWindowToTop.Call(h)
	return r != 0
}

func (win32) ClientMetrics(h uintptr) (coords.WindowMetrics, error) {
	var rc windows.Rect
	if r, _, err := procGetClientRect.Call(h, uintptr(unsafe.Pointer(&rc))); r == 0 {
		return coords.WindowMetrics{}, fmt.Errorf("window: GetClientRect: %w", err)
	}
	pt := struct{ X, Y int32 }{rc.Left, rc.Top}
	if r, _, err := procClientToScreen.Call(h, uintptr(unsafe.Pointer(&pt))); r == 0 {
		return coords.WindowMetrics{}, fmt.Errorf("window: ClientToScreen: %w", err)
	}
	return coords.WindowMetrics{
		Origin: image.Pt(int(pt.X), int(pt.Y)),
		Width:  int(rc.Right - rc.Left),
		Height: int(rc.Bottom - rc.Top),
	}, nil
}

func (win32) Foreground() uintptr {
	h, _, _ := procGetForegroundWindow.Call()
	return h
}

func (win32) CursorPos() (image.Point, bool) {
	var pt struct{ X, Y int32 }
	if r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); r == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(pt.X), int(pt.Y)), true
}

// fixedDrives lists the root paths ("C:\") of ready fixed drives.
func fixedDrives() []string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil
	}
	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + `:\`
		p, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(p) == windows.DRIVE_FIXED {
			roots = append(roots, root)
		}
	}
	return roots
}

func isHiddenOrSystem(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return true
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return true
	}
	return attrs&(windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM) != 0
}
