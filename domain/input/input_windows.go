//go:build windows

package input

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.design/x/clipboard"
	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procMouseEvent   = user32.NewProc("mouse_event")
	procKeybdEvent   = user32.NewProc("keybd_event")
)

const (
	mouseeventfLeftDown = 0x0002
	mouseeventfLeftUp   = 0x0004
	keyeventfKeyUp      = 0x0002
)

// OS injects input through user32 and the system clipboard.
type OS struct {
	timings Timings
	logger  *slog.Logger
	paster  *paster
}

func NewOS(t Timings, logger *slog.Logger) *OS {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := &OS{timings: t, logger: logger}
	o.paster = newPaster(systemClipboard{}, o, t, logger)
	return o
}

func (o *OS) MoveCursor(p image.Point) error {
	r, _, err := procSetCursorPos.Call(uintptr(int32(p.X)), uintptr(int32(p.Y)))
	if r == 0 {
		return fmt.Errorf("input: SetCursorPos(%d,%d): %w", p.X, p.Y, err)
	}
	return nil
}

func (o *OS) Click(p image.Point) error {
	if err := o.MoveCursor(p); err != nil {
		return err
	}
	time.Sleep(o.timings.ClickStep)
	_, _, _ = procMouseEvent.Call(mouseeventfLeftDown, 0, 0, 0, 0)
	time.Sleep(o.timings.ClickStep)
	_, _, _ = procMouseEvent.Call(mouseeventfLeftUp, 0, 0, 0, 0)
	return nil
}

func (o *OS) PressKey(k Key) error {
	o.keyDown(k)
	time.Sleep(o.timings.KeyHold)
	o.keyUp(k)
	return nil
}

func (o *OS) keyDown(k Key) { _, _, _ = procKeybdEvent.Call(uintptr(k), 0, 0, 0) }
func (o *OS) keyUp(k Key)   { _, _, _ = procKeybdEvent.Call(uintptr(k), 0, keyeventfKeyUp, 0) }

// PasteText puts text on the clipboard and sends Ctrl+V. The clipboard write
// is verified by reading it back and retried once.
func (o *OS) PasteText(text string) error { return o.paster.paste(text) }

// systemClipboard is the text clipboard of the desktop session.
type systemClipboard struct{}

func (systemClipboard) Init() error        { return clipboard.Init() }
func (systemClipboard) WriteText(b []byte) { clipboard.Write(clipboard.FmtText, b) }
func (systemClipboard) ReadText() []byte   { return clipboard.Read(clipboard.FmtText) }

var _ Injector = (*OS)(nil)
