// Package input synthesises mouse and keyboard input for the login flow.
package input

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
)

var ErrUnsupported = errors.New("input: not supported on this platform")

// Key is a Windows virtual-key code.
type Key byte

const (
	Tab     Key = 0x09
	Enter   Key = 0x0D
	Control Key = 0x11
	Escape  Key = 0x1B
	V       Key = 0x56
)

// Injector drives the OS pointer and keyboard. Points are in screen pixels.
type Injector interface {
	MoveCursor(p image.Point) error
	Click(p image.Point) error
	PressKey(k Key) error
	PasteText(text string) error
}

// Timings are the holds and settle waits used by the OS injector.
type Timings struct {
	ClickStep   time.Duration // move→down and down→up
	KeyHold     time.Duration
	PasteRetry  time.Duration
	PasteSettle time.Duration // after the clipboard write and after Ctrl+V
	ChordHold   time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		ClickStep:   10 * time.Millisecond,
		KeyHold:     50 * time.Millisecond,
		PasteRetry:  50 * time.Millisecond,
		PasteSettle: 50 * time.Millisecond,
		ChordHold:   10 * time.Millisecond,
	}
}

// ParseKey converts a key token ("Escape", "Tab", "F3", "R") into a
// virtual-key code. F1..F12 and single letters A..Z are recognised. Unknown
// tokens return Escape.
func ParseKey(name string) Key {
	k := strings.ToUpper(strings.TrimSpace(name))
	switch k {
	case "ESC", "ESCAPE":
		return Escape
	case "TAB":
		return Tab
	case "ENTER", "RETURN":
		return Enter
	case "F10":
		return 0x79
	case "F11":
		return 0x7A
	case "F12":
		return 0x7B
	}
	if len(k) == 2 && k[0] == 'F' { // F1-F9
		n := int(k[1] - '0')
		if n >= 1 && n <= 9 {
			return Key(0x70 + (n - 1)) // VK_F1=0x70
		}
	}
	if len(k) == 1 && k[0] >= 'A' && k[0] <= 'Z' {
		return Key(k[0])
	}
	return Escape
}

func (k Key) String() string {
	switch k {
	case Tab:
		return "Tab"
	case Enter:
		return "Enter"
	case Control:
		return "Ctrl"
	case Escape:
		return "Escape"
	}
	if k >= 0x70 && k <= 0x7B {
		return fmt.Sprintf("F%d", int(k-0x70)+1)
	}
	if k >= 'A' && k <= 'Z' {
		return string(rune(k))
	}
	return fmt.Sprintf("0x%02X", byte(k))
}
