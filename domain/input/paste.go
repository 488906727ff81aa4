package input

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var errClipboardMismatch = errors.New("input: clipboard read-back mismatch")

// textClipboard is the clipboard surface PasteText writes through.
type textClipboard interface {
	Init() error
	WriteText(b []byte)
	ReadText() []byte
}

// keySender presses and releases single virtual keys.
type keySender interface {
	keyDown(k Key)
	keyUp(k Key)
}

// paster runs the clipboard write, verify, retry and Ctrl+V sequence.
type paster struct {
	clip    textClipboard
	keys    keySender
	timings Timings
	logger  *slog.Logger
	sleep   func(time.Duration)

	initOnce sync.Once
	initErr  error
}

func newPaster(clip textClipboard, keys keySender, t Timings, logger *slog.Logger) *paster {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &paster{clip: clip, keys: keys, timings: t, logger: logger, sleep: time.Sleep}
}

// paste is a no-op for empty text. A failed clipboard write is retried once
// after PasteRetry; a second failure returns without sending any key.
func (p *paster) paste(text string) error {
	if text == "" {
		return nil
	}
	p.initOnce.Do(func() { p.initErr = p.clip.Init() })
	if p.initErr != nil {
		return fmt.Errorf("input: clipboard init: %w", p.initErr)
	}
	if err := p.write(text); err != nil {
		p.logger.Debug("clipboard write retry", "error", err)
		p.sleep(p.timings.PasteRetry)
		if err := p.write(text); err != nil {
			return err
		}
	}
	p.sleep(p.timings.PasteSettle)
	p.keys.keyDown(Control)
	p.keys.keyDown(V)
	p.sleep(p.timings.ChordHold)
	p.keys.keyUp(V)
	p.keys.keyUp(Control)
	p.sleep(p.timings.PasteSettle)
	return nil
}

func (p *paster) write(text string) error {
	want := []byte(text)
	p.clip.WriteText(want)
	if got := p.clip.ReadText(); !bytes.Equal(got, want) {
		return errClipboardMismatch
	}
	return nil
}
