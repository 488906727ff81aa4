// Package inputtest provides a recording input.Injector for tests.
package inputtest

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/soocke/login-bot-go/domain/input"
)

var ErrPasteFailed = errors.New("inputtest: paste failed")

type Kind int

const (
	Move Kind = iota
	Click
	Press
	Paste
)

// Action is one recorded injector call.
type Action struct {
	Kind  Kind
	Point image.Point
	Key   input.Key
	Text  string
}

func (a Action) String() string {
	switch a.Kind {
	case Move:
		return "move " + a.Point.String()
	case Click:
		return "click " + a.Point.String()
	case Press:
		return "key " + a.Key.String()
	case Paste:
		return fmt.Sprintf("paste %q", a.Text)
	}
	return "unknown"
}

// Recorder records every call. Hook, when set, runs after each recorded
// action outside the lock.
type Recorder struct {
	mu        sync.Mutex
	actions   []Action
	failPaste int
	Hook      func(Action)
}

func (r *Recorder) record(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	hook := r.Hook
	r.mu.Unlock()
	if hook != nil {
		hook(a)
	}
}

// FailNextPastes makes the next n PasteText calls return ErrPasteFailed.
func (r *Recorder) FailNextPastes(n int) {
	r.mu.Lock()
	r.failPaste = n
	r.mu.Unlock()
}

// SetHook replaces Hook under the lock.
func (r *Recorder) SetHook(h func(Action)) {
	r.mu.Lock()
	r.Hook = h
	r.mu.Unlock()
}

func (r *Recorder) MoveCursor(p image.Point) error {
	r.record(Action{Kind: Move, Point: p})
	return nil
}

func (r *Recorder) Click(p image.Point) error {
	r.record(Action{Kind: Click, Point: p})
	return nil
}

func (r *Recorder) PressKey(k input.Key) error {
	r.record(Action{Kind: Press, Key: k})
	return nil
}

func (r *Recorder) PasteText(text string) error {
	r.mu.Lock()
	fail := r.failPaste > 0
	if fail {
		r.failPaste--
	}
	r.mu.Unlock()
	if fail {
		return ErrPasteFailed
	}
	r.record(Action{Kind: Paste, Text: text})
	return nil
}

// Actions returns a copy of the recorded calls.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Action(nil), r.actions...)
}

// Clicks returns the recorded click points in order.
func (r *Recorder) Clicks() []image.Point {
	var pts []image.Point
	for _, a := range r.Actions() {
		if a.Kind == Click {
			pts = append(pts, a.Point)
		}
	}
	return pts
}

// Keys returns the recorded key presses in order.
func (r *Recorder) Keys() []input.Key {
	var keys []input.Key
	for _, a := range r.Actions() {
		if a.Kind == Press {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// Pastes returns the pasted texts in order.
func (r *Recorder) Pastes() []string {
	var out []string
	for _, a := range r.Actions() {
		if a.Kind == Paste {
			out = append(out, a.Text)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.actions = nil
	r.mu.Unlock()
}

var _ input.Injector = (*Recorder)(nil)
