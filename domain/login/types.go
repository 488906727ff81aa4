package login

import (
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
)

var (
	ErrAlreadyRunning = errors.New("login: previous run did not stop in time")
	ErrNoWindow       = errors.New("login: run has no window handle")
	ErrUnmapped       = errors.New("login: reference point could not be mapped")
	ErrLoopPanic      = errors.New("login: polling loop panic")
)

// Stage enumerates the steps of the login flow. Stages only move forward.
type Stage int32

const (
	Stage1 Stage = iota + 1 // entry screen: account menu or logout dialog
	Stage2                  // account entry: other-account or SMS form
	Stage3                  // waiting for "click to enter"
)

func (s Stage) String() string {
	switch s {
	case Stage1:
		return "stage1"
	case Stage2:
		return "stage2"
	case Stage3:
		return "stage3"
	default:
		return "unknown"
	}
}

// StageListener is called on each stage transition, from the polling
// goroutine.
type StageListener func(prev, next Stage)

// Outcome is how a run ended.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSucceeded
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Result is delivered exactly once per run.
type Result struct {
	Outcome Outcome
	Err     error
}

// Success is the boolean form used by completion callbacks. Cancelled runs
// report false.
func (r Result) Success() bool { return r.Outcome == OutcomeSucceeded }

// Credentials are held in memory for one run only.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are set. Incomplete credentials skip
// typing but still advance the flow.
func (c Credentials) Complete() bool { return c.Username != "" && c.Password != "" }

// MaskedUsername keeps the first two runes.
func (c Credentials) MaskedUsername() string {
	r := []rune(c.Username)
	if len(r) <= 2 {
		return "***"
	}
	return string(r[:2]) + "***"
}

// Screen captures pixels in screen coordinates.
type Screen interface {
	CaptureRegion(r image.Rectangle) (*image.RGBA, error)
	SamplePixel(p image.Point) (color.RGBA, error)
}

// Recognizer turns an image into cleaned text; "" means nothing recognised.
type Recognizer interface {
	Recognize(img image.Image) string
}

// Focus answers the focus-gate questions.
type Focus interface {
	IsForeground(h uintptr) bool
	IsPointerInside(m coords.WindowMetrics) bool
}

// MetricsSource re-reads the window geometry.
type MetricsSource interface {
	CaptureMetrics(h uintptr) (coords.WindowMetrics, error)
}

// Timings holds every delay of the engine.
type Timings struct {
	ClickGap        time.Duration // between paired clicks on Stage1/Stage2 matches
	OtherAccountGap time.Duration // between the other-account click and the field click
	ConfirmSettle   time.Duration // after a Stage2 logout-dialog click-through
	Stage1Wait      time.Duration // after every Stage1 tick
	IdleWait        time.Duration // Stage2/Stage3 tick that found nothing
	PausedWait      time.Duration
	PointerInterval time.Duration
	ErrorWaitStage1 time.Duration
	ErrorWait       time.Duration
	StopTimeout     time.Duration

	InjectLead      time.Duration // before the username paste
	InjectAfterUser time.Duration // between username paste and Tab
	InjectStep      time.Duration // between the remaining injection steps
	InjectSettle    time.Duration // after the submit click

	MetricsRefresh time.Duration // 0 disables window metrics re-capture
}

func DefaultTimings() Timings {
	return Timings{
		ClickGap:        300 * time.Millisecond,
		OtherAccountGap: 200 * time.Millisecond,
		ConfirmSettle:   500 * time.Millisecond,
		Stage1Wait:      1500 * time.Millisecond,
		IdleWait:        100 * time.Millisecond,
		PausedWait:      100 * time.Millisecond,
		PointerInterval: 200 * time.Millisecond,
		ErrorWaitStage1: 1500 * time.Millisecond,
		ErrorWait:       time.Second,
		StopTimeout:     time.Second,
		InjectLead:      500 * time.Millisecond,
		InjectAfterUser: 500 * time.Millisecond,
		InjectStep:      100 * time.Millisecond,
		InjectSettle:    500 * time.Millisecond,
	}
}
