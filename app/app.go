// Package app wires the login engine to the game window and exposes the
// automation facade used by the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/login-bot-go/config"
	"github.com/soocke/login-bot-go/domain/coords"
	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/domain/login"
	"github.com/soocke/login-bot-go/domain/ocr"
	"github.com/soocke/login-bot-go/metrics"
)

// ErrSetup wraps every failure before the polling loop starts.
var ErrSetup = errors.New("app: automation setup failed")

// WindowService is the part of the window controller the facade drives.
type WindowService interface {
	LocateOrLaunch(ctx context.Context) (uintptr, error)
	Activate(h uintptr) bool
	CaptureMetrics(h uintptr) (coords.WindowMetrics, error)
	IsForeground(h uintptr) bool
	IsPointerInside(m coords.WindowMetrics) bool
}

// TextService is the OCR service as seen by the facade.
type TextService interface {
	Initialize(dataPath string) bool
	Recognize(img image.Image) string
}

// Deps are the platform services behind an Automation.
type Deps struct {
	Window   WindowService
	OCR      TextService
	Screen   login.Screen
	Input    input.Injector
	Recorder *metrics.Recorder
}

// Automation runs one login at a time against the game window.
type Automation struct {
	deps   Deps
	cfg    *config.Config
	logger *slog.Logger
	engine *login.Engine
	sleep  func(time.Duration)

	mu       sync.Mutex
	onLogin  []func(success bool)
	onResult []func(login.Result)
	done     chan login.Result
}

func NewAutomation(deps Deps, cfg *config.Config, logger *slog.Logger) *Automation {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	engine := login.NewEngine(login.Deps{
		Screen:       deps.Screen,
		OCR:          deps.OCR,
		Input:        deps.Input,
		Focus:        deps.Window,
		Source:       deps.Window,
		Recorder:     deps.Recorder,
		DismissKey:   cfg.Key(),
		OCRMinHeight: cfg.OCRMinHeight,
	}, cfg.LoginTimings(), logger.With("component", "login"))
	return &Automation{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		engine: engine,
		sleep:  time.Sleep,
		done:   make(chan login.Result, 1),
	}
}

// Engine exposes the detection engine for stage listeners and status.
func (a *Automation) Engine() *login.Engine { return a.engine }

// OnLoginCompleted registers a callback receiving true only for a successful
// run. Callbacks run on the goroutine that resolved the run.
func (a *Automation) OnLoginCompleted(fn func(success bool)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.onLogin = append(a.onLogin, fn)
	a.mu.Unlock()
}

// OnResult registers a callback receiving the full result.
func (a *Automation) OnResult(fn func(login.Result)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.onResult = append(a.onResult, fn)
	a.mu.Unlock()
}

// Done yields the result of the most recently started run.
func (a *Automation) Done() <-chan login.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// StartAutomation prepares the window and starts a login run. A setup
// failure resolves the run as failed and is returned wrapped in ErrSetup.
func (a *Automation) StartAutomation(ctx context.Context, username, password string) error {
	a.engine.Stop()
	done := make(chan login.Result, 1)
	a.mu.Lock()
	a.done = done
	a.mu.Unlock()
	resolve := a.resolver(done)
	creds := login.Credentials{Username: username, Password: password}
	a.logger.Info("automation starting", "user", creds.MaskedUsername())

	fail := func(step string, err error) error {
		err = fmt.Errorf("%w: %s: %w", ErrSetup, step, err)
		a.logger.Error("automation setup failed", "step", step, "error", err)
		a.deps.Recorder.Run(login.OutcomeFailed.String())
		resolve(login.Result{Outcome: login.OutcomeFailed, Err: err})
		return err
	}

	h, err := a.deps.Window.LocateOrLaunch(ctx)
	if err != nil {
		return fail("locate window", err)
	}
	if !a.deps.Window.Activate(h) {
		a.logger.Warn("window activation not confirmed", "handle", h)
	}
	a.sleep(a.cfg.ActivateSettle())

	m, err := a.deps.Window.CaptureMetrics(h)
	if err != nil {
		return fail("window metrics", err)
	}
	a.logger.Info("window metrics",
		"origin", m.Origin.String(),
		"width", m.Width,
		"height", m.Height)

	if !a.deps.OCR.Initialize(a.cfg.TessdataPath) {
		return fail("ocr init", ocr.ErrNotInitialized)
	}

	if center, ok := coords.NewMapper(m, a.logger).Center(); ok {
		if err := a.deps.Input.MoveCursor(center); err != nil {
			a.logger.Warn("cursor move failed", "error", err)
		}
	}

	if _, err := a.engine.Start(login.Run{Credentials: creds, Window: m, OnComplete: resolve}); err != nil {
		return fail("start engine", err)
	}
	return nil
}

// StopAutomation cancels the current run. The run resolves as cancelled.
func (a *Automation) StopAutomation() {
	a.logger.Info("automation stop requested")
	a.engine.Stop()
}

// resolver delivers one result to done and the registered callbacks.
func (a *Automation) resolver(done chan login.Result) func(login.Result) {
	var once sync.Once
	return func(r login.Result) {
		once.Do(func() {
			done <- r
			a.mu.Lock()
			onLogin := append([]func(bool)(nil), a.onLogin...)
			onResult := append([]func(login.Result)(nil), a.onResult...)
			a.mu.Unlock()
			a.logger.Info("automation completed", "outcome", r.Outcome.String(), "error", r.Err)
			for _, fn := range onResult {
				a.safeCall(func() { fn(r) })
			}
			for _, fn := range onLogin {
				a.safeCall(func() { fn(r.Success()) })
			}
		})
	}
}

func (a *Automation) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("completion callback panic", "error", r)
		}
	}()
	fn()
}
