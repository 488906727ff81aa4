// Package login drives the launcher's login screens: it polls the game window,
// recognises the current screen by pixel colour or OCR, clicks through it and
// types the credentials.
package login

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/metrics"
)

// Deps are the collaborators of the engine. Source is optional and only used
// when Timings.MetricsRefresh is non-zero.
type Deps struct {
	Screen   Screen
	OCR      Recognizer
	Input    input.Injector
	Focus    Focus
	Source   MetricsSource
	Recorder *metrics.Recorder

	// DismissKey is pressed when Stage1 recognises nothing.
	DismissKey input.Key
	// OCRMinHeight upscales captured regions shorter than this before OCR.
	OCRMinHeight int
}

// Run is one automation request.
type Run struct {
	Credentials Credentials
	Window      coords.WindowMetrics
	// OnComplete, when set, receives the result from the polling goroutine.
	OnComplete func(Result)
}

// Engine owns at most one polling goroutine at a time.
type Engine struct {
	deps    Deps
	timings Timings
	logger  *slog.Logger
	now     func() time.Time

	startMu   sync.Mutex // serialises Start
	mu        sync.Mutex
	session   *Session
	listeners []StageListener
}

func NewEngine(deps Deps, t Timings, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if deps.DismissKey == 0 {
		deps.DismissKey = input.Escape
	}
	return &Engine{deps: deps, timings: t, logger: logger, now: time.Now}
}

// AddListener registers a transition listener for current and future runs.
func (e *Engine) AddListener(l StageListener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()
}

// Start stops any previous run, waits for its goroutine (bounded) and starts
// a new polling goroutine.
func (e *Engine) Start(run Run) (*Session, error) {
	if run.Window.Handle == 0 {
		return nil, ErrNoWindow
	}
	e.startMu.Lock()
	defer e.startMu.Unlock()
	if prev := e.current(); prev != nil {
		prev.requestStop()
		if !prev.join(e.timings.StopTimeout) {
			return nil, ErrAlreadyRunning
		}
	}
	s := newSession(run, e.logger)
	e.mu.Lock()
	e.session = s
	e.mu.Unlock()
	e.logger.Info("login run started",
		"user", run.Credentials.MaskedUsername(),
		"origin", run.Window.Origin.String(),
		"width", run.Window.Width,
		"height", run.Window.Height)
	go e.loop(s)
	return s, nil
}

// Stop requests cancellation and waits up to StopTimeout for the polling
// goroutine. It returns even if the goroutine is still finishing an input
// sequence.
func (e *Engine) Stop() {
	s := e.current()
	if s == nil {
		return
	}
	s.requestStop()
	if !s.join(e.timings.StopTimeout) {
		e.logger.Warn("polling goroutine did not stop in time", "timeout", e.timings.StopTimeout)
	}
}

func (e *Engine) current() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Stage reports the current stage. A stopped or never-started engine is at
// Stage1.
func (e *Engine) Stage() Stage {
	s := e.current()
	if s == nil || s.stopped.Load() {
		return Stage1
	}
	return s.Stage()
}

func (e *Engine) Running() bool {
	s := e.current()
	return s != nil && s.running.Load()
}

func (e *Engine) Paused() bool {
	s := e.current()
	return s != nil && s.paused.Load()
}

func (e *Engine) Injecting() bool {
	s := e.current()
	return s != nil && s.injecting.Load()
}

// Session is the state of one run. Stage, flags and window metrics are
// written only by the polling goroutine; Stop only flips flags.
type Session struct {
	creds      Credentials
	onComplete func(Result)

	stage     atomic.Int32
	running   atomic.Bool
	paused    atomic.Bool
	injecting atomic.Bool
	stopped   atomic.Bool

	window      coords.WindowMetrics
	mapper      *coords.Mapper
	lastRefresh time.Time

	stopOnce   sync.Once
	stopCh     chan struct{}
	exited     chan struct{}
	resultOnce sync.Once
	resultCh   chan Result
}

func newSession(run Run, logger *slog.Logger) *Session {
	s := &Session{
		creds:      run.Credentials,
		onComplete: run.OnComplete,
		window:     run.Window,
		mapper:     coords.NewMapper(run.Window, logger),
		stopCh:     make(chan struct{}),
		exited:     make(chan struct{}),
		resultCh:   make(chan Result, 1),
	}
	s.stage.Store(int32(Stage1))
	s.running.Store(true)
	return s
}

func (s *Session) Stage() Stage { return Stage(s.stage.Load()) }

// Done yields the result once.
func (s *Session) Done() <-chan Result { return s.resultCh }

// Exited is closed when the polling goroutine has returned.
func (s *Session) Exited() <-chan struct{} { return s.exited }

func (s *Session) requestStop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.running.Store(false)
		close(s.stopCh)
	})
}

func (s *Session) join(timeout time.Duration) bool {
	select {
	case <-s.exited:
		return true
	case <-time.After(timeout):
		return false
	}
}

// finish resolves the run. Later calls are ignored.
func (s *Session) finish(r Result) bool {
	first := false
	s.resultOnce.Do(func() {
		first = true
		s.resultCh <- r
	})
	if first && s.onComplete != nil {
		s.onComplete(r)
	}
	return first
}

// wait sleeps at a tick boundary; a stop request ends it early.
func (s *Session) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.stopCh:
	}
}

func (e *Engine) loop(s *Session) {
	rec := e.deps.Recorder
	defer close(s.exited)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("polling loop panic", "error", r, "stack", string(debug.Stack()))
			s.running.Store(false)
			if s.finish(Result{Outcome: OutcomeFailed, Err: fmt.Errorf("%w: %v", ErrLoopPanic, r)}) {
				rec.Run(OutcomeFailed.String())
			}
		}
	}()

	gate := newFocusGate(e.deps.Focus, e.timings.PointerInterval, e.now, e.logger)
	for s.running.Load() {
		e.refreshMetrics(s)
		if gate.check(s.window) {
			s.paused.Store(true)
			rec.PausedTick()
			s.wait(e.timings.PausedWait)
			continue
		}
		s.paused.Store(false)
		stage := s.Stage()
		rec.Tick(stage.String())
		if err := e.safeTick(s, stage); err != nil {
			rec.TickError(stage.String())
			e.logger.Warn("tick failed", "stage", stage.String(), "error", err)
			if stage == Stage1 {
				s.wait(e.timings.ErrorWaitStage1)
			} else {
				s.wait(e.timings.ErrorWait)
			}
		}
	}
	s.paused.Store(false)
	if s.finish(Result{Outcome: OutcomeCancelled}) {
		rec.Run(OutcomeCancelled.String())
		e.logger.Info("login run cancelled", "stage", s.Stage().String())
	}
}

func (e *Engine) safeTick(s *Session, stage Stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick panic", "stage", stage.String(), "error", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("login: tick panic: %v", r)
		}
	}()
	switch stage {
	case Stage1:
		return e.stage1(s)
	case Stage2:
		return e.stage2(s)
	case Stage3:
		return e.stage3(s)
	}
	return fmt.Errorf("login: unknown stage %d", stage)
}

// advance moves s forward. Backward or repeated transitions are ignored.
func (e *Engine) advance(s *Session, next Stage) {
	prev := s.Stage()
	if next <= prev {
		return
	}
	s.stage.Store(int32(next))
	e.deps.Recorder.Transition(next.String())
	e.logger.Info("stage transition", "from", prev.String(), "to", next.String())
	e.mu.Lock()
	ls := append([]StageListener(nil), e.listeners...)
	e.mu.Unlock()
	for _, l := range ls {
		func() {
			defer recoverLog(e.logger, "stage listener panic")
			l(prev, next)
		}()
	}
}

// refreshMetrics re-reads the window geometry when periodic refresh is on.
func (e *Engine) refreshMetrics(s *Session) {
	if e.deps.Source == nil || e.timings.MetricsRefresh <= 0 {
		return
	}
	now := e.now()
	if !s.lastRefresh.IsZero() && now.Sub(s.lastRefresh) < e.timings.MetricsRefresh {
		return
	}
	s.lastRefresh = now
	m, err := e.deps.Source.CaptureMetrics(s.window.Handle)
	if err != nil {
		e.logger.Debug("metrics refresh failed", "error", err)
		return
	}
	if m == s.window {
		return
	}
	e.logger.Info("window metrics changed", "origin", m.Origin.String(), "width", m.Width, "height", m.Height)
	s.window = m
	s.mapper = coords.NewMapper(m, e.logger)
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		logger.Error(msg, "error", r)
	}
}
