package presenter

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/soocke/login-bot-go/domain/login"
)

// Automation starts and stops login runs.
type Automation interface {
	StartAutomation(ctx context.Context, username, password string) error
	StopAutomation()
}

// ControlView is the form part of the window: run buttons, the settings panel
// and the result line.
type ControlView interface {
	SetRunControls(running bool)
	ConfigEditable(enabled bool)
	SetResultLabel(text string)
}

// LoginPresenter turns Start/Stop clicks into automation calls off the Tk
// thread and shows completions on the next Tick.
type LoginPresenter struct {
	auto   Automation
	view   ControlView
	logger *slog.Logger
	spawn  func(func())

	mu        sync.Mutex
	busy      bool
	cancel    context.CancelFunc
	results   []login.Result
	successes int

	last    *login.Result
	shownOK int
}

func NewLoginPresenter(auto Automation, view ControlView, logger *slog.Logger) *LoginPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoginPresenter{auto: auto, view: view, logger: logger, spawn: func(fn func()) { go fn() }}
}

// Start begins a run unless one is in progress. Window lookup and launch can
// take seconds, so StartAutomation runs on its own goroutine; its outcome
// arrives through OnResult.
func (p *LoginPresenter) Start(username, password string) {
	if p == nil || p.auto == nil || p.view == nil {
		return
	}
	username = strings.TrimSpace(username)
	if username == "" {
		p.view.SetResultLabel("Enter a username first")
		return
	}
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.busy = true
	p.cancel = cancel
	p.mu.Unlock()

	p.view.SetRunControls(true)
	p.view.ConfigEditable(false)
	p.view.SetResultLabel("Starting…")
	p.spawn(func() {
		if err := p.auto.StartAutomation(ctx, username, password); err != nil {
			p.logger.Warn("start automation failed", "error", err)
			return
		}
		// Stop was pressed while the window was being prepared.
		if ctx.Err() != nil {
			p.auto.StopAutomation()
		}
	})
}

// Stop cancels window preparation and the running engine. The engine join is
// bounded but not instant, so it happens off the Tk thread.
func (p *LoginPresenter) Stop() {
	if p == nil || p.auto == nil {
		return
	}
	p.mu.Lock()
	if !p.busy {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if p.view != nil {
		p.view.SetResultLabel("Stopping…")
	}
	p.spawn(p.auto.StopAutomation)
}

// OnResult queues a finished run. Safe from any goroutine.
func (p *LoginPresenter) OnResult(r login.Result) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.results = append(p.results, r)
	p.mu.Unlock()
}

// OnLoginCompleted counts successful logins. Safe from any goroutine.
func (p *LoginPresenter) OnLoginCompleted(success bool) {
	if p == nil || !success {
		return
	}
	p.mu.Lock()
	p.successes++
	p.mu.Unlock()
}

// Busy reports whether a run was started and has not resolved yet.
func (p *LoginPresenter) Busy() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Tick applies the latest queued result to the view. The success count comes
// from OnLoginCompleted, which may land a tick after the result.
func (p *LoginPresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	queued := p.results
	p.results = nil
	successes := p.successes
	if len(queued) > 0 {
		p.busy = false
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
	p.mu.Unlock()
	if n := len(queued); n > 0 {
		r := queued[n-1]
		p.last = &r
		p.view.SetRunControls(false)
		p.view.ConfigEditable(true)
	} else if successes == p.shownOK {
		return
	}
	p.shownOK = successes
	if p.last != nil {
		p.view.SetResultLabel(resultText(*p.last, successes))
	}
}

func resultText(r login.Result, successes int) string {
	switch r.Outcome {
	case login.OutcomeSucceeded:
		if successes > 1 {
			return "Login succeeded (" + strconv.Itoa(successes) + " this session)"
		}
		return "Login succeeded"
	case login.OutcomeCancelled:
		return "Stopped"
	default:
		if errors.Is(r.Err, context.Canceled) {
			return "Stopped"
		}
		if r.Err != nil {
			return "Login failed: " + r.Err.Error()
		}
		return "Login failed"
	}
}
