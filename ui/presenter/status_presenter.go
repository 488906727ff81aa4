package presenter

import (
	"sync"
	"time"

	"github.com/soocke/login-bot-go/domain/login"
)

// EngineStatus is the part of the login engine the status presenter polls.
type EngineStatus interface {
	Stage() login.Stage
	Running() bool
	Paused() bool
	Injecting() bool
}

// StatusView shows the stage and what the engine is doing right now.
type StatusView interface {
	SetStageLabel(text string)
	SetActivityLabel(text string)
}

// StatusPresenter reflects engine state into the view. Stage transitions
// arrive through OnStage from the polling goroutine and are applied on the
// next Tick, which runs on the Tk thread.
type StatusPresenter struct {
	eng  EngineStatus
	view StatusView

	mu      sync.Mutex
	pending []login.Stage

	stage    login.Stage
	activity string
}

func NewStatusPresenter(eng EngineStatus, view StatusView) *StatusPresenter {
	return &StatusPresenter{eng: eng, view: view}
}

// OnStage is a login.StageListener.
func (p *StatusPresenter) OnStage(prev, next login.Stage) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick pushes changed labels to the view. A queued transition wins over the
// polled stage so a short-lived stage is still shown once.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.eng == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()

	stage := p.eng.Stage()
	if n := len(queued); n > 0 {
		stage = queued[n-1]
	}
	if stage != p.stage {
		p.stage = stage
		p.view.SetStageLabel("Stage: " + stageText(stage))
	}
	if a := activityText(p.eng.Running(), p.eng.Paused(), p.eng.Injecting()); a != p.activity {
		p.activity = a
		p.view.SetActivityLabel(a)
	}
}

func stageText(s login.Stage) string {
	switch s {
	case login.Stage1:
		return "1 · account menu"
	case login.Stage2:
		return "2 · login form"
	case login.Stage3:
		return "3 · click to enter"
	default:
		return s.String()
	}
}

func activityText(running, paused, injecting bool) string {
	switch {
	case !running:
		return "Idle"
	case injecting:
		return "Typing credentials"
	case paused:
		return "Paused: game window not focused"
	default:
		return "Watching screen"
	}
}
