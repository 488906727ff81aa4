package presenter

import (
	"time"

	"github.com/soocke/login-bot-go/ui/model"
)

// RunningSource reports whether a login run is active.
type RunningSource interface{ Running() bool }

// SessionView displays the current run and accumulated durations.
type SessionView interface {
	SetSession(run, total time.Duration)
}

// SessionPresenter advances the session model from the engine's running flag
// and pushes durations to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  RunningSource
	view SessionView
}

func NewSessionPresenter(sess *model.SessionModel, src RunningSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.src.Running(), now)
	p.view.SetSession(p.sess.Values())
}
