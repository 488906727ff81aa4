package presenter

import "time"

// Loop drives the presenters from the Tk event loop.
//
// Schedule re-arms the next tick. The zero value is usable (methods are
// nil-safe).
type Loop struct {
	Status   *StatusPresenter
	Session  *SessionPresenter
	Login    *LoginPresenter
	Schedule func()
}

func NewLoop(status *StatusPresenter, sess *SessionPresenter, login *LoginPresenter, schedule func()) *Loop {
	return &Loop{Status: status, Session: sess, Login: login, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Login != nil {
		l.Login.Tick(now)
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
