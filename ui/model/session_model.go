// Package model holds UI state that does not depend on Tk.
package model

import "time"

// SessionModel tracks the elapsed time of the current login run, the time
// spent running across all runs and how many runs were started.
// Presenters feed it the engine's running flag on every tick.
type SessionModel struct {
	active   bool
	runStart time.Time
	lastRun  time.Duration
	total    time.Duration
	runs     int
}

func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick advances the model. A false→true change of running starts a new run.
func (m *SessionModel) OnTick(running bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case running && !m.active:
		m.active = true
		m.runStart = now
		m.lastRun = 0
		m.runs++
	case running:
		m.lastRun = now.Sub(m.runStart)
	case m.active:
		m.lastRun = now.Sub(m.runStart)
		m.total += m.lastRun
		m.active = false
	}
}

// Values returns the current (or last) run duration and the total, which
// includes an ongoing run.
func (m *SessionModel) Values() (run, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	run, total = m.lastRun, m.total
	if m.active {
		total += run
	}
	return run, total
}

// Runs counts started runs.
func (m *SessionModel) Runs() int {
	if m == nil {
		return 0
	}
	return m.runs
}
