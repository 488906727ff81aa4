package login

import (
	"log/slog"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
)

// focusGate decides whether a tick may act. The foreground check runs every
// tick; the pointer check at most once per interval. Only the polling
// goroutine touches it.
type focusGate struct {
	src      Focus
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	lastPointerCheck time.Time
	focused          bool
	pointerInside    bool
	paused           bool
}

func newFocusGate(src Focus, interval time.Duration, now func() time.Time, logger *slog.Logger) *focusGate {
	return &focusGate{src: src, interval: interval, now: now, logger: logger}
}

// check refreshes the focus checks and reports whether the tick must be skipped.
// Pause and resume are logged once per change.
func (g *focusGate) check(m coords.WindowMetrics) bool {
	if g.src == nil {
		return false
	}
	g.focused = g.src.IsForeground(m.Handle)
	if now := g.now(); g.lastPointerCheck.IsZero() || now.Sub(g.lastPointerCheck) >= g.interval {
		g.pointerInside = g.src.IsPointerInside(m)
		g.lastPointerCheck = now
	}
	pause := !g.focused || !g.pointerInside
	if pause != g.paused {
		g.paused = pause
		if pause {
			g.logger.Info("detection paused", "focused", g.focused, "pointer_inside", g.pointerInside)
		} else {
			g.logger.Info("detection resumed")
		}
	}
	return pause
}
