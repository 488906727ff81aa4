package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the current run duration and the total across runs.
type SessionStats interface {
	SetRun(d time.Duration)
	SetTotal(d time.Duration)
}

type sessionStats struct {
	runLbl   *LabelWidget
	totalLbl *LabelWidget
}

// NewSessionStats places the run label at (row, startCol) and the total label
// at (row, startCol+1) inside parent.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{runLbl: Label(Width(14), Anchor("w")), totalLbl: Label(Width(14), Anchor("w"))}
	Grid(s.runLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	s.SetRun(0)
	s.SetTotal(0)
	return s
}

func (s *sessionStats) SetRun(d time.Duration) {
	if s == nil || s.runLbl == nil {
		return
	}
	s.runLbl.Configure(Txt("Run: " + clock(d)))
}

func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

func clock(d time.Duration) string {
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
