package login

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soocke/login-bot-go/domain/capture"
	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/domain/layout"
)

// cueRegions are read together and classified in this order.
var cueRegions = []layout.RegionID{layout.RegionOtherAccount, layout.RegionSMS}

// stage1 looks for the account badge or the logout dialog, then for a login
// form. With nothing recognised it presses the dismiss key. A Stage1 tick that
// did not fail ends with Stage1Wait.
func (e *Engine) stage1(s *Session) error {
	if err := e.detectEntry(s); err != nil {
		return err
	}
	s.wait(e.timings.Stage1Wait)
	return nil
}

func (e *Engine) detectEntry(s *Session) error {
	switch {
	case e.matches(s, layout.CheckAccountMenu):
		e.logger.Debug("account menu detected")
		if err := e.clickPair(s, layout.TargetAccountMenu, layout.TargetLogout, e.timings.ClickGap); err != nil {
			return err
		}
		e.advance(s, Stage2)
		return nil
	case e.matches(s, layout.CheckLogoutDialog):
		e.logger.Debug("logout dialog detected")
		if err := e.clickPair(s, layout.TargetLogoutDialog, layout.TargetConfirmLogout, e.timings.ClickGap); err != nil {
			return err
		}
		e.advance(s, Stage2)
		return nil
	}
	handled, err := e.detectCues(s)
	if err != nil || handled {
		return err
	}
	e.logger.Debug("nothing detected, dismissing overlay", "key", e.deps.DismissKey.String())
	return e.deps.Input.PressKey(e.deps.DismissKey)
}

// stage2 clicks through a reappearing logout dialog or waits for a login form.
func (e *Engine) stage2(s *Session) error {
	if e.matches(s, layout.CheckLogoutDialog) {
		e.logger.Debug("logout dialog detected")
		if err := e.clickPair(s, layout.TargetLogoutDialog, layout.TargetConfirmLogout, e.timings.ClickGap); err != nil {
			return err
		}
		time.Sleep(e.timings.ConfirmSettle)
		return nil
	}
	handled, err := e.detectCues(s)
	if err != nil {
		return err
	}
	if !handled {
		s.wait(e.timings.IdleWait)
	}
	return nil
}

// stage3 waits for the "click to enter" prompt, clicks the client centre and
// completes the run.
func (e *Engine) stage3(s *Session) error {
	id := layout.RegionClickEnter
	text := e.readRegion(s, id)
	if !IsClickEnter(text) {
		if text != "" {
			e.deps.Recorder.OCRResult(id.String(), "miss")
		}
		s.wait(e.timings.IdleWait)
		return nil
	}
	e.deps.Recorder.OCRResult(id.String(), "hit")
	e.logger.Info("click to enter detected", "text", text)
	center, ok := s.mapper.Center()
	if !ok {
		return fmt.Errorf("%w: client centre", ErrUnmapped)
	}
	if err := e.deps.Input.Click(center); err != nil {
		return err
	}
	s.running.Store(false)
	if s.finish(Result{Outcome: OutcomeSucceeded}) {
		e.deps.Recorder.Run(OutcomeSucceeded.String())
		e.logger.Info("login run succeeded")
	}
	return nil
}

// detectCues reads the cue regions concurrently, then handles the first one
// that classifies as a cue.
func (e *Engine) detectCues(s *Session) (bool, error) {
	texts := make([]string, len(cueRegions))
	var g errgroup.Group
	for i, id := range cueRegions {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("login: region %s: %v", id, r)
				}
			}()
			texts[i] = e.readRegion(s, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for i, id := range cueRegions {
		if texts[i] == "" {
			continue
		}
		cue := Classify(id, texts[i])
		e.logger.Debug("ocr", "region", id.String(), "text", texts[i], "cue", cue.String())
		if cue == CueNone {
			e.deps.Recorder.OCRResult(id.String(), "miss")
			continue
		}
		e.deps.Recorder.OCRResult(id.String(), "hit")
		return true, e.handleCue(s, cue)
	}
	return false, nil
}

// readRegion captures one layout region and recognises it. Capture failures
// read as no text. Unreadable regions are counted as capture_error and blank
// recognitions as empty; hit and miss are counted by the caller.
func (e *Engine) readRegion(s *Session, id layout.RegionID) string {
	region := layout.Region(id)
	rect := s.mapper.RegionRect(region)
	if rect.Empty() {
		e.logger.Debug("region not mappable", "region", id.String())
		e.deps.Recorder.OCRResult(id.String(), "capture_error")
		return ""
	}
	img, err := e.deps.Screen.CaptureRegion(rect)
	if err != nil {
		e.logger.Debug("region capture failed", "region", id.String(), "error", err)
		e.deps.Recorder.OCRResult(id.String(), "capture_error")
		return ""
	}
	text := e.deps.OCR.Recognize(capture.PrepareForOCR(img, e.deps.OCRMinHeight))
	if text == "" {
		e.deps.Recorder.OCRResult(id.String(), "empty")
	}
	return text
}

func (e *Engine) handleCue(s *Session, cue Cue) error {
	e.logger.Info("login form detected", "cue", cue.String())
	e.advance(s, Stage2)
	switch cue {
	case CueOtherAccount:
		if err := e.clickPair(s, layout.TargetOtherAccount, layout.TargetAccountField, e.timings.OtherAccountGap); err != nil {
			return err
		}
	case CueSMS:
		if err := e.click(s, layout.TargetAccountField); err != nil {
			return err
		}
	}
	e.inject(s)
	e.advance(s, Stage3)
	return nil
}

// inject types the credentials into the focused form. Errors and panics are
// logged; the caller advances to Stage3 regardless.
func (e *Engine) inject(s *Session) {
	if !s.creds.Complete() {
		e.logger.Info("no credentials, skipping input")
		return
	}
	s.injecting.Store(true)
	defer s.injecting.Store(false)
	defer recoverLog(e.logger, "credential input panic")

	t := e.timings
	in := e.deps.Input
	steps := []struct {
		name string
		pre  time.Duration
		do   func() error
	}{
		{"paste username", t.InjectLead, func() error { return in.PasteText(s.creds.Username) }},
		{"tab", t.InjectAfterUser, func() error { return in.PressKey(input.Tab) }},
		{"paste password", t.InjectStep, func() error { return in.PasteText(s.creds.Password) }},
		{"enter", t.InjectStep, func() error { return in.PressKey(input.Enter) }},
		{"submit", t.InjectStep, func() error { return e.click(s, layout.TargetSubmit) }},
	}
	e.logger.Info("entering credentials", "user", s.creds.MaskedUsername())
	for _, st := range steps {
		time.Sleep(st.pre)
		if err := st.do(); err != nil {
			e.logger.Warn("credential input step failed", "step", st.name, "error", err)
		}
	}
	time.Sleep(t.InjectSettle)
}

func (e *Engine) matches(s *Session, id layout.CheckID) bool {
	cp := layout.Check(id)
	p, ok := s.mapper.Convert(cp.Point)
	if !ok {
		return false
	}
	c, err := e.deps.Screen.SamplePixel(p)
	if err != nil {
		e.logger.Debug("pixel sample failed", "check", id.String(), "error", err)
		return false
	}
	return cp.Matches(c)
}

func (e *Engine) click(s *Session, id layout.TargetID) error {
	ref := layout.Target(id)
	p, ok := s.mapper.Convert(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnmapped, id)
	}
	e.logger.Debug("click", "target", id.String(), "ref", ref.String(), "screen", p.String())
	return e.deps.Input.Click(p)
}

// clickPair clicks first, waits gap, clicks second.
func (e *Engine) clickPair(s *Session, first, second layout.TargetID, gap time.Duration) error {
	if err := e.click(s, first); err != nil {
		return err
	}
	time.Sleep(gap)
	return e.click(s, second)
}
