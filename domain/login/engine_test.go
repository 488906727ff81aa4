package login

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/domain/input/inputtest"
	"github.com/soocke/login-bot-go/domain/layout"
	"github.com/soocke/login-bot-go/metrics"
)

var discardLogger = slog.New(slog.DiscardHandler)

// fakeScreen serves pixel samples from a map and blank region captures.
type fakeScreen struct {
	mu       sync.Mutex
	pixels   map[image.Point]color.RGBA
	samples  int
	captures int
	failCaps atomic.Bool
}

func (f *fakeScreen) set(p image.Point, c color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pixels == nil {
		f.pixels = map[image.Point]color.RGBA{}
	}
	f.pixels[p] = c
}

func (f *fakeScreen) clear() {
	f.mu.Lock()
	f.pixels = nil
	f.mu.Unlock()
}

func (f *fakeScreen) SamplePixel(p image.Point) (color.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples++
	return f.pixels[p], nil
}

func (f *fakeScreen) CaptureRegion(r image.Rectangle) (*image.RGBA, error) {
	f.mu.Lock()
	f.captures++
	f.mu.Unlock()
	if f.failCaps.Load() {
		return nil, errors.New("capture failed")
	}
	return image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

func (f *fakeScreen) counts() (samples, captures int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples, f.captures
}

// fakeOCR returns canned text per region. Regions are told apart by the size
// of the captured image.
type fakeOCR struct {
	mu     sync.Mutex
	sizes  map[image.Point]layout.RegionID
	texts  map[layout.RegionID]string
	calls  int
	panics int
}

func newFakeOCR(m *coords.Mapper) *fakeOCR {
	f := &fakeOCR{sizes: map[image.Point]layout.RegionID{}, texts: map[layout.RegionID]string{}}
	for _, id := range layout.Regions() {
		f.sizes[m.RegionRect(layout.Region(id)).Size()] = id
	}
	return f
}

func (f *fakeOCR) say(id layout.RegionID, text string) {
	f.mu.Lock()
	f.texts[id] = text
	f.mu.Unlock()
}

func (f *fakeOCR) panicNext(n int) {
	f.mu.Lock()
	f.panics = n
	f.mu.Unlock()
}

func (f *fakeOCR) Recognize(img image.Image) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panics > 0 {
		f.panics--
		panic("ocr engine crashed")
	}
	id, ok := f.sizes[img.Bounds().Size()]
	if !ok {
		return ""
	}
	return f.texts[id]
}

func (f *fakeOCR) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFocus struct {
	foreground atomic.Bool
	inside     atomic.Bool
	panics     atomic.Bool
}

func (f *fakeFocus) IsForeground(uintptr) bool {
	if f.panics.Load() {
		panic("focus check crashed")
	}
	return f.foreground.Load()
}

func (f *fakeFocus) IsPointerInside(coords.WindowMetrics) bool { return f.inside.Load() }

type fakeSource struct {
	mu sync.Mutex
	m  coords.WindowMetrics
}

func (f *fakeSource) CaptureMetrics(uintptr) (coords.WindowMetrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.m, nil
}

type harness struct {
	eng    *Engine
	screen *fakeScreen
	ocr    *fakeOCR
	input  *inputtest.Recorder
	focus  *fakeFocus
	rec    *metrics.Recorder
	window coords.WindowMetrics
	mapper *coords.Mapper
}

func fastTimings() Timings {
	return Timings{
		ClickGap:        time.Millisecond,
		OtherAccountGap: time.Millisecond,
		ConfirmSettle:   time.Millisecond,
		Stage1Wait:      2 * time.Millisecond,
		IdleWait:        time.Millisecond,
		PausedWait:      time.Millisecond,
		ErrorWaitStage1: 2 * time.Millisecond,
		ErrorWait:       time.Millisecond,
		StopTimeout:     time.Second,
		InjectLead:      time.Millisecond,
		InjectAfterUser: time.Millisecond,
		InjectStep:      time.Millisecond,
		InjectSettle:    time.Millisecond,
	}
}

// newHarness uses the 1920x1080 client at (100,50).
func newHarness(t *testing.T, timings Timings) *harness {
	t.Helper()
	window := coords.WindowMetrics{Origin: image.Pt(100, 50), Width: 1920, Height: 1080, Handle: 42}
	mapper := coords.NewMapper(window, discardLogger)
	h := &harness{
		screen: &fakeScreen{},
		ocr:    newFakeOCR(mapper),
		input:  &inputtest.Recorder{},
		focus:  &fakeFocus{},
		rec:    metrics.New(),
		window: window,
		mapper: mapper,
	}
	h.focus.foreground.Store(true)
	h.focus.inside.Store(true)
	h.eng = NewEngine(Deps{
		Screen:   h.screen,
		OCR:      h.ocr,
		Input:    h.input,
		Focus:    h.focus,
		Recorder: h.rec,
	}, timings, discardLogger)
	t.Cleanup(h.eng.Stop)
	return h
}

func (h *harness) screenPoint(t *testing.T, p coords.Point) image.Point {
	t.Helper()
	sp, ok := h.mapper.Convert(p)
	if !ok {
		t.Fatalf("cannot map %v", p)
	}
	return sp
}

func (h *harness) showCheck(t *testing.T, id layout.CheckID) {
	cp := layout.Check(id)
	h.screen.set(h.screenPoint(t, cp.Point), cp.Color)
}

func (h *harness) start(t *testing.T, creds Credentials, onComplete func(Result)) *Session {
	t.Helper()
	s, err := h.eng.Start(Run{Credentials: creds, Window: h.window, OnComplete: onComplete})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func waitResult(t *testing.T, s *Session, timeout time.Duration) Result {
	t.Helper()
	select {
	case r := <-s.Done():
		return r
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for run result")
	}
	return Result{}
}

type stageRecorder struct {
	mu  sync.Mutex
	seq [][2]Stage
}

func (r *stageRecorder) listener(prev, next Stage) {
	r.mu.Lock()
	r.seq = append(r.seq, [2]Stage{prev, next})
	r.mu.Unlock()
}

func (r *stageRecorder) transitions() [][2]Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]Stage(nil), r.seq...)
}

func TestStage1_AccountMenuClicksMappedTarget(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.showCheck(t, layout.CheckAccountMenu)
	h.start(t, Credentials{}, nil)

	waitFor(t, time.Second, "stage2", func() bool { return h.eng.Stage() == Stage2 })
	clicks := h.input.Clicks()
	if len(clicks) < 2 {
		t.Fatalf("expected two clicks, got %v", clicks)
	}
	if clicks[0] != image.Pt(141, 1076) {
		t.Fatalf("first click: got %v want (141,1076)", clicks[0])
	}
	if want := h.screenPoint(t, layout.Target(layout.TargetLogout)); clicks[1] != want {
		t.Fatalf("second click: got %v want %v", clicks[1], want)
	}
	if keys := h.input.Keys(); len(keys) != 0 {
		t.Fatalf("no key expected when a check point matched, got %v", keys)
	}
}

func TestStage1_NothingDetectedPressesDismissKey(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "escape", func() bool {
		keys := h.input.Keys()
		return len(keys) >= 2 && keys[0] == input.Escape
	})
	if h.eng.Stage() != Stage1 {
		t.Fatalf("stage must not change, got %v", h.eng.Stage())
	}
	if len(h.input.Clicks()) != 0 {
		t.Fatalf("unexpected clicks: %v", h.input.Clicks())
	}
}

func TestStage2_LogoutDialogClickThrough(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.showCheck(t, layout.CheckAccountMenu)
	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "stage2", func() bool { return h.eng.Stage() == Stage2 })

	h.screen.clear()
	h.input.Reset()
	h.showCheck(t, layout.CheckLogoutDialog)
	dialog := h.screenPoint(t, layout.Target(layout.TargetLogoutDialog))
	confirm := h.screenPoint(t, layout.Target(layout.TargetConfirmLogout))
	waitFor(t, time.Second, "dialog click-through", func() bool {
		c := h.input.Clicks()
		return len(c) >= 2 && c[0] == dialog && c[1] == confirm
	})
	if h.eng.Stage() != Stage2 {
		t.Fatalf("dialog click-through must stay in stage2, got %v", h.eng.Stage())
	}
}

func TestSMSCue_InjectsAndCompletes(t *testing.T) {
	h := newHarness(t, fastTimings())
	stages := &stageRecorder{}
	h.eng.AddListener(stages.listener)
	h.ocr.say(layout.RegionSMS, "手短信")

	var callbacks atomic.Int32
	var success atomic.Bool
	s := h.start(t, Credentials{Username: "alice", Password: "secret"}, func(r Result) {
		callbacks.Add(1)
		success.Store(r.Success())
	})

	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	if got := h.input.Pastes(); len(got) != 2 || got[0] != "alice" || got[1] != "secret" {
		t.Fatalf("unexpected pastes: %v", got)
	}
	if got := h.input.Keys(); len(got) != 2 || got[0] != input.Tab || got[1] != input.Enter {
		t.Fatalf("unexpected keys: %v", got)
	}
	field := h.screenPoint(t, layout.Target(layout.TargetAccountField))
	submit := h.screenPoint(t, layout.Target(layout.TargetSubmit))
	if c := h.input.Clicks(); len(c) != 2 || c[0] != field || c[1] != submit {
		t.Fatalf("unexpected clicks: %v", c)
	}

	h.ocr.say(layout.RegionClickEnter, "点击进入")
	r := waitResult(t, s, time.Second)
	if r.Outcome != OutcomeSucceeded || !r.Success() {
		t.Fatalf("expected success, got %+v", r)
	}
	if c := h.input.Clicks(); c[len(c)-1] != image.Pt(1060, 590) {
		t.Fatalf("expected final click at client centre, got %v", c[len(c)-1])
	}
	<-s.Exited()
	if callbacks.Load() != 1 || !success.Load() {
		t.Fatalf("completion callback: calls=%d success=%v", callbacks.Load(), success.Load())
	}
	if h.eng.Running() {
		t.Fatalf("engine must stop after success")
	}
	want := [][2]Stage{{Stage1, Stage2}, {Stage2, Stage3}}
	got := stages.transitions()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("transitions: got %v want %v", got, want)
	}
	if v := h.rec.Summary()["autologin_runs_total{outcome=succeeded}"]; v != 1 {
		t.Fatalf("expected one succeeded run in metrics, got %v", v)
	}
}

func TestOtherAccountCue_ClicksBeforeInjection(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.ocr.say(layout.RegionOtherAccount, "登录其他账号")
	h.ocr.say(layout.RegionSMS, "手机短信")
	h.start(t, Credentials{Username: "alice", Password: "secret"}, nil)

	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	other := h.screenPoint(t, layout.Target(layout.TargetOtherAccount))
	field := h.screenPoint(t, layout.Target(layout.TargetAccountField))
	c := h.input.Clicks()
	if len(c) < 2 || c[0] != other || c[1] != field {
		t.Fatalf("other-account cue must win and click %v then %v, got %v", other, field, c)
	}
}

func TestMissingCredentials_SkipTypingButAdvance(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.ocr.say(layout.RegionSMS, "短信")
	h.start(t, Credentials{Username: "alice"}, nil)
	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	if p := h.input.Pastes(); len(p) != 0 {
		t.Fatalf("no paste expected without a password, got %v", p)
	}
}

func TestInjectionErrors_StillAdvance(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.input.FailNextPastes(2)
	h.ocr.say(layout.RegionSMS, "sms")
	h.start(t, Credentials{Username: "alice", Password: "secret"}, nil)
	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	if keys := h.input.Keys(); len(keys) != 2 {
		t.Fatalf("remaining steps must run after paste failures, keys=%v", keys)
	}
}

func TestPause_NoSideEffectsWithoutFocus(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.focus.foreground.Store(false)
	h.showCheck(t, layout.CheckAccountMenu)
	h.ocr.say(layout.RegionSMS, "手短信")
	h.start(t, Credentials{Username: "alice", Password: "secret"}, nil)

	waitFor(t, time.Second, "paused", h.eng.Paused)
	time.Sleep(30 * time.Millisecond)
	if a := h.input.Actions(); len(a) != 0 {
		t.Fatalf("paused engine injected input: %v", a)
	}
	if samples, captures := h.screen.counts(); samples != 0 || captures != 0 {
		t.Fatalf("paused engine touched the screen: samples=%d captures=%d", samples, captures)
	}
	if h.ocr.callCount() != 0 {
		t.Fatalf("paused engine ran OCR")
	}
	if v := h.rec.Summary()["autologin_paused_ticks_total"]; v == 0 {
		t.Fatalf("paused ticks not counted")
	}

	h.focus.foreground.Store(true)
	waitFor(t, time.Second, "resume", func() bool { return h.eng.Stage() >= Stage2 })
	if h.eng.Paused() {
		t.Fatalf("engine still paused after focus returned")
	}
}

func TestPause_PointerOutside(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.focus.inside.Store(false)
	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "paused", h.eng.Paused)
	time.Sleep(20 * time.Millisecond)
	if a := h.input.Actions(); len(a) != 0 {
		t.Fatalf("pointer outside must pause, got %v", a)
	}
}

func TestStageMonotonic(t *testing.T) {
	h := newHarness(t, fastTimings())
	stages := &stageRecorder{}
	h.eng.AddListener(stages.listener)
	h.showCheck(t, layout.CheckAccountMenu)
	s := h.start(t, Credentials{Username: "u1", Password: "p1"}, nil)
	waitFor(t, time.Second, "stage2", func() bool { return h.eng.Stage() == Stage2 })
	h.screen.clear()
	h.ocr.say(layout.RegionOtherAccount, "其他账号")
	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	// Cues reappearing in Stage3 must not move the stage back.
	h.showCheck(t, layout.CheckAccountMenu)
	h.ocr.say(layout.RegionClickEnter, "进入")
	waitResult(t, s, time.Second)

	for _, tr := range stages.transitions() {
		if tr[1] <= tr[0] {
			t.Fatalf("non-monotonic transition %v -> %v", tr[0], tr[1])
		}
		if tr[1]-tr[0] != 1 {
			t.Fatalf("transition %v -> %v skips a stage", tr[0], tr[1])
		}
	}
}

func TestStageMonotonic_Stage1CuePassesThroughStage2(t *testing.T) {
	h := newHarness(t, fastTimings())
	stages := &stageRecorder{}
	h.eng.AddListener(stages.listener)
	h.ocr.say(layout.RegionOtherAccount, "login")
	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	got := stages.transitions()
	if len(got) != 2 || got[0] != [2]Stage{Stage1, Stage2} || got[1] != [2]Stage{Stage2, Stage3} {
		t.Fatalf("expected 1->2->3, got %v", got)
	}
}

func TestStop_DuringInjectionCompletesSequence(t *testing.T) {
	timings := fastTimings()
	timings.InjectStep = 20 * time.Millisecond
	h := newHarness(t, timings)
	h.ocr.say(layout.RegionSMS, "手短信")

	var stopOnce sync.Once
	stopped := make(chan struct{})
	h.input.SetHook(func(a inputtest.Action) {
		if a.Kind == inputtest.Paste {
			stopOnce.Do(func() {
				go func() {
					h.eng.Stop()
					close(stopped)
				}()
			})
		}
	})
	s := h.start(t, Credentials{Username: "alice", Password: "secret"}, nil)

	r := waitResult(t, s, 2*time.Second)
	<-stopped
	if r.Outcome != OutcomeCancelled || r.Success() {
		t.Fatalf("expected cancelled result, got %+v", r)
	}
	if p := h.input.Pastes(); len(p) != 2 {
		t.Fatalf("injection interrupted, pastes=%v", p)
	}
	if k := h.input.Keys(); len(k) != 2 || k[0] != input.Tab || k[1] != input.Enter {
		t.Fatalf("injection interrupted, keys=%v", k)
	}
	submit := h.screenPoint(t, layout.Target(layout.TargetSubmit))
	if c := h.input.Clicks(); c[len(c)-1] != submit {
		t.Fatalf("submit click missing, clicks=%v", c)
	}
	if h.eng.Stage() != Stage1 {
		t.Fatalf("stopped engine must report stage1, got %v", h.eng.Stage())
	}
	if h.eng.Injecting() || h.eng.Running() {
		t.Fatalf("flags not cleared after stop")
	}
}

func TestStop_ReturnsWithinTimeout(t *testing.T) {
	timings := fastTimings()
	timings.StopTimeout = 50 * time.Millisecond
	timings.InjectLead = 300 * time.Millisecond
	h := newHarness(t, timings)
	h.ocr.say(layout.RegionSMS, "手短信")
	s := h.start(t, Credentials{Username: "alice", Password: "secret"}, nil)
	waitFor(t, time.Second, "injecting", h.eng.Injecting)

	begin := time.Now()
	h.eng.Stop()
	if d := time.Since(begin); d > 250*time.Millisecond {
		t.Fatalf("stop blocked for %v", d)
	}
	r := waitResult(t, s, 2*time.Second)
	if r.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %+v", r)
	}
}

func TestTickPanic_RecoveredAndRetried(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.ocr.panicNext(1)
	h.ocr.say(layout.RegionSMS, "短信")
	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "stage3", func() bool { return h.eng.Stage() == Stage3 })
	if v := h.rec.Summary()["autologin_tick_errors_total{stage=stage1}"]; v < 1 {
		t.Fatalf("tick error not counted: %v", v)
	}
}

func TestLoopPanic_FailsRun(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.focus.panics.Store(true)
	var got atomic.Int32
	s := h.start(t, Credentials{}, func(r Result) {
		if !r.Success() {
			got.Add(1)
		}
	})
	r := waitResult(t, s, time.Second)
	if r.Outcome != OutcomeFailed || !errors.Is(r.Err, ErrLoopPanic) {
		t.Fatalf("expected failed run with ErrLoopPanic, got %+v", r)
	}
	<-s.Exited()
	if got.Load() != 1 {
		t.Fatalf("callback must fire once with false, got %d", got.Load())
	}
}

func TestStart_ReplacesPreviousRun(t *testing.T) {
	h := newHarness(t, fastTimings())
	first := h.start(t, Credentials{}, nil)
	second := h.start(t, Credentials{}, nil)
	select {
	case <-first.Exited():
	default:
		t.Fatalf("previous polling goroutine still alive after restart")
	}
	if r := waitResult(t, first, time.Second); r.Outcome != OutcomeCancelled {
		t.Fatalf("replaced run must be cancelled, got %+v", r)
	}
	if !h.eng.Running() || h.eng.Stage() != Stage1 {
		t.Fatalf("new run must be live at stage1")
	}
	h.eng.Stop()
	if r := waitResult(t, second, time.Second); r.Outcome != OutcomeCancelled {
		t.Fatalf("expected cancelled, got %+v", r)
	}
}

func TestStart_RequiresWindow(t *testing.T) {
	h := newHarness(t, fastTimings())
	if _, err := h.eng.Start(Run{}); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("expected ErrNoWindow, got %v", err)
	}
	if h.eng.Running() {
		t.Fatalf("engine must not run without a window")
	}
}

func TestMetricsRefresh_RemapsTargets(t *testing.T) {
	timings := fastTimings()
	timings.MetricsRefresh = time.Millisecond
	h := newHarness(t, timings)
	full := coords.WindowMetrics{Width: 3840, Height: 2160, Handle: 42}
	h.eng.deps.Source = &fakeSource{m: full}
	cp := layout.Check(layout.CheckAccountMenu)
	h.screen.set(image.Pt(cp.Point.X, cp.Point.Y), cp.Color)

	h.start(t, Credentials{}, nil)
	waitFor(t, time.Second, "stage2", func() bool { return h.eng.Stage() == Stage2 })
	target := layout.Target(layout.TargetAccountMenu)
	if c := h.input.Clicks(); len(c) == 0 || c[0] != image.Pt(target.X, target.Y) {
		t.Fatalf("expected click in refreshed geometry at %v, got %v", target, c)
	}
}

func TestOCRResults_CountEmptyAndCaptureErrors(t *testing.T) {
	h := newHarness(t, fastTimings())
	h.screen.failCaps.Store(true)
	h.start(t, Credentials{}, nil)

	key := "autologin_ocr_results_total{region=sms,result=capture_error}"
	waitFor(t, time.Second, "capture errors", func() bool { return h.rec.Summary()[key] > 0 })
	if h.ocr.callCount() != 0 {
		t.Fatalf("OCR must not run on failed captures")
	}

	h.screen.failCaps.Store(false)
	empty := "autologin_ocr_results_total{region=sms,result=empty}"
	waitFor(t, time.Second, "empty results", func() bool { return h.rec.Summary()[empty] > 0 })

	h.ocr.say(layout.RegionSMS, "手短信")
	hit := "autologin_ocr_results_total{region=sms,result=hit}"
	waitFor(t, time.Second, "hit", func() bool { return h.rec.Summary()[hit] == 1 })
}
