// Package ui hosts the Tk login window around the automation facade.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/soocke/login-bot-go/app"
	"github.com/soocke/login-bot-go/debug"
	"github.com/soocke/login-bot-go/ui/model"
	"github.com/soocke/login-bot-go/ui/presenter"
	"github.com/soocke/login-bot-go/ui/view"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const tick = 100 * time.Millisecond

type window struct {
	c       *app.Container
	cfgPath string
	width   int
	height  int
	afterID string
	cancel  context.CancelFunc

	root   *view.RootView
	login  *presenter.LoginPresenter
	loop   *presenter.Loop
	closed bool
}

// NewApp configures the Tk root window. cfgPath is where the settings panel
// saves.
func NewApp(title string, width, height int, c *app.Container, cfgPath string) *window {
	w := &window{c: c, cfgPath: cfgPath, width: width, height: height}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", w.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return w
}

// Start builds the window, wires presenters to the automation and blocks in
// the Tk event loop until the window closes.
func (w *window) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	logger := w.c.Logger.With("component", "ui")
	auto := w.c.Automation

	w.root = view.NewRootView(model.NewConfigForm(w.c.Config, w.cfgPath), logger)
	status := presenter.NewStatusPresenter(auto.Engine(), w.root)
	session := presenter.NewSessionPresenter(model.NewSessionModel(), auto.Engine(), w.root)
	w.login = presenter.NewLoginPresenter(auto, w.root, logger)

	auto.Engine().AddListener(status.OnStage)
	auto.OnResult(w.login.OnResult)
	auto.OnLoginCompleted(w.login.OnLoginCompleted)

	w.root.Build(w.login.Start, w.login.Stop, w.exitHandler)
	w.loop = presenter.NewLoop(status, session, w.login, w.scheduleUpdate)

	if w.c.Config.Debug {
		debug.Watch(ctx, 2*time.Second, w.c.Logger.With("component", "debug"))
	}
	logger.Info("window ready", "width", w.width, "height", w.height)
	w.scheduleUpdate()
	App.Wait()
}

func (w *window) scheduleUpdate() {
	if w.closed {
		return
	}
	// TclAfter keeps the tick on Tk's event loop thread.
	w.afterID = TclAfter(tick, func() { w.loop.Tick() })
}

func (w *window) exitHandler() {
	if w.closed {
		return
	}
	w.closed = true
	if w.afterID != "" {
		TclAfterCancel(w.afterID)
	}
	if w.login != nil && w.login.Busy() {
		w.c.Automation.StopAutomation()
	}
	if w.cancel != nil {
		w.cancel()
	}
	Destroy(App)
}
