// Package view builds the Tk widgets of the login window.
package view

import (
	"log/slog"
	"time"

	"github.com/soocke/login-bot-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the window: credentials, run buttons, status lines and
// the settings panel. Presenters talk to it through UI.
type RootView struct {
	form   *model.ConfigForm
	logger *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel

	// Widgets
	StageLabel    *LabelWidget
	ActivityLabel *LabelWidget
	ResultLabel   *LabelWidget
	userEntry     *TEntryWidget
	passEntry     *TEntryWidget
	startBtn      *ButtonWidget
	stopBtn       *ButtonWidget
}

// UI is the subset of view operations the presenters need.
type UI interface {
	SetStageLabel(text string)
	SetActivityLabel(text string)
	SetResultLabel(text string)
	SetRunControls(running bool)
	ConfigEditable(enabled bool)
	SetSession(run, total time.Duration)
}

var _ UI = (*RootView)(nil)

func NewRootView(form *model.ConfigForm, logger *slog.Logger) *RootView {
	return &RootView{form: form, logger: logger}
}

// Build constructs the layout. onStart receives the entered credentials.
func (rv *RootView) Build(onStart func(username, password string), onStop func(), onExit func()) {
	if rv == nil {
		return
	}
	// Rows 0-1: credentials
	creds := Frame()
	Grid(creds, Row(0), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Grid(Label(Txt("Username"), Anchor("w")), In(creds), Row(0), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.2m"))
	rv.userEntry = TEntry(Textvariable(""), Width(28))
	Grid(rv.userEntry, In(creds), Row(0), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))
	Grid(Label(Txt("Password"), Anchor("w")), In(creds), Row(1), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.2m"))
	rv.passEntry = TEntry(Textvariable(""), Show("*"), Width(28))
	Grid(rv.passEntry, In(creds), Row(1), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.2m"))

	// Row 1: buttons
	btnFrame := Frame()
	Grid(btnFrame, Row(1), Column(0), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.startBtn = Button(Txt("Start Login"), Command(func() {
		onStart(rv.userEntry.Textvariable(), rv.passEntry.Textvariable())
	}))
	Grid(rv.startBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.stopBtn = Button(Txt("Stop"), State("disabled"), Command(onStop))
	Grid(rv.stopBtn, In(btnFrame), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(onExit))
	Grid(exitBtn, In(btnFrame), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Rows 2-4: status
	status := Frame()
	Grid(status, Row(2), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.StageLabel = Label(Txt("Stage: -"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(rv.StageLabel, In(status), Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ActivityLabel = Label(Txt("Idle"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(rv.ActivityLabel, In(status), Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.Session = NewSessionStats(status, 2, 0)
	rv.ResultLabel = Label(Txt(""), Anchor("w"))
	Grid(rv.ResultLabel, In(status), Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Settings
	settings := Frame(Borderwidth(1), Relief("groove"))
	Grid(settings, Row(3), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	rv.ConfigPanel = NewConfigPanel(rv.form, rv.logger)
	rv.ConfigPanel.Build(settings, 0)
}

func (rv *RootView) SetStageLabel(text string) {
	if rv != nil && rv.StageLabel != nil {
		rv.StageLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetActivityLabel(text string) {
	if rv != nil && rv.ActivityLabel != nil {
		rv.ActivityLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetResultLabel(text string) {
	if rv != nil && rv.ResultLabel != nil {
		rv.ResultLabel.Configure(Txt(text))
	}
}

// SetRunControls enables Stop while a run is active and Start otherwise.
func (rv *RootView) SetRunControls(running bool) {
	if rv == nil || rv.startBtn == nil || rv.stopBtn == nil {
		return
	}
	start, stop := "normal", "disabled"
	if running {
		start, stop = "disabled", "normal"
	}
	rv.startBtn.Configure(State(start))
	rv.stopBtn.Configure(State(stop))
}

// ConfigEditable toggles the settings panel.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// SetSession updates the run and total durations.
func (rv *RootView) SetSession(run, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetRun(run)
	rv.Session.SetTotal(total)
}
