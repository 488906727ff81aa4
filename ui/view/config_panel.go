package view

import (
	"log/slog"
	"strings"

	"github.com/soocke/login-bot-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings form. Edits are written to the config file;
// the automation picks them up on the next program start.
type ConfigPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges()
}

type configPanel struct {
	form     *model.ConfigForm
	logger   *slog.Logger
	status   *LabelWidget
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget
}

func NewConfigPanel(form *model.ConfigForm, logger *slog.Logger) ConfigPanel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &configPanel{form: form, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(parent *FrameWidget, startRow int) (row int) {
	row = startRow
	values := v.form.Values()
	for _, f := range v.form.Fields() {
		lbl := Label(Txt(f.Label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(28))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", values[f.ID])
		v.widgets[f.ID] = w
		row++
	}
	v.applyBtn = Button(Txt("Save Settings"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, In(parent), Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.status = Label(Txt(""), Anchor("w"))
	Grid(v.status, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

func (v *configPanel) ApplyChanges() {
	values := make(map[string]string, len(v.widgets))
	for id, w := range v.widgets {
		values[id] = v.text(w)
	}
	skipped, err := v.form.Apply(values)
	for _, s := range skipped {
		v.logger.Warn("config field ignored", "error", s)
	}
	switch {
	case err != nil:
		v.logger.Error("config save failed", "error", err)
		v.setStatus("Save failed")
	case len(skipped) > 0:
		v.setStatus("Saved; some fields ignored")
	default:
		v.logger.Info("config saved")
		v.setStatus("Saved; restart to apply")
	}
}

func (v *configPanel) setStatus(text string) {
	if v.status != nil {
		v.status.Configure(Txt(text))
	}
}
