package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soocke/login-bot-go/config"
)

// FieldKind selects how a form value is parsed.
type FieldKind int

const (
	TextField FieldKind = iota
	IntField
	BoolField
)

// Field is one editable config value. Get and Set work on a config copy.
type Field struct {
	ID    string
	Label string
	Kind  FieldKind
	Get   func(c *config.Config) string
	Set   func(c *config.Config, v string) error
}

func textField(id, label string, p func(c *config.Config) *string) Field {
	return Field{
		ID: id, Label: label, Kind: TextField,
		Get: func(c *config.Config) string { return *p(c) },
		Set: func(c *config.Config, v string) error { *p(c) = v; return nil },
	}
}

func intField(id, label string, p func(c *config.Config) *int) Field {
	return Field{
		ID: id, Label: label, Kind: IntField,
		Get: func(c *config.Config) string { return strconv.Itoa(*p(c)) },
		Set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*p(c) = n
			return nil
		},
	}
}

func boolField(id, label string, p func(c *config.Config) *bool) Field {
	return Field{
		ID: id, Label: label, Kind: BoolField,
		Get: func(c *config.Config) string { return strconv.FormatBool(*p(c)) },
		Set: func(c *config.Config, v string) error {
			b, ok := parseBoolLoose(v)
			if !ok {
				return fmt.Errorf("not a boolean: %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

// ConfigFields lists the values the settings panel edits, in display order.
func ConfigFields() []Field {
	return []Field{
		textField("tessdata", "Tessdata Path", func(c *config.Config) *string { return &c.TessdataPath }),
		textField("gamePathFile", "Game Path File", func(c *config.Config) *string { return &c.GamePathFile }),
		textField("installFolder", "Install Folder", func(c *config.Config) *string { return &c.InstallFolder }),
		textField("windowClass", "Window Class", func(c *config.Config) *string { return &c.WindowClass }),
		textField("dismissKey", "Dismiss Key (e.g. Escape)", func(c *config.Config) *string { return &c.DismissKey }),
		intField("ocrMinHeight", "OCR Min Height Px", func(c *config.Config) *int { return &c.OCRMinHeight }),
		intField("launchRetries", "Launch Retries", func(c *config.Config) *int { return &c.LaunchRetries }),
		intField("clickGap", "Click Gap Ms", func(c *config.Config) *int { return &c.Timing.ClickGapMs }),
		intField("stage1Wait", "Stage 1 Wait Ms", func(c *config.Config) *int { return &c.Timing.Stage1WaitMs }),
		intField("idleWait", "Idle Wait Ms", func(c *config.Config) *int { return &c.Timing.IdleWaitMs }),
		intField("pausedWait", "Paused Wait Ms", func(c *config.Config) *int { return &c.Timing.PausedWaitMs }),
		intField("injectStep", "Inject Step Ms", func(c *config.Config) *int { return &c.Timing.InjectStepMs }),
		intField("errorWait", "Error Wait Ms", func(c *config.Config) *int { return &c.Timing.ErrorWaitMs }),
		boolField("debug", "Debug (true/false)", func(c *config.Config) *bool { return &c.Debug }),
	}
}

// ConfigForm applies edited field values to a config and persists it.
// The zero value is not usable; use NewConfigForm.
type ConfigForm struct {
	cfg    *config.Config
	path   string
	fields []Field
}

func NewConfigForm(cfg *config.Config, path string) *ConfigForm {
	return &ConfigForm{cfg: cfg, path: path, fields: ConfigFields()}
}

// Fields returns the editable fields in display order.
func (f *ConfigForm) Fields() []Field { return f.fields }

// Values returns the current display value of every field.
func (f *ConfigForm) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fd := range f.fields {
		out[fd.ID] = fd.Get(f.cfg)
	}
	return out
}

// Apply parses values into a copy of the config. Empty values keep the
// current setting and unparsable ones are reported and skipped. The copy is
// validated, written back and saved; the returned errors list the skipped
// fields, and the error is the save failure if any.
func (f *ConfigForm) Apply(values map[string]string) (skipped []error, err error) {
	if f == nil || f.cfg == nil {
		return nil, nil
	}
	next := *f.cfg
	for _, fd := range f.fields {
		v, ok := values[fd.ID]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" && fd.Kind != TextField {
			continue
		}
		if err := fd.Set(&next, v); err != nil {
			skipped = append(skipped, fmt.Errorf("%s: %w", fd.Label, err))
		}
	}
	if err := next.Validate(); err != nil {
		return skipped, err
	}
	*f.cfg = next
	if f.path == "" {
		return skipped, nil
	}
	return skipped, f.cfg.Save(f.path)
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
