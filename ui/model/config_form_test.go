package model

import (
	"path/filepath"
	"testing"

	"github.com/soocke/login-bot-go/config"
)

func TestConfigForm_ValuesReflectConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TessdataPath = `D:\tessdata`
	f := NewConfigForm(cfg, "")
	v := f.Values()
	if v["tessdata"] != `D:\tessdata` || v["stage1Wait"] != "1500" {
		t.Fatalf("unexpected values: %v", v)
	}
	if len(v) != len(f.Fields()) {
		t.Fatalf("every field needs a value: %d vs %d", len(v), len(f.Fields()))
	}
}

func TestConfigForm_ApplySavesAndSkipsBadValues(t *testing.T) {
	t.Setenv(config.EnvTessdata, "")
	t.Setenv(config.EnvGamePathFile, "")
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvWindowClass, "")
	t.Setenv(config.EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "autologin.json")
	cfg := config.DefaultConfig()
	f := NewConfigForm(cfg, path)

	skipped, err := f.Apply(map[string]string{
		"tessdata":     " C:\\tess ",
		"gamePathFile": "gp.json",
		"clickGap":     "450",
		"idleWait":     "abc",
		"pausedWait":   "",
		"debug":        "yes",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("expected the bad idle wait to be skipped, got %v", skipped)
	}
	if cfg.TessdataPath != `C:\tess` || cfg.GamePathFile != "gp.json" || !cfg.Debug {
		t.Fatalf("text/bool fields not applied: %+v", cfg)
	}
	if cfg.Timing.ClickGapMs != 450 {
		t.Fatalf("click gap: %d", cfg.Timing.ClickGapMs)
	}
	def := config.DefaultTiming()
	if cfg.Timing.IdleWaitMs != def.IdleWaitMs || cfg.Timing.PausedWaitMs != def.PausedWaitMs {
		t.Fatalf("skipped fields must keep their values: %+v", cfg.Timing)
	}

	saved, err := config.Load(path)
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if saved.Timing.ClickGapMs != 450 || saved.TessdataPath != `C:\tess` {
		t.Fatalf("saved config differs: %+v", saved)
	}
}

func TestConfigForm_ApplyValidates(t *testing.T) {
	cfg := config.DefaultConfig()
	f := NewConfigForm(cfg, "")
	if _, err := f.Apply(map[string]string{"windowClass": "", "launchRetries": "-3"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.WindowClass != "UnityWndClass" || cfg.LaunchRetries != 15 {
		t.Fatalf("validate must restore defaults: class=%q retries=%d", cfg.WindowClass, cfg.LaunchRetries)
	}
}

func TestParseBoolLoose(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "Y": true, "on": true, "0": false, "off": false} {
		got, ok := parseBoolLoose(in)
		if !ok || got != want {
			t.Errorf("parseBoolLoose(%q) = %v, %v", in, got, ok)
		}
	}
	if _, ok := parseBoolLoose("maybe"); ok {
		t.Errorf("expected maybe to be rejected")
	}
}
