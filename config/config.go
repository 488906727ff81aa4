package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/domain/login"
	"github.com/soocke/login-bot-go/domain/window"
)

// Environment variables that override file values.
const (
	EnvFile         = "AUTOLOGIN_ENV"
	EnvTessdata     = "AUTOLOGIN_TESSDATA"
	EnvGamePathFile = "AUTOLOGIN_GAME_PATH_FILE"
	EnvLogLevel     = "AUTOLOGIN_LOG_LEVEL"
	EnvDebug        = "AUTOLOGIN_DEBUG"
	EnvWindowClass  = "AUTOLOGIN_WINDOW_CLASS"
)

// Config holds runtime configuration for the login automation.
// Fields may be loaded from a JSON file and overridden by the environment.
type Config struct {
	Debug     bool   `json:"debug"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// Game window and launcher
	WindowClass   string `json:"window_class"`
	InstallFolder string `json:"install_folder"`
	GameSubdir    string `json:"game_subdir"`
	ExeName       string `json:"exe_name"`
	GamePathFile  string `json:"game_path_file"`
	ScanDepth     int    `json:"scan_depth"`
	LaunchRetries int    `json:"launch_retries"`
	LaunchPollMs  int    `json:"launch_poll_ms"`

	// Text recognition
	TessdataPath string `json:"tessdata_path"`
	OCRLanguage  string `json:"ocr_language"`
	OCRMinHeight int    `json:"ocr_min_height"`

	DismissKey       string `json:"dismiss_key"`
	MetricsRefreshMs int    `json:"metrics_refresh_ms"`

	Timing Timing `json:"timing"`
}

// Timing lists every delay of the automation in milliseconds.
type Timing struct {
	ClickGapMs        int `json:"click_gap_ms"`
	OtherAccountGapMs int `json:"other_account_gap_ms"`
	ConfirmSettleMs   int `json:"confirm_settle_ms"`
	Stage1WaitMs      int `json:"stage1_wait_ms"`
	IdleWaitMs        int `json:"idle_wait_ms"`
	PausedWaitMs      int `json:"paused_wait_ms"`
	PointerIntervalMs int `json:"pointer_interval_ms"`
	ErrorWaitStage1Ms int `json:"error_wait_stage1_ms"`
	ErrorWaitMs       int `json:"error_wait_ms"`
	StopTimeoutMs     int `json:"stop_timeout_ms"`
	InjectLeadMs      int `json:"inject_lead_ms"`
	InjectAfterUserMs int `json:"inject_after_user_ms"`
	InjectStepMs      int `json:"inject_step_ms"`
	InjectSettleMs    int `json:"inject_settle_ms"`
	ActivateSettleMs  int `json:"activate_settle_ms"`
	RestoreDelayMs    int `json:"restore_delay_ms"`
	ShowDelayMs       int `json:"show_delay_ms"`
	ClickStepMs       int `json:"click_step_ms"`
	KeyHoldMs         int `json:"key_hold_ms"`
	PasteRetryMs      int `json:"paste_retry_ms"`
	PasteSettleMs     int `json:"paste_settle_ms"`
	ChordHoldMs       int `json:"chord_hold_ms"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		LogLevel:         "info",
		LogFormat:        "json",
		WindowClass:      "UnityWndClass",
		InstallFolder:    "Genshin Impact",
		GameSubdir:       "Genshin Impact Game",
		ExeName:          "YuanShen.exe",
		GamePathFile:     "game_path.json",
		ScanDepth:        4,
		LaunchRetries:    15,
		LaunchPollMs:     1000,
		TessdataPath:     "",
		OCRLanguage:      "chi_sim",
		OCRMinHeight:     48,
		DismissKey:       "Escape",
		MetricsRefreshMs: 0,
		Timing:           DefaultTiming(),
	}
}

// DefaultTiming returns the stock delays.
func DefaultTiming() Timing {
	return Timing{
		ClickGapMs:        300,
		OtherAccountGapMs: 200,
		ConfirmSettleMs:   500,
		Stage1WaitMs:      1500,
		IdleWaitMs:        100,
		PausedWaitMs:      100,
		PointerIntervalMs: 200,
		ErrorWaitStage1Ms: 1500,
		ErrorWaitMs:       1000,
		StopTimeoutMs:     1000,
		InjectLeadMs:      500,
		InjectAfterUserMs: 500,
		InjectStepMs:      100,
		InjectSettleMs:    500,
		ActivateSettleMs:  100,
		RestoreDelayMs:    300,
		ShowDelayMs:       200,
		ClickStepMs:       10,
		KeyHoldMs:         50,
		PasteRetryMs:      50,
		PasteSettleMs:     50,
		ChordHoldMs:       10,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if strings.TrimSpace(c.WindowClass) == "" {
		c.WindowClass = d.WindowClass
	}
	if c.InstallFolder == "" {
		c.InstallFolder = d.InstallFolder
	}
	if c.GameSubdir == "" {
		c.GameSubdir = d.GameSubdir
	}
	if c.ExeName == "" {
		c.ExeName = d.ExeName
	}
	if c.GamePathFile == "" {
		c.GamePathFile = d.GamePathFile
	}
	if c.ScanDepth <= 0 {
		c.ScanDepth = d.ScanDepth
	}
	if c.LaunchRetries <= 0 {
		c.LaunchRetries = d.LaunchRetries
	}
	if c.LaunchPollMs <= 0 {
		c.LaunchPollMs = d.LaunchPollMs
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = d.OCRLanguage
	}
	if c.OCRMinHeight < 0 {
		c.OCRMinHeight = 0
	}
	if c.DismissKey == "" {
		c.DismissKey = d.DismissKey
	}
	if c.MetricsRefreshMs < 0 {
		c.MetricsRefreshMs = 0
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
		c.LogFormat = strings.ToLower(c.LogFormat)
	default:
		c.LogFormat = d.LogFormat
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = d.LogLevel
	}
	c.Timing.clamp(DefaultTiming())
	return nil
}

// clamp replaces negative delays with their defaults. Zero is kept: it turns
// the corresponding wait off.
func (t *Timing) clamp(d Timing) {
	fields := []struct {
		v   *int
		def int
	}{
		{&t.ClickGapMs, d.ClickGapMs},
		{&t.OtherAccountGapMs, d.OtherAccountGapMs},
		{&t.ConfirmSettleMs, d.ConfirmSettleMs},
		{&t.Stage1WaitMs, d.Stage1WaitMs},
		{&t.IdleWaitMs, d.IdleWaitMs},
		{&t.PausedWaitMs, d.PausedWaitMs},
		{&t.PointerIntervalMs, d.PointerIntervalMs},
		{&t.ErrorWaitStage1Ms, d.ErrorWaitStage1Ms},
		{&t.ErrorWaitMs, d.ErrorWaitMs},
		{&t.StopTimeoutMs, d.StopTimeoutMs},
		{&t.InjectLeadMs, d.InjectLeadMs},
		{&t.InjectAfterUserMs, d.InjectAfterUserMs},
		{&t.InjectStepMs, d.InjectStepMs},
		{&t.InjectSettleMs, d.InjectSettleMs},
		{&t.ActivateSettleMs, d.ActivateSettleMs},
		{&t.RestoreDelayMs, d.RestoreDelayMs},
		{&t.ShowDelayMs, d.ShowDelayMs},
		{&t.ClickStepMs, d.ClickStepMs},
		{&t.KeyHoldMs, d.KeyHoldMs},
		{&t.PasteRetryMs, d.PasteRetryMs},
		{&t.PasteSettleMs, d.PasteSettleMs},
		{&t.ChordHoldMs, d.ChordHoldMs},
	}
	for _, f := range fields {
		if *f.v < 0 {
			*f.v = f.def
		}
	}
	// A zero stop timeout would never join the polling goroutine.
	if t.StopTimeoutMs == 0 {
		t.StopTimeoutMs = d.StopTimeoutMs
	}
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	_ = cfg.Validate()
	return cfg, nil
}

// LoadDotEnv loads the file named by AUTOLOGIN_ENV, or .env in dir, into the
// process environment. Variables that are already set win. A missing file is
// not an error.
func LoadDotEnv(dir string) error {
	path := os.Getenv(EnvFile)
	if path == "" {
		path = filepath.Join(dir, ".env")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with the AUTOLOGIN_* variables returned by
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTessdata); v != "" {
		c.TessdataPath = v
	}
	if v := getenv(EnvGamePathFile); v != "" {
		c.GamePathFile = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvWindowClass); v != "" {
		c.WindowClass = v
	}
	if v := getenv(EnvDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

type gamePathFile struct {
	GamePath string `json:"GamePath"`
}

// LoadGamePath reads { "GamePath": "..." } from path. Any failure yields "".
func LoadGamePath(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var gp gamePathFile
	if err := json.Unmarshal(b, &gp); err != nil {
		return ""
	}
	return strings.TrimSpace(gp.GamePath)
}

// ResolvePath makes p absolute against dir unless it already is.
func ResolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// LoginTimings converts the timing block for the detection engine.
func (c *Config) LoginTimings() login.Timings {
	t := c.Timing
	return login.Timings{
		ClickGap:        ms(t.ClickGapMs),
		OtherAccountGap: ms(t.OtherAccountGapMs),
		ConfirmSettle:   ms(t.ConfirmSettleMs),
		Stage1Wait:      ms(t.Stage1WaitMs),
		IdleWait:        ms(t.IdleWaitMs),
		PausedWait:      ms(t.PausedWaitMs),
		PointerInterval: ms(t.PointerIntervalMs),
		ErrorWaitStage1: ms(t.ErrorWaitStage1Ms),
		ErrorWait:       ms(t.ErrorWaitMs),
		StopTimeout:     ms(t.StopTimeoutMs),
		InjectLead:      ms(t.InjectLeadMs),
		InjectAfterUser: ms(t.InjectAfterUserMs),
		InjectStep:      ms(t.InjectStepMs),
		InjectSettle:    ms(t.InjectSettleMs),
		MetricsRefresh:  ms(c.MetricsRefreshMs),
	}
}

// WindowConfig converts the window section for the window controller.
func (c *Config) WindowConfig() window.Config {
	return window.Config{
		Class:         c.WindowClass,
		LaunchRetries: c.LaunchRetries,
		PollInterval:  ms(c.LaunchPollMs),
		RestoreDelay:  ms(c.Timing.RestoreDelayMs),
		SettleDelay:   ms(c.Timing.ShowDelayMs),
	}
}

// InputTimings converts the injector delays.
func (c *Config) InputTimings() input.Timings {
	t := c.Timing
	return input.Timings{
		ClickStep:   ms(t.ClickStepMs),
		KeyHold:     ms(t.KeyHoldMs),
		PasteRetry:  ms(t.PasteRetryMs),
		PasteSettle: ms(t.PasteSettleMs),
		ChordHold:   ms(t.ChordHoldMs),
	}
}

// ActivateSettle is the pause between activating the window and reading its
// metrics.
func (c *Config) ActivateSettle() time.Duration { return ms(c.Timing.ActivateSettleMs) }

// Key returns the configured dismiss key.
func (c *Config) Key() input.Key { return input.ParseKey(c.DismissKey) }
