package app

import (
	"log/slog"

	"github.com/soocke/login-bot-go/config"
	"github.com/soocke/login-bot-go/domain/capture"
	"github.com/soocke/login-bot-go/domain/input"
	"github.com/soocke/login-bot-go/domain/ocr"
	"github.com/soocke/login-bot-go/domain/window"
	"github.com/soocke/login-bot-go/metrics"
)

// Container assembles the platform services and the automation facade.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
	Screen     *capture.Screen
	OCR        *ocr.Service
	Input      *input.OS
	Launcher   *window.Launcher
	Window     *window.Controller
	Automation *Automation
}

// BuildContainer constructs all components. baseDir resolves relative paths
// such as the game path file. No OS call is made here.
func BuildContainer(cfg *config.Config, logger *slog.Logger, baseDir string, engines ocr.EngineFactory) *Container {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Container{Config: cfg, Logger: logger}
	c.Metrics = metrics.New()
	c.Screen = capture.NewScreen(logger.With("component", "capture"), c.Metrics)
	c.OCR = ocr.NewService(engines, cfg.OCRLanguage, logger.With("component", "ocr"))
	c.Input = input.NewOS(cfg.InputTimings(), logger.With("component", "input"))
	gamePathFile := config.ResolvePath(baseDir, cfg.GamePathFile)
	c.Launcher = window.NewLauncher(cfg.InstallFolder, cfg.GameSubdir, cfg.ExeName, cfg.ScanDepth,
		func() string { return config.LoadGamePath(gamePathFile) },
		logger.With("component", "launcher"))
	c.Window = window.NewController(cfg.WindowConfig(), c.Launcher, logger.With("component", "window"))
	c.Automation = NewAutomation(Deps{
		Window:   c.Window,
		OCR:      c.OCR,
		Screen:   c.Screen,
		Input:    c.Input,
		Recorder: c.Metrics,
	}, cfg, logger)
	return c
}
