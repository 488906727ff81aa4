// Package window locates, launches and activates the game window and reports
// its client-area geometry.
package window

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/login-bot-go/domain/coords"
)

var (
	ErrWindowNotFound = errors.New("window: not found")
	ErrUnsupported    = errors.New("window: not supported on this platform")
	ErrLaunchTimeout  = errors.New("window: game did not open a window in time")
)

// ShowWindow commands.
const (
	swShowNormal = 1
	swShow       = 5
	swRestore    = 9
)

// backend is the thin OS surface the controller drives.
type backend interface {
	FindWindow(class string) uintptr
	IsIconic(h uintptr) bool
	SendRestore(h uintptr)
	ShowWindow(h uintptr, cmd int)
	SetForeground(h uintptr) bool
	BringToTop(h uintptr) bool
	ClientMetrics(h uintptr) (coords.WindowMetrics, error)
	Foreground() uintptr
	CursorPos() (image.Point, bool)
}

// Config controls window lookup and launch.
type Config struct {
	Class         string
	LaunchRetries int
	PollInterval  time.Duration
	RestoreDelay  time.Duration
	SettleDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Class:         "UnityWndClass",
		LaunchRetries: 15,
		PollInterval:  time.Second,
		RestoreDelay:  300 * time.Millisecond,
		SettleDelay:   200 * time.Millisecond,
	}
}

// Controller is the window-facing half of the automation.
type Controller struct {
	cfg      Config
	os       backend
	launcher *Launcher
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// NewController returns a controller for the current platform. launcher may
// be nil, in which case a missing window is never launched.
func NewController(cfg Config, launcher *Launcher, logger *slog.Logger) *Controller {
	return newController(cfg, newBackend(), launcher, logger)
}

func newController(cfg Config, b backend, launcher *Launcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Class == "" {
		cfg.Class = DefaultConfig().Class
	}
	return &Controller{cfg: cfg, os: b, launcher: launcher, logger: logger, sleep: time.Sleep}
}

// Find returns the handle of the first top-level window with the configured
// class.
func (c *Controller) Find() (uintptr, error) {
	if h := c.os.FindWindow(c.cfg.Class); h != 0 {
		return h, nil
	}
	return 0, fmt.Errorf("%w: class %q", ErrWindowNotFound, c.cfg.Class)
}

// LocateOrLaunch finds the game window, launching the game and polling for
// its window when none exists yet.
func (c *Controller) LocateOrLaunch(ctx context.Context) (uintptr, error) {
	if h, err := c.Find(); err == nil {
		c.logger.Debug("window found", "class", c.cfg.Class, "hwnd", h)
		return h, nil
	}
	if c.launcher == nil {
		return 0, fmt.Errorf("%w: class %q", ErrWindowNotFound, c.cfg.Class)
	}
	if err := c.launcher.Launch(); err != nil {
		return 0, fmt.Errorf("window: launch: %w", err)
	}
	c.logger.Info("game launched, waiting for window", "retries", c.cfg.LaunchRetries)
	for i := 0; i < c.cfg.LaunchRetries; i++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
		if h, err := c.Find(); err == nil {
			c.logger.Info("window appeared", "attempt", i+1, "hwnd", h)
			return h, nil
		}
	}
	return 0, ErrLaunchTimeout
}

// Activate restores a minimised window, shows it and tries to bring it to the
// foreground. It reports whether either foreground call succeeded.
func (c *Controller) Activate(h uintptr) bool {
	if h == 0 {
		return false
	}
	if c.os.IsIconic(h) {
		c.os.SendRestore(h)
		c.sleep(c.cfg.RestoreDelay)
		c.os.ShowWindow(h, swRestore)
		c.os.ShowWindow(h, swShowNormal)
	} else {
		c.os.ShowWindow(h, swShow)
	}
	c.sleep(c.cfg.SettleDelay)
	return c.os.SetForeground(h) || c.os.BringToTop(h)
}

// CaptureMetrics returns the client-area origin (screen coordinates) and size.
func (c *Controller) CaptureMetrics(h uintptr) (coords.WindowMetrics, error) {
	if h == 0 {
		return coords.WindowMetrics{}, ErrWindowNotFound
	}
	m, err := c.os.ClientMetrics(h)
	if err != nil {
		return coords.WindowMetrics{}, err
	}
	m.Handle = h
	return m, nil
}

// IsForeground reports whether h is the foreground window.
func (c *Controller) IsForeground(h uintptr) bool {
	return h != 0 && c.os.Foreground() == h
}

// IsPointerInside reports whether the cursor lies within the client rect,
// left/top inclusive and right/bottom exclusive.
func (c *Controller) IsPointerInside(m coords.WindowMetrics) bool {
	if !m.Valid() {
		return false
	}
	p, ok := c.os.CursorPos()
	if !ok {
		return false
	}
	return p.In(m.ClientRect())
}
