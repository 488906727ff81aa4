package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soocke/login-bot-go/app"
	"github.com/soocke/login-bot-go/config"
	"github.com/soocke/login-bot-go/domain/ocr/tesseract"
	"github.com/soocke/login-bot-go/domain/window"
	"github.com/soocke/login-bot-go/ui"
)

var (
	configPath string
	debugFlag  bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "autologin",
	Short: "Log into the game launcher by watching the screen",
	Long: `Without a subcommand the login window opens: enter the account, press
Start Login and the automation drives the launcher until the game is entered.
The login and inspect subcommands run the same automation headless.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runWindow,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the JSON config (default: autologin.json next to the executable)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or text (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// exeDir is the directory holding the running executable, or the working
// directory when it cannot be determined.
func exeDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	wd, _ := os.Getwd()
	return wd
}

// configFile is the --config path or autologin.json next to the executable.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(exeDir(), "autologin.json")
}

func runWindow(cmd *cobra.Command, args []string) error {
	c, _, err := setup()
	if err != nil {
		return err
	}
	ui.NewApp("Genshin Auto Login", 460, 680, c, configFile()).Start()
	return nil
}

// setup loads .env and config, builds the logger and the container.
func setup() (*app.Container, *slog.Logger, error) {
	dir := exeDir()
	dotenvErr := config.LoadDotEnv(dir)
	path := configFile()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if debugFlag {
		cfg.Debug = true
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	logger := NewLogger(cfg.Level(), cfg.LogFormat, os.Stderr)
	if dotenvErr != nil {
		logger.Warn("env file ignored", "error", dotenvErr)
	}
	if err := window.EnableDPIAwareness(); err != nil {
		logger.Debug("dpi awareness not enabled", "error", err)
	}
	logger.Debug("config loaded", "path", path, "window_class", cfg.WindowClass)
	return app.BuildContainer(cfg, logger, dir, tesseract.New), logger, nil
}
