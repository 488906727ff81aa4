package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/soocke/login-bot-go/debug"
	"github.com/soocke/login-bot-go/domain/login"
	"github.com/soocke/login-bot-go/metrics"
)

// EnvPassword supplies the password without a prompt.
const EnvPassword = "AUTOLOGIN_PASSWORD"

var errLoginFailed = errors.New("login did not succeed")

var (
	loginUsername string
	metricsAddr   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log into the launcher with the given account",
	Long: `Locate (or launch) the game window, log out of the current account if
needed and type the given credentials into the login form.

The password is read from AUTOLOGIN_PASSWORD or prompted for without echo.
Ctrl+C cancels the run. With --metrics-addr the run counters are served in
Prometheus text format at /metrics while the run lasts.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account name")
	loginCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics on this address (e.g. 127.0.0.1:9464)")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, logger, err := setup()
	if err != nil {
		return err
	}
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	auto := c.Automation
	auto.Engine().AddListener(func(prev, next login.Stage) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s -> %s\n", prev, next)
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			logger.Info("interrupt received")
			auto.StopAutomation()
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, c.Metrics, logger)
		defer srv.Close()
	}
	if c.Config.Debug {
		debug.Watch(ctx, 2*time.Second, logger.With("component", "debug"))
	}
	startErr := auto.StartAutomation(ctx, loginUsername, password)
	r := <-auto.Done()
	logger.Info("metrics summary", "counters", c.Metrics.Summary())
	if startErr != nil {
		return startErr
	}
	if !r.Success() {
		return fmt.Errorf("%w: %s", errLoginFailed, r.Outcome)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "login succeeded")
	return nil
}

func metricsHandler(rec *metrics.Recorder) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// serveMetrics exposes the recorder's registry until the server is closed.
func serveMetrics(addr string, rec *metrics.Recorder, logger *slog.Logger) *http.Server {
	srv := &http.Server{Addr: addr, Handler: metricsHandler(rec), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}

func readPassword(cmd *cobra.Command) (string, error) {
	if p := os.Getenv(EnvPassword); p != "" {
		return p, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal for password prompt; set %s", EnvPassword)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
