// Package cli wires configuration, logging and the backend into the
// front ends and maps failures to exit codes.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"gtodo/internal/backend/remote"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/logging"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tui"
)

// Version is reported by `gtodo version`.
var Version = "0.1.0"

// ServiceFactory creates a Service from config.
// Used to inject the backend during startup.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *logging.Logger) (service.Service, error)

// TUIFunc runs the full-screen front end until the operator quits.
type TUIFunc func(ctx context.Context, ctl *session.Controller, username string) error

// Options configures Execute. Nil fields select the production behavior.
type Options struct {
	Factory ServiceFactory
	TUI     TUIFunc

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// EnvFile is a dotenv file loaded before the environment is read.
	// Empty disables dotenv loading.
	EnvFile string
}

// RemoteFactory builds the HTTP backend.
func RemoteFactory(ctx context.Context, cfg *config.Config, logger *logging.Logger) (service.Service, error) {
	return remote.New(ctx, cfg, logger)
}

func runTUI(ctx context.Context, ctl *session.Controller, username string) error {
	return tui.Run(ctx, ctl, username)
}

func (o Options) withDefaults() Options {
	if o.Factory == nil {
		o.Factory = RemoteFactory
	}
	if o.TUI == nil {
		o.TUI = runTUI
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	return o
}

// app is the per-invocation state shared by the commands.
type app struct {
	opts    Options
	v       *viper.Viper
	cfgFile string

	cfg    *config.Config
	logger *logging.Logger
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	a := &app{opts: opts.withDefaults(), v: viper.New()}

	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		if err != nil {
			a.logger.Error("command failed", "error", err)
		}
		_ = a.logger.Close()
	}
	if err != nil {
		fmt.Fprintf(a.opts.Err, "error: %v\n", err)
	}
	return exitcode.From(err)
}

// setup resolves configuration. It runs before every command except version
// and help. Each front end opens its own log afterwards.
func (a *app) setup() error {
	if err := config.Init(a.v, a.cfgFile, a.opts.EnvFile); err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	a.cfg = cfg
	return nil
}

// openFileLog opens the log at --log-file, or at debug.log in the config
// directory. The full-screen interface owns the terminal, so it always logs
// to a file.
func (a *app) openFileLog() error {
	if a.cfg.Log.File == "" {
		if err := a.cfg.EnsureDir(); err != nil {
			return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("failed to create config dir: %w", err))
		}
	}
	logger, err := logging.NewLogger(a.cfg.LogPath(), a.cfg.Log.Level)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, fmt.Errorf("failed to open log: %w", err))
	}
	a.useLogger(logger)
	return nil
}

// openStreamLog logs to w unless --log-file is given.
func (a *app) openStreamLog(w io.Writer) error {
	if a.cfg.Log.File != "" {
		return a.openFileLog()
	}
	a.useLogger(logging.NewWriterLogger(w, a.cfg.Log.Level))
	return nil
}

func (a *app) useLogger(logger *logging.Logger) {
	a.logger = logger
	a.logger.Debug("config loaded",
		"config_file", a.v.ConfigFileUsed(),
		"base_url", a.cfg.BaseURL,
		"log_level", a.cfg.Log.Level,
	)
}

// newController builds the backend and the session over it.
func (a *app) newController(ctx context.Context) (*session.Controller, error) {
	svc, err := a.opts.Factory(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.RuntimeError, fmt.Errorf("backend error: %w", err))
	}
	ctl := session.New(svc, a.logger)
	ctl.SetUsername(a.cfg.Username)
	return ctl, nil
}
