// Package cmd holds the process entry shared by bot binaries: resolve and
// load the config, bootstrap the app, run Telegram until a signal arrives.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/logger"
	coretelegram "github.com/m3rciful/tripbot/core/telegram"
)

const defaultConfigEnv = "CONFIG_PATH"

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	// ConfigPath wins over ConfigEnvVar, which wins over DefaultConfigPath.
	ConfigPath        string
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

// Run loads configuration, bootstraps the Telegram app and blocks in the
// bot runtime until SIGINT or SIGTERM.
func Run(opts Options) (err error) {
	if opts.LoadConfig == nil || opts.Bootstrap == nil {
		return errors.New("cmd: LoadConfig and Bootstrap are required")
	}

	path, err := ResolveConfigPath(opts.ConfigPath, opts.ConfigEnvVar, opts.DefaultConfigPath)
	if err != nil {
		return err
	}
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config %s: %w", path, err)
	}
	if cfg.CoreConfig() == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	startedAt := time.Now()
	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}

	shutdown := opts.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	defer func() {
		if flushErr := shutdown(); flushErr != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", flushErr)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: build telegram options: %w", err)
	}
	announceLifecycle(&runOpts, path, startedAt)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

// announceLifecycle chains ready and shutdown log lines onto the app's hooks.
func announceLifecycle(opts *coretelegram.RunOptions, cfgPath string, startedAt time.Time) {
	appLog := logger.L.With("component", "app")

	onStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.LogEvent(ctx, appLog, slog.LevelInfo, "ready",
			slog.String("config", cfgPath),
			slog.Duration("startup_duration", logger.Took(startedAt)),
		)
		return nil
	}

	onStop := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.LogEvent(ctx, appLog, slog.LevelInfo, "shutdown")
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

// ResolveConfigPath picks the config file: explicit path, then the
// environment variable (CONFIG_PATH when env is empty), then def.
func ResolveConfigPath(explicit, env, def string) (string, error) {
	if env == "" {
		env = defaultConfigEnv
	}
	for _, p := range []string{explicit, os.Getenv(env), def} {
		if p != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("cmd: config path not provided via flag, %s or default", env)
}
