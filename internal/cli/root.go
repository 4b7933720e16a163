// Package cli implements the tripbot command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/m3rciful/tripbot/core/buildinfo"
	corecmd "github.com/m3rciful/tripbot/core/cmd"
	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/internal/app"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string

	loggerInit     func(*coreconfig.Config) error
	shutdownLogger func() error
}

// NewRootCommand creates the root command for the tripbot CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		loggerInit:     logger.InitLogger,
		shutdownLogger: logger.Shutdown,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tripbot",
		Short:         "Telegram bot taking trip and parcel orders",
		Long:          "Collects trip and parcel orders over Telegram and forwards them to the operator.",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"config file (default $"+configEnvVar+", then "+defaultConfigPath+")")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func (o *RootOptions) loadConfig() (*app.Config, error) {
	path, err := corecmd.ResolveConfigPath(o.ConfigPath, configEnvVar, defaultConfigPath)
	if err != nil {
		return nil, err
	}
	return app.Load(path)
}

// openApp loads the config and opens storage without the Telegram side.
// The returned func releases everything openApp acquired.
func (o *RootOptions) openApp() (*app.App, func(), error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, app.Options{LoggerInit: o.loggerInit})
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		_ = a.Close()
		if o.shutdownLogger != nil {
			_ = o.shutdownLogger()
		}
	}
	return a, release, nil
}
