package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	corecmd "github.com/m3rciful/tripbot/core/cmd"
	"github.com/m3rciful/tripbot/internal/app"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long: `Start the bot with long polling or a webhook, as configured.

Examples:
  tripbot run
  tripbot run --config /etc/tripbot/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(runOptions(rootOpts))
		},
	}
}

func runOptions(o *RootOptions) corecmd.Options {
	return corecmd.Options{
		ConfigPath:        o.ConfigPath,
		ConfigEnvVar:      configEnvVar,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := app.Load(path)
			if err != nil {
				return nil, err
			}
			return cfg, nil
		},
		Bootstrap: func(c corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := c.(*app.Config)
			if !ok {
				return nil, fmt.Errorf("unexpected config type %T", c)
			}
			a, err := app.Bootstrap(cfg)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		ShutdownLogger: o.shutdownLogger,
	}
}
