package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	coredatabase "github.com/m3rciful/tripbot/core/database"
	"github.com/m3rciful/tripbot/migrations"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == coredatabase.DriverMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory driver: nothing to migrate")
				return nil
			}
			if rootOpts.loggerInit != nil {
				if err := rootOpts.loggerInit(&cfg.Config); err != nil {
					return err
				}
			}
			if rootOpts.shutdownLogger != nil {
				defer func() { _ = rootOpts.shutdownLogger() }()
			}
			if err := coredatabase.RunMigrations(cfg.Database, migrations.FS); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}
