package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty catalog with the default routes and vehicles",
		Long:  "Insert the configured default routes when no route exists, and the default vehicles when no vehicle exists. A populated list is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, release, err := rootOpts.openApp()
			if err != nil {
				return err
			}
			defer release()

			n, err := a.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d catalog entries\n", n)
			return nil
		},
	}
}
