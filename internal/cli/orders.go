package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m3rciful/tripbot/internal/flow"
)

// OrdersOptions holds flags for the orders command.
type OrdersOptions struct {
	*RootOptions
	Limit int
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Print the most recent orders",
		Long: `Print the most recent orders, newest first.

Examples:
  tripbot orders
  tripbot orders --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of orders to print")

	return cmd
}

func runOrders(cmd *cobra.Command, opts *OrdersOptions) error {
	if opts.Limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", opts.Limit)
	}
	a, release, err := opts.openApp()
	if err != nil {
		return err
	}
	defer release()

	orders, err := a.Store.ListOrders(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(orders) == 0 {
		fmt.Fprintln(out, "no orders yet")
		return nil
	}
	for _, o := range orders {
		fmt.Fprintln(out, flow.RenderOrderLine(o))
	}
	return nil
}
