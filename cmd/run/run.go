package run

import (
	"github.com/spf13/cobra"

	"github.com/abacus-network/abacus/relayer/cmd/run/delivery"
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a relay service",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.AddCommand(delivery.Command())

	return cmd
}
