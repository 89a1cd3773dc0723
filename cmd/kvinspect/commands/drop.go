package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealkv/internal/inspect"
)

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <store>",
		Short: "Delete a store with all its entries and key material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := label(args[0])
			scope, name := inspect.Resolve(l)
			if err := appCtx.Registry.Remove(scope, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", l)
			return nil
		},
	}
}
