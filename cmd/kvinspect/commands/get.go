package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// get: look one key up through the inspector, like the debug screen does.
func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <store> <key>",
		Short: "Print the value stored under key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := label(args[0])
			p, ok, err := appCtx.Inspector.Lookup(l, args[1])
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("key %q not found in %s", args[1], l)
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Value)
			return nil
		},
	}
}
