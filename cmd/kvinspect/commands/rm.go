package commands

import (
	"github.com/spf13/cobra"
)

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <store> <key>",
		Short: "Remove key from a store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appCtx.Inspector.Store(label(args[0]))
			if err != nil {
				return err
			}
			return s.Remove(args[1])
		},
	}
}
