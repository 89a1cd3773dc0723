package commands

import (
	"github.com/spf13/cobra"
)

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <store> <key> <value>",
		Short: "Store value under key, creating the store if needed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appCtx.Inspector.Store(label(args[0]))
			if err != nil {
				return err
			}
			return s.Set(args[1], []byte(args[2]))
		},
	}
}
