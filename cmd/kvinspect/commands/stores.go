package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func storesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List user and global store labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := appCtx.Inspector.Labels()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(labels) == 0 {
				fmt.Fprintln(out, "no stores")
				return nil
			}
			for _, l := range labels {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
}
