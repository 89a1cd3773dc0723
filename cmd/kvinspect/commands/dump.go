package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func dumpCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dump <store>",
		Short: "Print every key and value of a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := appCtx.Inspector.Dump(label(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(pairs)
			}
			for _, p := range pairs {
				fmt.Fprintf(out, "%s = %s\n", p.Key, p.Value)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}
