package commands

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"sealkv/internal/domain"
)

// logout: delete the signed-in user's stores. Global stores stay.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete every user-scoped store of --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := appCtx.Registry.User()
			if u == "" {
				return errors.Wrap(domain.ErrNoUser, "logout")
			}
			if err := appCtx.Registry.Logout(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged out %s\n", u)
			return nil
		},
	}
}
