package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a café",
		Long:    "Delete removes the café. Deleting an ID that is not stored succeeds.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("delete cafe: %w", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted cafe: %s\n", args[0])
				return nil
			})
		},
	}
}
