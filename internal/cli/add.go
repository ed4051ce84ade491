package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var f cafeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new café",
		Long: `Add stores a new café. Unset fields get their defaults: the area is
"` + types.DefaultArea + `", the rating 0 and the tag list empty.

Example:
  cafememo add --name "Blue Door" --area 渋谷 --rating 4 --tags "quiet,wifi"
  cafememo add --name "Kissa" --favorite --visited-at 2025-04-01 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := f.input(cmd.Flags())
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				c, err := store.Create(ctx, in)
				if err != nil {
					return fmt.Errorf("create cafe: %w", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created cafe: %s\n", c.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
