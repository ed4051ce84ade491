package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

var errNothingToChange = errors.New("no fields to change; pass at least one field flag")

func newEditCmd(a *app) *cobra.Command {
	var f cafeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a café",
		Long: `Edit changes only the fields given as flags. Values are stored as
given; tags and rating are normalized.

Example:
  cafememo edit 0195f3c2-... --rating 5 --memo "great pour-over"
  cafememo edit 0195f3c2-... --favorite=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := f.input(cmd.Flags())
			if patch.IsEmpty() {
				return errNothingToChange
			}
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				c, err := store.Update(ctx, args[0], patch)
				if err != nil {
					return fmt.Errorf("update cafe: %w", err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), c)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated cafe: %s\n", c.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}
