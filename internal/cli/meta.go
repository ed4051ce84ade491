package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newMetaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Read and write store metadata",
		Long: `Meta manages the store's key/value metadata. Values are JSON; a value
that is not valid JSON is stored as a string.

Example:
  cafememo meta get schema_version
  cafememo meta set default_sort '"rating"'
  cafememo meta delete default_sort`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print the value stored under key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
					raw, err := store.GetMeta(ctx, args[0])
					if err != nil {
						return fmt.Errorf("get meta: %w", err)
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(raw))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a value under key",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := metaValue(args[1])
				return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
					if err := store.SetMeta(ctx, args[0], value); err != nil {
						return fmt.Errorf("set meta: %w", err)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
					if err := store.DeleteMeta(ctx, args[0]); err != nil {
						return fmt.Errorf("delete meta: %w", err)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

// metaValue keeps valid JSON as is and stores anything else as a string.
func metaValue(arg string) any {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	return arg
}
