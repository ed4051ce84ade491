package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newImportCmd(a *app) *cobra.Command {
	var merge bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import cafés from an export document",
		Long: `Import reads an export document ("-" for stdin). By default it restores:
records whose ID is already stored are replaced. With --merge only new IDs
are added and stored records are kept. A malformed document changes nothing.

Example:
  cafememo import backup.json
  cafememo import --merge shared.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			mode := types.ImportOverwrite
			if merge {
				mode = types.ImportMerge
			}
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				res, err := store.ImportAll(ctx, data, mode)
				if err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cafe(s): %d new, %d replaced, %d skipped\n",
					res.Total(), res.Inserted, res.Overwritten, res.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "only add cafés whose ID is not stored")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
