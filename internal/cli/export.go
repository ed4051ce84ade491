package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/internal/paths"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every café as a JSON document",
		Long: `Export writes a version 2 export document to stdout, or to the file
given with -o. The file is replaced atomically.

Example:
  cafememo export > backup.json
  cafememo export -o backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store types.Store) error {
				data, err := store.ExportAll(ctx)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				if output == "" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := paths.WriteFileAtomic(output, data, 0o644); err != nil {
					return systemError("write "+output, err)
				}
				a.log.Infow("export written", "path", output, "bytes", len(data))
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
