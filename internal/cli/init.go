package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize cafememo storage",
		Long: "Write a default config.yaml if none exists, then create the data\n" +
			"directory and migrate the store to the current schema.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	wrote, err := writeConfigIfMissing(a.configDir, cfg.DataDir)
	if err != nil {
		return systemError("write config", err)
	}
	if wrote {
		a.log.Infow("wrote default config", "config_dir", a.configDir)
	}

	err = a.withStore(cmd, func(ctx context.Context, store types.Store) error {
		return store.Open(ctx)
	})
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]string{
			"config_dir": a.configDir,
			"data_dir":   cfg.DataDir,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cafememo initialized\nconfig: %s\ndata:   %s\n", a.configDir, cfg.DataDir)
	return nil
}
