package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/internal/logger"
	"github.com/mesh-intelligence/cafememo/internal/paths"
	"github.com/mesh-intelligence/cafememo/internal/sqlite"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// storeConfig resolves the backend and data directory for this invocation.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, systemError("resolve data dir", err)
	}
	cfg := types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", a.configDir, err)
	}
	return cfg, nil
}

// withStore opens the store, runs fn and closes the store. A close failure
// is reported alongside any error from fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store types.Store) error) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store := sqlite.NewBackend(cfg, sqlite.WithLogger(logger.GetLogger("store")))

	err = fn(cmd.Context(), store)
	if cerr := store.Close(); cerr != nil {
		err = multierror.Append(err, fmt.Errorf("close store: %w", cerr))
	}
	return err
}

// printJSON writes v indented to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	return nil
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
