package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cafememo/internal/sqlite"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

const modulePath = "github.com/mesh-intelligence/cafememo"

// Version is the release version, set at build time with
// -ldflags "-X github.com/mesh-intelligence/cafememo/internal/cli.Version=...".
var Version = "0.1.0-dev"

// versionInfo is what version reports. The schema and export versions tell a
// user whether a store or an export file from another build will load.
type versionInfo struct {
	Version       string `json:"version"`
	Module        string `json:"module"`
	GoVersion     string `json:"go_version"`
	SchemaVersion int    `json:"schema_version"`
	ExportVersion int    `json:"export_version"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:       Version,
		Module:        modulePath,
		GoVersion:     runtime.Version(),
		SchemaVersion: sqlite.SchemaVersion,
		ExportVersion: types.ExportVersion,
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build and data format versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			w := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(w, info)
			}
			fmt.Fprintf(w, "cafememo v%s (%s)\n", info.Version, info.GoVersion)
			fmt.Fprintf(w, "module: %s\n", info.Module)
			fmt.Fprintf(w, "schema version: %d\n", info.SchemaVersion)
			fmt.Fprintf(w, "export version: %d\n", info.ExportVersion)
			return nil
		},
	}
}
