// Package cli implements the cafememo command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/cafememo/internal/logger"
	"github.com/mesh-intelligence/cafememo/internal/paths"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state of one invocation: flags, loaded config and logger.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	log       *zap.SugaredLogger
}

// NewRootCmd creates the top-level "cafememo" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:   "cafememo",
		Short: "Keep notes on the cafés you visit",
		Long: "cafememo records cafés with their area, rating, tags and memo in a\n" +
			"local store, and exports or restores them as a JSON document.",
		// Errors are printed once by Execute.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (env "+paths.EnvDataDir+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newMetaCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps an error to the process exit status. Failures of the store
// or the disk are system errors; everything else is the caller's.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrStorage),
		errors.Is(err, types.ErrSchemaTooNew),
		errors.Is(err, types.ErrStoreClosed),
		errors.Is(err, errSystem):
		return exitSysError
	default:
		return exitUserError
	}
}

// errSystem marks CLI failures that are not the caller's fault.
var errSystem = errors.New("system error")

func systemError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errSystem, op, err)
}

// setup loads .env, config.yaml and the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError("resolve config dir", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return systemError("load config", err)
	}
	a.configDir = configDir
	a.config = v

	level := v.GetString(cfgKeyLogLevel)
	if a.flags.verbose {
		level = "debug"
	}
	if err := logger.Init(level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	a.log = logger.GetLogger("cli")
	a.log.Debugw("config loaded", "config_dir", configDir, "file", v.ConfigFileUsed())
	return nil
}
