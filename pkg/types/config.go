package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and the data directory for a Store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
)

// knownBackends lists the backends that Validate accepts. config.yaml names
// the backend explicitly, and a name this build does not know fails here
// instead of being opened as SQLite.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w %q", ErrBackendUnknown, c.Backend)
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
