// Package sqlite exposes the SQLite record store while keeping its
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/cafememo/internal/sqlite"
	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// Option configures the store returned by NewStore.
type Option = sqlite.Option

// WithLogger and WithClock are re-exported for callers outside the module.
var (
	WithLogger = sqlite.WithLogger
	WithClock  = sqlite.WithClock
)

// NewStore creates a SQLite store for config. Nothing touches the disk until
// Open or the first operation.
//
// Example:
//
//	store := sqlite.NewStore(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: dir,
//	})
//	defer store.Close()
//	cafe, err := store.Create(ctx, types.CafeInput{Name: types.String("Kissa")})
func NewStore(config types.Config, opts ...Option) types.Store {
	return sqlite.NewBackend(config, opts...)
}
