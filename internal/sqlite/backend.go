package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// busyTimeout is how long a statement waits on a locked database file.
const busyTimeout = 5 * time.Second

// Backend implements types.Store on a SQLite file in the data directory.
// The database handle is opened lazily by the first operation; concurrent
// first callers share one initialization.
type Backend struct {
	config types.Config
	log    *zap.SugaredLogger
	now    func() time.Time

	group singleflight.Group

	mu     sync.RWMutex
	db     *sql.DB
	closed bool

	// inits counts completed initializations, for tests.
	inits atomic.Int32
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(b *Backend) { b.log = log }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a backend for config. Nothing touches the disk until
// Open or the first operation.
func NewBackend(config types.Config, opts ...Option) *Backend {
	b := &Backend{
		config: config,
		log:    zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open creates the data directory and database if needed and migrates the
// schema to SchemaVersion. It is idempotent. A failed Open is not
// remembered; the next call tries again.
func (b *Backend) Open(ctx context.Context) error {
	_, err := b.handle(ctx)
	return err
}

// handle returns the open database, initializing it on first use.
func (b *Backend) handle(ctx context.Context) (*sql.DB, error) {
	b.mu.RLock()
	db, closed := b.db, b.closed
	b.mu.RUnlock()
	if closed {
		return nil, types.ErrStoreClosed
	}
	if db != nil {
		return db, nil
	}

	// The flight is shared, so the first caller's cancellation must not
	// fail the callers waiting on it.
	initCtx := context.WithoutCancel(ctx)
	v, err, _ := b.group.Do("open", func() (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return nil, types.ErrStoreClosed
		}
		if b.db != nil {
			return b.db, nil
		}
		db, err := b.initialize(initCtx)
		if err != nil {
			return nil, err
		}
		b.db = db
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// initialize opens the database file and runs pending migrations.
func (b *Backend) initialize(ctx context.Context) (*sql.DB, error) {
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(b.config.DataDir, 0o755); err != nil {
		return nil, storageError("creating data dir", err)
	}

	path := filepath.Join(b.config.DataDir, DatabaseFile)
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageError("opening database", err)
	}
	// One connection serializes writers and keeps transactions on one file lock.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storageError("opening database", err)
	}
	if err := migrate(ctx, db, SchemaVersion, b.log); err != nil {
		db.Close()
		return nil, err
	}

	b.inits.Add(1)
	b.log.Debugw("store opened", "path", path, "schema_version", SchemaVersion)
	return db, nil
}

// Close releases the database. Close is idempotent; after it every
// operation returns ErrStoreClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return storageError("closing database", err)
	}
	return nil
}

// timestamp returns the current time in types.TimestampLayout.
func (b *Backend) timestamp() string {
	return types.FormatTimestamp(b.now())
}

// newID generates a UUID v7 for a record.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating UUID v7: %w", err)
	}
	return id.String(), nil
}

// storageError wraps a failure of the storage medium so that callers can
// match types.ErrStorage as well as the driver error.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrStorage, op, err)
}

// querier is the part of *sql.DB and *sql.Tx the table code needs.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction on the open database, committing when fn
// returns nil.
func (b *Backend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := b.handle(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("committing transaction", err)
	}
	return nil
}
