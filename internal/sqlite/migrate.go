package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// migrate brings db up to target. Each step runs in its own transaction and
// records its version in meta, so an interrupted upgrade resumes at the
// first step that did not commit. Rows are never rewritten: columns added by
// a step stay NULL until the row is next written.
func migrate(ctx context.Context, db *sql.DB, target int, log *zap.SugaredLogger) error {
	if _, err := db.ExecContext(ctx, createMeta); err != nil {
		return storageError("creating meta table", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("%w: database is at version %d, this build supports %d",
			types.ErrSchemaTooNew, current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		log.Infow("applied schema migration", "version", m.version, "name", m.name, "from", current)
		current = m.version
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning migration", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storageError(fmt.Sprintf("migrating to version %d (%s)", m.version, m.name), err)
		}
	}
	if err := setMeta(ctx, tx, types.MetaSchemaVersion, m.version); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError(fmt.Sprintf("committing migration %d", m.version), err)
	}
	return nil
}

// schemaVersion reads the recorded schema version. A store that has never
// been migrated is at version 0.
func schemaVersion(ctx context.Context, q querier) (int, error) {
	var version int
	err := getMeta(ctx, q, types.MetaSchemaVersion, &version)
	if errors.Is(err, types.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}
