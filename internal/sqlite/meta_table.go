package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// GetMeta returns the JSON value stored under key, or ErrNotFound.
func (b *Backend) GetMeta(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, types.ErrInvalidKey
	}
	db, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := getMeta(ctx, db, key, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SetMeta stores value under key, replacing any previous value.
func (b *Backend) SetMeta(ctx context.Context, key string, value any) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	db, err := b.handle(ctx)
	if err != nil {
		return err
	}
	return setMeta(ctx, db, key, value)
}

// DeleteMeta removes key. Removing an absent key succeeds.
func (b *Backend) DeleteMeta(ctx context.Context, key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	db, err := b.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM meta WHERE key = ?", key); err != nil {
		return storageError("deleting meta "+key, err)
	}
	return nil
}

// getMeta decodes the value under key into dst.
func getMeta(ctx context.Context, q querier, key string, dst any) error {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("meta %q: %w", key, types.ErrNotFound)
	}
	if err != nil {
		return storageError("reading meta "+key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decoding meta %q: %w", key, err)
	}
	return nil
}

// setMeta upserts value, encoded as JSON, under key.
func setMeta(ctx context.Context, q querier, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding meta %q: %w", key, err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data))
	if err != nil {
		return storageError("writing meta "+key, err)
	}
	return nil
}
