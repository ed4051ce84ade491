package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// Create builds a new café from in, assigns it a UUID v7 and stores it.
func (b *Backend) Create(ctx context.Context, in types.CafeInput) (*types.Cafe, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	c := types.NewCafe(id, in, b.timestamp())
	row, err := rowFromCafe(c)
	if err != nil {
		return nil, err
	}
	err = b.inTx(ctx, func(tx *sql.Tx) error {
		return insertCafe(ctx, tx, row)
	})
	if err != nil {
		return nil, err
	}
	b.log.Debugw("cafe created", "id", id)
	return c, nil
}

// Update merges patch onto the stored café. The read and the write share one
// transaction.
func (b *Backend) Update(ctx context.Context, id string, patch types.CafeInput) (*types.Cafe, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var updated *types.Cafe
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getCafe(ctx, tx, id)
		if err != nil {
			return err
		}
		c.Apply(patch, b.timestamp())
		row, err := rowFromCafe(c)
		if err != nil {
			return err
		}
		if err := updateCafe(ctx, tx, row); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Debugw("cafe updated", "id", id)
	return updated, nil
}

// Delete removes the café. An absent ID is not an error.
func (b *Backend) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := b.handle(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM cafes WHERE id = ?", id)
	if err != nil {
		return storageError("deleting cafe "+id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		b.log.Debugw("cafe deleted", "id", id)
	}
	return nil
}

// Get returns the café with the given ID.
func (b *Backend) Get(ctx context.Context, id string) (*types.Cafe, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	return getCafe(ctx, db, id)
}

// List returns every café, most recently inserted first.
func (b *Backend) List(ctx context.Context) ([]*types.Cafe, error) {
	db, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	return listCafes(ctx, db)
}

func getCafe(ctx context.Context, q querier, id string) (*types.Cafe, error) {
	var row cafeRow
	err := q.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM cafes WHERE id = ?", id).Scan(row.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cafe %s: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, storageError("reading cafe "+id, err)
	}
	return row.cafe(), nil
}

func listCafes(ctx context.Context, q querier) ([]*types.Cafe, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+selectColumns+" FROM cafes ORDER BY seq DESC")
	if err != nil {
		return nil, storageError("listing cafes", err)
	}
	defer rows.Close()

	cafes := []*types.Cafe{}
	for rows.Next() {
		var row cafeRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, storageError("scanning cafe", err)
		}
		cafes = append(cafes, row.cafe())
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("listing cafes", err)
	}
	return cafes, nil
}

// cafeExists reports whether a row with id is stored.
func cafeExists(ctx context.Context, q querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM cafes WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageError("reading cafe "+id, err)
	}
	return true, nil
}

// insertCafe adds row above every existing row in insertion order.
func insertCafe(ctx context.Context, q querier, row cafeRow) error {
	args := append([]any{row.ID}, row.values()...)
	if _, err := q.ExecContext(ctx, insertCafeSQL, args...); err != nil {
		return storageError("inserting cafe "+row.ID, err)
	}
	return nil
}

// updateCafe rewrites every field column of row in place. Its position in
// insertion order is kept.
func updateCafe(ctx context.Context, q querier, row cafeRow) error {
	args := append(row.values(), row.ID)
	if _, err := q.ExecContext(ctx, updateCafeSQL, args...); err != nil {
		return storageError("updating cafe "+row.ID, err)
	}
	return nil
}
