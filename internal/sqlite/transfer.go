package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// ExportAll serializes every café, newest first, into an indented
// ExportDocument and records the export time in meta.
func (b *Backend) ExportAll(ctx context.Context) ([]byte, error) {
	db, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	cafes, err := listCafes(ctx, db)
	if err != nil {
		return nil, err
	}

	now := b.timestamp()
	doc := types.ExportDocument{
		Version:    types.ExportVersion,
		ExportedAt: now,
		Cafes:      cafes,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	if err := setMeta(ctx, db, types.MetaLastExportedAt, now); err != nil {
		return nil, err
	}
	b.log.Infow("exported cafes", "count", len(cafes))
	return buf.Bytes(), nil
}

// ImportAll validates the whole document before writing anything, then
// writes every record in one transaction.
func (b *Backend) ImportAll(ctx context.Context, data []byte, mode types.ImportMode) (types.ImportResult, error) {
	var result types.ImportResult
	if mode != types.ImportOverwrite && mode != types.ImportMerge {
		return result, fmt.Errorf("unknown import mode %s", mode)
	}
	records, err := decodeImport(data)
	if err != nil {
		return result, err
	}

	now := b.timestamp()
	rows := make([]cafeRow, len(records))
	for i, rec := range records {
		id := string(rec.ID)
		if id == "" {
			if id, err = newID(); err != nil {
				return result, err
			}
		}
		if rows[i], err = rec.row(id, now); err != nil {
			return result, err
		}
	}

	err = b.inTx(ctx, func(tx *sql.Tx) error {
		result = types.ImportResult{}
		seen := make(map[string]bool, len(rows))
		// Walk backwards: each insert lands above the previous one, so the
		// first record of the document ends up first in List. The last copy
		// of a repeated ID is the one kept.
		for i := len(rows) - 1; i >= 0; i-- {
			row := rows[i]
			if seen[row.ID] {
				result.Skipped++
				continue
			}
			seen[row.ID] = true

			exists, err := cafeExists(ctx, tx, row.ID)
			if err != nil {
				return err
			}
			switch {
			case !exists:
				if err := insertCafe(ctx, tx, row); err != nil {
					return err
				}
				result.Inserted++
			case mode == types.ImportMerge:
				result.Skipped++
			default:
				if err := updateCafe(ctx, tx, row); err != nil {
					return err
				}
				result.Overwritten++
			}
		}
		return setMeta(ctx, tx, types.MetaLastImportedAt, now)
	})
	if err != nil {
		return types.ImportResult{}, err
	}

	b.log.Infow("imported cafes",
		"mode", mode.String(),
		"inserted", result.Inserted,
		"overwritten", result.Overwritten,
		"skipped", result.Skipped)
	return result, nil
}

// decodeImport checks the document shape and decodes every element. Any
// problem is reported as ErrMalformedInput.
func decodeImport(data []byte) ([]importRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, malformed("document is not a JSON object: %v", err)
	}
	if top == nil {
		return nil, malformed("document is null")
	}
	raw, ok := top["cafes"]
	if !ok {
		return nil, malformed(`missing "cafes"`)
	}
	if raw = bytes.TrimSpace(raw); len(raw) == 0 || raw[0] != '[' {
		return nil, malformed(`"cafes" is not an array`)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, malformed(`"cafes": %v`, err)
	}

	records := make([]importRecord, len(elems))
	for i, elem := range elems {
		if elem = bytes.TrimSpace(elem); len(elem) == 0 || elem[0] != '{' {
			return nil, malformed("cafes[%d] is not an object", i)
		}
		if err := json.Unmarshal(elem, &records[i]); err != nil {
			return nil, malformed("cafes[%d]: %v", i, err)
		}
	}
	return records, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrMalformedInput, fmt.Sprintf(format, args...))
}

// importRecord is one element of an imported document. Fields it omits stay
// nil and are stored as NULL.
type importRecord struct {
	types.CafeInput
	ID        recordID `json:"id"`
	CreatedAt *string  `json:"created_at"`
	UpdatedAt *string  `json:"updated_at"`
}

// row converts the record. Strings and timestamps are kept exactly as given.
// A missing created_at is taken from updated_at, a missing updated_at is now
// or created_at if that is later, and a record with neither gets now for both.
func (r importRecord) row(id, now string) (cafeRow, error) {
	row := cafeRow{
		ID:         id,
		Name:       nullString(r.Name),
		Person:     nullString(r.Person),
		Area:       nullString(r.Area),
		SiteURL:    nullString(r.SiteURL),
		MapURL:     nullString(r.MapURL),
		Address:    nullString(r.Address),
		PriceRange: nullString(r.PriceRange),
		Memo:       nullString(r.Memo),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if r.Tags != nil {
		tags, err := encodeTags(r.Tags.Normalized())
		if err != nil {
			return cafeRow{}, err
		}
		row.Tags = tags
	}
	if r.Rating != nil {
		row.Rating = sql.NullInt64{Int64: int64(r.Rating.Int()), Valid: true}
	}
	if r.Favorite != nil {
		row.Favorite = boolInt(r.Favorite.Bool())
	}
	if r.VisitedAt != nil && strings.TrimSpace(*r.VisitedAt) != "" {
		row.VisitedAt = validString(*r.VisitedAt)
	}
	created, updated := deref(r.CreatedAt), deref(r.UpdatedAt)
	switch {
	case created != "" && updated != "":
		row.CreatedAt, row.UpdatedAt = created, updated
	case created != "":
		row.CreatedAt, row.UpdatedAt = created, types.LaterTimestamp(now, created)
	case updated != "":
		row.CreatedAt, row.UpdatedAt = updated, updated
	}
	return row, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return validString(*s)
}

// recordID is an imported id. Older exports may carry numeric ids, which are
// kept as their decimal text.
type recordID string

// UnmarshalJSON accepts a string, a number, or null.
func (id *recordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = recordID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id: expected a string or number, got %s", data)
		}
		*id = recordID(n.String())
	}
	return nil
}
