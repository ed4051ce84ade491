package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/cafememo/pkg/types"
)

// writeColumns are the cafes columns written on insert and update, in the
// order of cafeRow.values. id and seq are handled separately.
var writeColumns = []string{
	"name", "person", "area", "site_url", "map_url", "address", "tags",
	"rating", "price_range", "memo", "favorite", "visited_at",
	"created_at", "updated_at",
}

var (
	selectColumns = "id, seq, " + strings.Join(writeColumns, ", ")

	insertCafeSQL = fmt.Sprintf(
		"INSERT INTO cafes (id, seq, %s) VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cafes), %s)",
		strings.Join(writeColumns, ", "),
		placeholders(len(writeColumns)),
	)

	updateCafeSQL = fmt.Sprintf(
		"UPDATE cafes SET %s WHERE id = ?",
		strings.Join(assignments(writeColumns), ", "),
	)
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func assignments(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c + " = ?"
	}
	return out
}

// cafeRow mirrors one row of the cafes table. A NULL column is a field the
// record never had: rows from an older schema, or imported records that
// omitted it.
type cafeRow struct {
	ID         string
	Seq        int64
	Name       sql.NullString
	Person     sql.NullString
	Area       sql.NullString
	SiteURL    sql.NullString
	MapURL     sql.NullString
	Address    sql.NullString
	Tags       sql.NullString
	Rating     sql.NullInt64
	PriceRange sql.NullString
	Memo       sql.NullString
	Favorite   sql.NullInt64
	VisitedAt  sql.NullString
	CreatedAt  string
	UpdatedAt  string
}

// scanTargets returns the destinations for a SELECT of selectColumns.
func (r *cafeRow) scanTargets() []any {
	return []any{
		&r.ID, &r.Seq,
		&r.Name, &r.Person, &r.Area, &r.SiteURL, &r.MapURL, &r.Address, &r.Tags,
		&r.Rating, &r.PriceRange, &r.Memo, &r.Favorite, &r.VisitedAt,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

// values returns the writeColumns values.
func (r *cafeRow) values() []any {
	return []any{
		r.Name, r.Person, r.Area, r.SiteURL, r.MapURL, r.Address, r.Tags,
		r.Rating, r.PriceRange, r.Memo, r.Favorite, r.VisitedAt,
		r.CreatedAt, r.UpdatedAt,
	}
}

// rowFromCafe dehydrates a fully materialized record. Every field column is
// set, which is how rows from an older schema pick up new columns.
func rowFromCafe(c *types.Cafe) (cafeRow, error) {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return cafeRow{}, err
	}
	r := cafeRow{
		ID:         c.ID,
		Name:       validString(c.Name),
		Person:     validString(c.Person),
		Area:       validString(c.Area),
		SiteURL:    validString(c.SiteURL),
		MapURL:     validString(c.MapURL),
		Address:    validString(c.Address),
		Tags:       tags,
		Rating:     sql.NullInt64{Int64: int64(c.Rating), Valid: true},
		PriceRange: validString(c.PriceRange),
		Memo:       validString(c.Memo),
		Favorite:   boolInt(c.Favorite),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.VisitedAt != nil {
		r.VisitedAt = validString(*c.VisitedAt)
	}
	return r, nil
}

// cafe hydrates the row, defaulting absent fields.
func (r *cafeRow) cafe() *types.Cafe {
	c := &types.Cafe{
		ID:         r.ID,
		Name:       r.Name.String,
		Person:     r.Person.String,
		Area:       types.DefaultArea,
		SiteURL:    r.SiteURL.String,
		Rating:     int(r.Rating.Int64),
		Memo:       r.Memo.String,
		Address:    r.Address.String,
		MapURL:     r.MapURL.String,
		Tags:       decodeTags(r.Tags),
		PriceRange: r.PriceRange.String,
		Favorite:   r.Favorite.Valid && r.Favorite.Int64 != 0,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Area.Valid {
		c.Area = r.Area.String
	}
	if r.VisitedAt.Valid {
		v := r.VisitedAt.String
		c.VisitedAt = &v
	}
	return c
}

func validString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func boolInt(b bool) sql.NullInt64 {
	if b {
		return sql.NullInt64{Int64: 1, Valid: true}
	}
	return sql.NullInt64{Int64: 0, Valid: true}
}

func encodeTags(tags []string) (sql.NullString, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding tags: %w", err)
	}
	return validString(string(data)), nil
}

// decodeTags reads the tags column. Text that is not a JSON array is taken
// as a comma-delimited list.
func decodeTags(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(col.String), &tags); err != nil {
		return types.ParseTags(col.String)
	}
	return types.NormalizeTags(tags)
}
