// Package sqlite implements the SQLite record store for CafeMemo.
package sqlite

// SchemaVersion is the newest on-disk layout this build writes.
const SchemaVersion = 2

// DatabaseFile is the SQLite file created inside the data directory.
const DatabaseFile = "cafememo.db"

// createMeta holds store bookkeeping, including the schema version marker.
// It exists before any migration runs.
const createMeta = `CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// Version 1 layout. Every field column is nullable: a NULL is an absent
// field and is defaulted when the row is read.
const (
	createCafesV1 = `CREATE TABLE cafes (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    name TEXT,
    area TEXT,
    address TEXT,
    map_url TEXT,
    tags TEXT,
    rating INTEGER,
    price_range TEXT,
    memo TEXT,
    favorite INTEGER,
    visited_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxCafesArea    = `CREATE INDEX idx_cafes_area ON cafes(area);`
	idxCafesCreated = `CREATE INDEX idx_cafes_created ON cafes(created_at);`
	idxCafesSeq     = `CREATE UNIQUE INDEX idx_cafes_seq ON cafes(seq);`
)

// Version 2 adds the person in charge and the shop site. Existing rows keep
// NULL until they are next written.
const (
	alterCafesAddPerson  = `ALTER TABLE cafes ADD COLUMN person TEXT;`
	alterCafesAddSiteURL = `ALTER TABLE cafes ADD COLUMN site_url TEXT;`
)

// migration is one step of the on-disk layout.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations lists every step in version order.
var migrations = []migration{
	{
		version: 1,
		name:    "create cafes",
		stmts:   []string{createCafesV1, idxCafesArea, idxCafesCreated, idxCafesSeq},
	},
	{
		version: 2,
		name:    "add person and site_url",
		stmts:   []string{alterCafesAddPerson, alterCafesAddSiteURL},
	},
}
