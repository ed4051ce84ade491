package types

import (
	"context"
	"encoding/json"
	"errors"
)

// Store is the record store for cafés. Every operation opens the store on
// first use; concurrent first callers share a single initialization.
type Store interface {
	// Open initializes the store: it creates or migrates the on-disk layout.
	// Idempotent; concurrent callers wait for the same initialization.
	Open(ctx context.Context) error

	// Close releases the store. Operations after Close return ErrStoreClosed.
	Close() error

	// Create stores a new café built from in and returns it.
	Create(ctx context.Context, in CafeInput) (*Cafe, error)

	// Update merges patch onto the stored café and returns the result.
	// Returns ErrNotFound if no café has that ID.
	Update(ctx context.Context, id string, patch CafeInput) (*Cafe, error)

	// Delete removes the café. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// Get returns the café with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Cafe, error)

	// List returns every café, most recently inserted first.
	List(ctx context.Context) ([]*Cafe, error)

	// ExportAll serializes every café into an ExportDocument.
	ExportAll(ctx context.Context) ([]byte, error)

	// ImportAll writes the cafés of an export document. Returns
	// ErrMalformedInput, leaving the store untouched, if the document is not
	// an object with a "cafes" array of objects.
	ImportAll(ctx context.Context, data []byte, mode ImportMode) (ImportResult, error)

	// GetMeta returns the JSON value stored under key, or ErrNotFound.
	GetMeta(ctx context.Context, key string) (json.RawMessage, error)

	// SetMeta stores value, encoded as JSON, under key.
	SetMeta(ctx context.Context, key string, value any) error

	// DeleteMeta removes key. Removing an absent key is not an error.
	DeleteMeta(ctx context.Context, key string) error
}

// Metadata keys written by the store.
const (
	MetaSchemaVersion  = "schema_version"
	MetaLastExportedAt = "last_exported_at"
	MetaLastImportedAt = "last_imported_at"
)

// Store errors. Storage failures wrap ErrStorage together with the
// underlying driver error, so both can be matched with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrMalformedInput = errors.New("malformed input")
	ErrStorage        = errors.New("storage failure")
	ErrStoreClosed    = errors.New("store is closed")
	ErrSchemaTooNew   = errors.New("schema version is newer than supported")
	ErrInvalidID      = errors.New("invalid cafe ID")
	ErrInvalidKey     = errors.New("metadata key must not be empty")
)
