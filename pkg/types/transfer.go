package types

import "fmt"

// ExportVersion is the version tag written into export documents.
const ExportVersion = 2

// ExportDocument is the self-describing export format.
type ExportDocument struct {
	Version    int     `json:"version"`
	ExportedAt string  `json:"exported_at"`
	Cafes      []*Cafe `json:"cafes"`
}

// ImportMode selects how imported records that share an ID with a stored
// record are handled.
type ImportMode int

const (
	// ImportOverwrite restores a backup: the imported record replaces the
	// stored one, including its timestamps. Last writer wins; nothing merges.
	ImportOverwrite ImportMode = iota

	// ImportMerge only adds records. Imported records whose ID is already
	// stored are skipped, so local edits survive.
	ImportMerge
)

// String returns the mode name used in flags and logs.
func (m ImportMode) String() string {
	switch m {
	case ImportOverwrite:
		return "overwrite"
	case ImportMerge:
		return "merge"
	default:
		return fmt.Sprintf("ImportMode(%d)", int(m))
	}
}

// ImportResult counts what an import did.
type ImportResult struct {
	Inserted    int `json:"inserted"`
	Overwritten int `json:"overwritten"`
	Skipped     int `json:"skipped"`
}

// Total is the number of records the document carried.
func (r ImportResult) Total() int {
	return r.Inserted + r.Overwritten + r.Skipped
}
