package registry

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

//go:embed schema.json
var snapshotSchemaJSON []byte

const snapshotSchemaURL = "https://nextdocs.local/schema/snapshot.json"

// SnapshotStore provides the persisted records of a version.
// An empty version names the default snapshot.
type SnapshotStore interface {
	// Load returns the records of a snapshot, or an error matching
	// ErrSnapshotNotFound when the store has none for version
	Load(ctx context.Context, version string) ([]indexing.DocumentRecord, error)
}

// StatsSource is implemented by stores that also keep build statistics
type StatsSource interface {
	BuildStats(version string) (indexing.BuildStats, bool)
}

var (
	_ SnapshotStore = (*FileStore)(nil)
	_ StatsSource   = (*FileStore)(nil)
)

// FileStore reads snapshots written by the indexer from a file system.
// Every snapshot is validated against the snapshot JSON Schema before it
// is decoded.
type FileStore struct {
	fsys   fs.FS
	schema *jsonschema.Schema
}

// NewFileStore creates a store over fsys (typically os.DirFS of the data dir)
func NewFileStore(fsys fs.FS) (*FileStore, error) {
	schema, err := compileSnapshotSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	return &FileStore{fsys: fsys, schema: schema}, nil
}

func compileSnapshotSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(snapshotSchemaJSON))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(snapshotSchemaURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(snapshotSchemaURL)
}

// Load reads, validates and decodes the snapshot of version
func (s *FileStore) Load(ctx context.Context, version string) ([]indexing.DocumentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := indexing.SnapshotFileName(version)
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := s.schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("snapshot %s is invalid: %w", name, err)
	}

	var records []indexing.DocumentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return records, nil
}

// BuildStats returns the build statistics written next to a snapshot
func (s *FileStore) BuildStats(version string) (indexing.BuildStats, bool) {
	var stats indexing.BuildStats

	data, err := fs.ReadFile(s.fsys, indexing.StatsFileName(version))
	if err != nil {
		return stats, false
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, false
	}
	return stats, true
}
