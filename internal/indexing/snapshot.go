package indexing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	snapshotPrefix = "docs-metadata"
	statsPrefix    = "build-stats"
)

// SnapshotFileName returns the snapshot file for a version ("" = default)
func SnapshotFileName(version string) string {
	return versionedName(snapshotPrefix, version)
}

// StatsFileName returns the build-stats file for a version ("" = default)
func StatsFileName(version string) string {
	return versionedName(statsPrefix, version)
}

func versionedName(prefix, version string) string {
	if version == "" {
		return prefix + ".json"
	}
	return fmt.Sprintf("%s-%s.json", prefix, version)
}

// NewBuildStats summarises a set of extracted records
func NewBuildStats(records []DocumentRecord, version string, duration time.Duration) BuildStats {
	stats := BuildStats{
		TotalDocs:     len(records),
		Categories:    make(map[Category]int),
		Version:       version,
		BuildDate:     time.Now().UTC().Format(time.RFC3339),
		BuildDuration: fmt.Sprintf("%.2fs", duration.Seconds()),
	}
	for _, record := range records {
		stats.Categories[record.Category]++
		stats.TotalCodeExamples += len(record.CodeBlocks)
	}
	return stats
}

// WriteSnapshot persists records and their build stats into outDir.
// An empty version writes the default snapshot.
func WriteSnapshot(outDir, version string, records []DocumentRecord, stats BuildStats) error {
	if len(records) == 0 {
		return ErrEmptyCorpus
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeJSON(filepath.Join(outDir, SnapshotFileName(version)), records); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := writeJSON(filepath.Join(outDir, StatsFileName(version)), stats); err != nil {
		return fmt.Errorf("failed to write build stats: %w", err)
	}

	return nil
}

// writeJSON writes v to a temp file and renames it into place
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
