package indexing_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newDocsTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "01-app/a.mdx", "---\ntitle: A\n---\nAlpha page.")
	writeFile(t, dir, "01-app/b.md", "# B\n\n```ts\nconst b = 1\n```\n")
	writeFile(t, dir, "02-pages/broken.mdx", "---\ntitle: [unclosed\n---\nBroken.")
	writeFile(t, dir, "03-api-reference/c.mdx", "# C")
	writeFile(t, dir, "notes.txt", "not documentation")
	return dir
}

func TestFindDocumentFiles(t *testing.T) {
	dir := newDocsTree(t)

	files := indexing.FindDocumentFiles(dir)
	assert.Len(t, files, 4)
	for _, f := range files {
		assert.True(t, indexing.IsDocumentFile(f), f)
	}

	assert.Empty(t, indexing.FindDocumentFiles(filepath.Join(dir, "missing")))
}

func TestLoadCorpus(t *testing.T) {
	dir := newDocsTree(t)

	records, err := indexing.LoadCorpus(context.Background(), dir, indexing.ExtractOptions{Version: "15"})
	require.NoError(t, err)
	require.Len(t, records, 3, "the page with invalid front matter is skipped")

	// Walk order
	assert.Equal(t, "01-app-a", records[0].ID)
	assert.Equal(t, "01-app-b", records[1].ID)
	assert.Equal(t, "03-api-reference-c", records[2].ID)

	assert.Equal(t, "A", records[0].Title)
	assert.Len(t, records[1].CodeBlocks, 1)
	assert.Equal(t, indexing.CategoryAPIReference, records[2].Category)
	for _, r := range records {
		assert.Equal(t, "15", r.Version)
	}
}

func TestLoadCorpusEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.txt", "nothing here")

	_, err := indexing.LoadCorpus(context.Background(), dir, indexing.ExtractOptions{})
	assert.ErrorIs(t, err, indexing.ErrEmptyCorpus)
}

func TestLoadCorpusCancelled(t *testing.T) {
	dir := newDocsTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := indexing.LoadCorpus(ctx, dir, indexing.ExtractOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotFileNames(t *testing.T) {
	assert.Equal(t, "docs-metadata.json", indexing.SnapshotFileName(""))
	assert.Equal(t, "docs-metadata-14.json", indexing.SnapshotFileName("14"))
	assert.Equal(t, "build-stats.json", indexing.StatsFileName(""))
	assert.Equal(t, "build-stats-15.json", indexing.StatsFileName("15"))
}

func TestWriteSnapshot(t *testing.T) {
	records, err := indexing.LoadCorpus(context.Background(), newDocsTree(t), indexing.ExtractOptions{Version: "14"})
	require.NoError(t, err)

	stats := indexing.NewBuildStats(records, "14", 1500*time.Millisecond)
	assert.Equal(t, 3, stats.TotalDocs)
	assert.Equal(t, 1, stats.TotalCodeExamples)
	assert.Equal(t, 2, stats.Categories[indexing.CategoryAppRouter])
	assert.Equal(t, 1, stats.Categories[indexing.CategoryAPIReference])
	assert.Equal(t, "1.50s", stats.BuildDuration)

	out := filepath.Join(t.TempDir(), "data")
	require.NoError(t, indexing.WriteSnapshot(out, "14", records, stats))

	raw, err := os.ReadFile(filepath.Join(out, "docs-metadata-14.json"))
	require.NoError(t, err)
	var decoded []indexing.DocumentRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, records, decoded)

	raw, err = os.ReadFile(filepath.Join(out, "build-stats-14.json"))
	require.NoError(t, err)
	var decodedStats indexing.BuildStats
	require.NoError(t, json.Unmarshal(raw, &decodedStats))
	assert.Equal(t, stats, decodedStats)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestWriteSnapshotEmpty(t *testing.T) {
	err := indexing.WriteSnapshot(t.TempDir(), "", nil, indexing.BuildStats{})
	assert.ErrorIs(t, err, indexing.ErrEmptyCorpus)
}
