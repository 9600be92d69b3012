package registry

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

func TestFileStore_Load(t *testing.T) {
	store := newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot})

	records, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "Installation", record.Title)
	assert.Equal(t, indexing.CategoryAppRouter, record.Category)
	assert.Equal(t, []indexing.Heading{{Level: 2, Text: "System requirements", Slug: "system-requirements"}}, record.Headings)
	require.Len(t, record.CodeBlocks, 1)
	assert.Equal(t, "bash", record.CodeBlocks[0].Language)
}

func TestFileStore_NotFound(t *testing.T) {
	store := newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot})

	_, err := store.Load(context.Background(), "14")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFileStore_Cancelled(t *testing.T) {
	store := newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_BuildStats(t *testing.T) {
	store, err := NewFileStore(fstest.MapFS{
		"build-stats-15.json": {Data: []byte(`{"totalDocs": 1, "totalCodeExamples": 2, "categories": {"app-router": 1}, "version": "15", "buildDate": "2025-01-02T03:04:05Z", "buildDuration": "0.10s"}`)},
		"build-stats.json":    {Data: []byte(`not json`)},
	})
	require.NoError(t, err)

	stats, ok := store.BuildStats("15")
	require.True(t, ok)
	assert.Equal(t, 1, stats.TotalDocs)
	assert.Equal(t, 2, stats.TotalCodeExamples)
	assert.Equal(t, 1, stats.Categories[indexing.CategoryAppRouter])

	_, ok = store.BuildStats("")
	assert.False(t, ok)

	_, ok = store.BuildStats("14")
	assert.False(t, ok)
}
