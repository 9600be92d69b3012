package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextdocs/mcp-server/internal/indexing"
	"github.com/nextdocs/mcp-server/internal/search"
)

const defaultSnapshot = `[
  {
    "id": "01-app-getting-started-installation",
    "path": "01-app/getting-started/installation.mdx",
    "title": "Installation",
    "description": "Create a new app",
    "category": "app-router",
    "version": "15",
    "headings": [{"level": 2, "text": "System requirements", "slug": "system-requirements"}],
    "codeBlocks": [{"language": "bash", "code": "npx create-next-app@latest"}],
    "content": "System requirements and automatic installation",
    "excerpt": "System requirements and automatic installation",
    "url": "https://nextjs.org/docs/app/getting-started/installation"
  }
]`

const v14Snapshot = `[
  {
    "id": "02-pages-routing-dynamic-routes",
    "path": "02-pages/routing/dynamic-routes.mdx",
    "title": "Dynamic Routes",
    "category": "pages-router",
    "version": "14",
    "content": "Dynamic segments are filled in at request time"
  }
]`

type fakeDetector struct {
	version string
	ok      bool
}

func (d fakeDetector) DetectVersion() (string, bool) {
	return d.version, d.ok
}

// countingStore counts loads per version and can hold them until released
type countingStore struct {
	SnapshotStore
	loads   sync.Map
	gate    chan struct{}
	started chan struct{}
}

func (s *countingStore) Load(ctx context.Context, version string) ([]indexing.DocumentRecord, error) {
	n, _ := s.loads.LoadOrStore(version, new(atomic.Int32))
	n.(*atomic.Int32).Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.SnapshotStore.Load(ctx, version)
}

func (s *countingStore) count(version string) int32 {
	n, ok := s.loads.Load(version)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func newFileStore(t *testing.T, files map[string]string) *FileStore {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	store, err := NewFileStore(fsys)
	require.NoError(t, err)
	return store
}

func TestEnsureLoaded_FallsBackToDefault(t *testing.T) {
	reg := New(newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot}))
	defer reg.Close()

	engine, err := reg.EnsureLoaded(context.Background(), "14")
	require.NoError(t, err)

	docs := engine.GetAllDocuments()
	require.Len(t, docs, 1)
	assert.Equal(t, "15", docs[0].Version)
	assert.Equal(t, []string{"14"}, reg.Loaded())
}

func TestEnsureLoaded_VersionSnapshot(t *testing.T) {
	reg := New(newFileStore(t, map[string]string{
		"docs-metadata.json":    defaultSnapshot,
		"docs-metadata-14.json": v14Snapshot,
	}))
	defer reg.Close()

	engine, err := reg.EnsureLoaded(context.Background(), "14")
	require.NoError(t, err)

	doc, ok := engine.GetDocument("02-pages-routing-dynamic-routes")
	require.True(t, ok)
	assert.Equal(t, "14", doc.Version)

	results, err := engine.Search(context.Background(), search.SearchOptions{Query: "dynamic"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEnsureLoaded_ReusesLoadedEngine(t *testing.T) {
	store := &countingStore{SnapshotStore: newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot})}
	reg := New(store)
	defer reg.Close()

	first, err := reg.EnsureLoaded(context.Background(), "15")
	require.NoError(t, err)
	second, err := reg.EnsureLoaded(context.Background(), "15")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), store.count("15"))
	assert.Equal(t, int32(1), store.count(""))
}

func TestEnsureLoaded_Unavailable(t *testing.T) {
	reg := New(newFileStore(t, nil))

	_, err := reg.EnsureLoaded(context.Background(), "14")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocsUnavailable)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	var unavailable *DocsUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "14", unavailable.Version)
	assert.Empty(t, reg.Loaded())
}

func TestEnsureLoaded_UnavailableKeepsOtherVersions(t *testing.T) {
	store := newFileStore(t, map[string]string{"docs-metadata-15.json": defaultSnapshot})
	reg := New(store)
	defer reg.Close()

	_, err := reg.EnsureLoaded(context.Background(), "15")
	require.NoError(t, err)

	_, err = reg.EnsureLoaded(context.Background(), "13")
	assert.ErrorIs(t, err, ErrDocsUnavailable)

	engine, err := reg.EnsureLoaded(context.Background(), "15")
	require.NoError(t, err)
	assert.Equal(t, 1, engine.GetStats().TotalDocuments)
}

func TestEnsureLoaded_InvalidSnapshot(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty array", data: `[]`},
		{name: "not json", data: `{`},
		{name: "unknown category", data: `[{"id":"a","path":"a.md","title":"A","category":"blog","content":""}]`},
		{name: "missing id", data: `[{"path":"a.md","title":"A","category":"community","content":""}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(newFileStore(t, map[string]string{"docs-metadata.json": tt.data}))

			_, err := reg.EnsureLoaded(context.Background(), "")
			assert.ErrorIs(t, err, ErrDocsUnavailable)
			assert.NotErrorIs(t, err, ErrSnapshotNotFound)
		})
	}
}

func TestResolve(t *testing.T) {
	store := newFileStore(t, nil)

	assert.Equal(t, DefaultVersion, New(store).Resolve(""))
	assert.Equal(t, "14", New(store).Resolve("14"))
	assert.Equal(t, "15", New(store, WithDetector(fakeDetector{version: "15", ok: true})).Resolve(""))
	assert.Equal(t, "14", New(store, WithDetector(fakeDetector{version: "15", ok: true})).Resolve("14"))
	assert.Equal(t, DefaultVersion, New(store, WithDetector(fakeDetector{})).Resolve(""))
	assert.Equal(t, "16", New(store, WithDefaultVersion("16")).Resolve(""))
}

func TestEnsureLoaded_DetectedVersion(t *testing.T) {
	reg := New(
		newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot}),
		WithDetector(fakeDetector{version: "15", ok: true}),
	)
	defer reg.Close()

	_, err := reg.EnsureLoaded(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"15"}, reg.Loaded())
}

func TestEnsureLoaded_ConcurrentLoadsOnce(t *testing.T) {
	store := &countingStore{
		SnapshotStore: newFileStore(t, map[string]string{"docs-metadata-15.json": defaultSnapshot}),
		gate:          make(chan struct{}),
	}
	reg := New(store)
	defer reg.Close()

	const callers = 10
	engines := make([]*search.Engine, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i], errs[i] = reg.EnsureLoaded(context.Background(), "15")
		}(i)
	}
	close(store.gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, engines[0], engines[i])
	}
	assert.Equal(t, int32(1), store.count("15"))
}

func TestEnsureLoaded_CancelledCallerDoesNotAbortLoad(t *testing.T) {
	store := &countingStore{
		SnapshotStore: newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot}),
		gate:          make(chan struct{}),
		started:       make(chan struct{}, 2),
	}
	reg := New(store)
	defer reg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := reg.EnsureLoaded(ctx, "latest")
		done <- err
	}()

	<-store.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(store.gate)
	engine, err := reg.EnsureLoaded(context.Background(), "latest")
	require.NoError(t, err)
	assert.Equal(t, 1, engine.GetStats().TotalDocuments)
	assert.Equal(t, int32(1), store.count("latest"))
}

func TestEngineFactory(t *testing.T) {
	var created atomic.Int32
	reg := New(
		newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot}),
		WithEngineFactory(func() (*search.Engine, error) {
			created.Add(1)
			return search.NewBleveEngine(search.WithSynonyms(search.Synonyms{}))
		}),
	)
	defer reg.Close()

	_, err := reg.EnsureLoaded(context.Background(), "13")
	require.NoError(t, err)
	assert.Equal(t, int32(1), created.Load())
}

func TestClose(t *testing.T) {
	reg := New(newFileStore(t, map[string]string{"docs-metadata.json": defaultSnapshot}))

	_, err := reg.EnsureLoaded(context.Background(), "15")
	require.NoError(t, err)
	require.NoError(t, reg.Close())
	assert.Empty(t, reg.Loaded())
}
