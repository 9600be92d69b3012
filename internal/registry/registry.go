package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nextdocs/mcp-server/internal/indexing"
	"github.com/nextdocs/mcp-server/internal/search"
)

// DefaultVersion is the label used when no version is requested or detected
const DefaultVersion = "latest"

// VersionDetector resolves the documentation version of the caller's
// project. ok is false when no version could be found.
type VersionDetector interface {
	DetectVersion() (version string, ok bool)
}

// EngineFactory creates an empty engine for a version
type EngineFactory func() (*search.Engine, error)

// Registry maps version labels to loaded search engines.
// Each label is loaded at most once; concurrent requests for a label that
// is still loading wait for the same load.
type Registry struct {
	store          SnapshotStore
	detector       VersionDetector
	defaultVersion string
	newEngine      EngineFactory

	mu      sync.RWMutex
	engines map[string]*search.Engine
	loads   singleflight.Group
}

// Option configures a Registry
type Option func(*Registry)

// WithDetector sets the collaborator used when no version is requested
func WithDetector(detector VersionDetector) Option {
	return func(r *Registry) {
		r.detector = detector
	}
}

// WithDefaultVersion overrides DefaultVersion
func WithDefaultVersion(version string) Option {
	return func(r *Registry) {
		if version != "" {
			r.defaultVersion = version
		}
	}
}

// WithEngineFactory overrides how engines are created
func WithEngineFactory(factory EngineFactory) Option {
	return func(r *Registry) {
		r.newEngine = factory
	}
}

// New creates a registry loading snapshots from store
func New(store SnapshotStore, opts ...Option) *Registry {
	r := &Registry{
		store:          store,
		defaultVersion: DefaultVersion,
		engines:        make(map[string]*search.Engine),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.newEngine == nil {
		r.newEngine = func() (*search.Engine, error) {
			return search.NewBleveEngine()
		}
	}
	return r
}

// Resolve returns the label a request for version is served under
func (r *Registry) Resolve(version string) string {
	if version != "" {
		return version
	}
	if r.detector != nil {
		if detected, ok := r.detector.DetectVersion(); ok && detected != "" {
			return detected
		}
	}
	return r.defaultVersion
}

// EnsureLoaded returns the engine for version, loading it on first use.
// The version snapshot is tried first, then the default snapshot. When
// neither loads the error is a *DocsUnavailableError.
// A cancelled ctx stops waiting but does not abort a load shared with
// other callers.
func (r *Registry) EnsureLoaded(ctx context.Context, version string) (*search.Engine, error) {
	label := r.Resolve(version)

	if engine, ok := r.lookup(label); ok {
		return engine, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := r.loads.DoChan(label, func() (interface{}, error) {
		// A load that finished between lookup and DoChan is reused
		if engine, ok := r.lookup(label); ok {
			return engine, nil
		}

		engine, err := r.load(loadCtx, label)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.engines[label] = engine
		r.mu.Unlock()
		return engine, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*search.Engine), nil
	}
}

func (r *Registry) lookup(label string) (*search.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[label]
	return engine, ok
}

// load reads the snapshot for label (or the default one) into a new engine
func (r *Registry) load(ctx context.Context, label string) (*search.Engine, error) {
	source := label
	records, err := r.store.Load(ctx, label)
	if errors.Is(err, ErrSnapshotNotFound) {
		log.Printf("Warning: no snapshot for version %s, using default snapshot", label)
		source = ""
		records, err = r.store.Load(ctx, "")
	}
	if err != nil {
		return nil, &DocsUnavailableError{Version: label, Err: err}
	}

	engine, err := r.newEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to create search engine: %w", err)
	}
	if err := engine.AddDocuments(records); err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to index documents for version %s: %w", label, err)
	}

	if stats, ok := r.buildStats(source); ok {
		log.Printf("✓ Loaded %d documents for version %s (built %s)", len(records), label, stats.BuildDate)
	} else {
		log.Printf("✓ Loaded %d documents for version %s", len(records), label)
	}
	return engine, nil
}

func (r *Registry) buildStats(source string) (stats indexing.BuildStats, ok bool) {
	s, isSource := r.store.(StatsSource)
	if !isSource {
		return stats, false
	}
	return s.BuildStats(source)
}

// Loaded returns the loaded version labels, sorted
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.engines))
	for label := range r.engines {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Close closes every loaded engine
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for label, engine := range r.engines {
		if err := engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close version %s: %w", label, err))
		}
		delete(r.engines, label)
	}
	return errors.Join(errs...)
}
