package search

import (
	"fmt"
	"sync"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

// Engine pairs a document store with its full-text index for one version
type Engine struct {
	mu       sync.RWMutex
	index    Index
	docs     map[string]indexing.DocumentRecord
	order    []string // ids in first-insertion order
	synonyms Synonyms
}

// Stats summarises the documents held by an engine
type Stats struct {
	TotalDocuments int                       `json:"totalDocuments"`
	Categories     map[indexing.Category]int `json:"categories"`
	Versions       []string                  `json:"versions"`
}

// Option configures an Engine
type Option func(*Engine)

// WithSynonyms replaces the built-in synonym table
func WithSynonyms(synonyms Synonyms) Option {
	return func(e *Engine) {
		e.synonyms = synonyms
	}
}

// NewEngine creates an engine over the given index
func NewEngine(index Index, opts ...Option) *Engine {
	e := &Engine{
		index: index,
		docs:  make(map[string]indexing.DocumentRecord),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.synonyms == nil {
		e.synonyms = DefaultSynonyms()
	}
	return e
}

// NewBleveEngine creates an engine backed by an in-memory bleve index
func NewBleveEngine(opts ...Option) (*Engine, error) {
	index, err := NewBleveIndex()
	if err != nil {
		return nil, err
	}
	return NewEngine(index, opts...), nil
}

// AddDocument inserts or replaces a record and (re)indexes it
func (e *Engine) AddDocument(doc indexing.DocumentRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.index.Add(doc); err != nil {
		return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
	}
	e.store(doc)
	return nil
}

// AddDocuments inserts or replaces many records
func (e *Engine) AddDocuments(docs []indexing.DocumentRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if batcher, ok := e.index.(BatchIndex); ok {
		if err := batcher.AddBatch(docs); err != nil {
			return err
		}
	} else {
		for _, doc := range docs {
			if err := e.index.Add(doc); err != nil {
				return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
			}
		}
	}

	for _, doc := range docs {
		e.store(doc)
	}
	return nil
}

// store records doc in the lookup; caller holds the write lock
func (e *Engine) store(doc indexing.DocumentRecord) {
	if _, exists := e.docs[doc.ID]; !exists {
		e.order = append(e.order, doc.ID)
	}
	e.docs[doc.ID] = doc
}

// GetDocument returns the record with the given id
func (e *Engine) GetDocument(id string) (indexing.DocumentRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, ok := e.docs[id]
	return doc, ok
}

// GetAllDocuments returns every record in insertion order
func (e *Engine) GetAllDocuments() []indexing.DocumentRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docs := make([]indexing.DocumentRecord, 0, len(e.order))
	for _, id := range e.order {
		docs = append(docs, e.docs[id])
	}
	return docs
}

// GetStats reports document counts per category and the version labels present
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := Stats{
		TotalDocuments: len(e.docs),
		Categories:     make(map[indexing.Category]int),
		Versions:       []string{},
	}

	seen := make(map[string]bool)
	for _, id := range e.order {
		doc := e.docs[id]
		stats.Categories[doc.Category]++
		if !seen[doc.Version] {
			seen[doc.Version] = true
			stats.Versions = append(stats.Versions, doc.Version)
		}
	}
	return stats
}

// Close releases the underlying index
func (e *Engine) Close() error {
	return e.index.Close()
}
