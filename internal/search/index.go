package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/truncate"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

// Indexed fields, in the order they are probed
const (
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldDescription = "description"
)

var indexedFields = []string{FieldTitle, FieldContent, FieldDescription}

const (
	forwardAnalyzer = "forward"
	queryAnalyzer   = "forward_query"
	forwardFilter   = "forward_ngram"
	truncateFilter  = "forward_truncate"
	maxGramLength   = 40
	batchSize       = 100
)

// Hit is one candidate returned by an index probe
type Hit struct {
	ID    string
	Field string // Field that produced the candidate
}

// Index abstracts the multi-field full-text index behind the engine.
// Implementations only need to answer which documents match a query
// variant and on which field.
type Index interface {
	// Add indexes or replaces a document
	Add(doc indexing.DocumentRecord) error

	// Search returns up to limit candidates per field, grouped by field
	// in probe order (title, content, description)
	Search(text string, limit int) ([]Hit, error)

	// DocCount returns the number of documents in the index
	DocCount() (uint64, error)

	// Close closes the index
	Close() error
}

// BatchIndex is implemented by indexes that can ingest many documents at once
type BatchIndex interface {
	AddBatch(docs []indexing.DocumentRecord) error
}

// bleveIndex implements Index on an in-memory bleve index
type bleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an in-memory bleve index with forward (prefix)
// tokenization on title, content and description.
func NewBleveIndex() (Index, error) {
	m, err := newIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to build index mapping: %w", err)
	}

	index, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &bleveIndex{index: index}, nil
}

func newIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomTokenFilter(forwardFilter, map[string]interface{}{
		"type": edgengram.Name,
		"back": false,
		"min":  1.0,
		"max":  float64(maxGramLength),
	}); err != nil {
		return nil, err
	}

	if err := im.AddCustomTokenFilter(truncateFilter, map[string]interface{}{
		"type":   truncate.Name,
		"length": float64(maxGramLength),
	}); err != nil {
		return nil, err
	}

	if err := im.AddCustomAnalyzer(forwardAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, forwardFilter},
	}); err != nil {
		return nil, err
	}

	// Queries are not n-grammed, "serv" must match the stored prefix "serv".
	// Longer words are cut to the longest stored prefix.
	if err := im.AddCustomAnalyzer(queryAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, truncateFilter},
	}); err != nil {
		return nil, err
	}

	doc := bleve.NewDocumentStaticMapping()
	for _, field := range indexedFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = forwardAnalyzer
		fm.Store = false
		fm.IncludeTermVectors = false
		doc.AddFieldMappingsAt(field, fm)
	}
	im.DefaultMapping = doc

	return im, nil
}

// indexedFieldsOf returns the searchable projection of a record
func indexedFieldsOf(doc indexing.DocumentRecord) map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:       doc.Title,
		FieldContent:     doc.Content,
		FieldDescription: doc.Description,
	}
}

func (b *bleveIndex) Add(doc indexing.DocumentRecord) error {
	return b.index.Index(doc.ID, indexedFieldsOf(doc))
}

func (b *bleveIndex) AddBatch(docs []indexing.DocumentRecord) error {
	batch := b.index.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, indexedFieldsOf(doc)); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.ID, err)
		}

		// Submit batch every 100 documents
		if (i+1)%batchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to index batch: %w", err)
			}
			batch = b.index.NewBatch()
		}
	}

	// Submit remaining
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to index final batch: %w", err)
		}
	}
	return nil
}

func (b *bleveIndex) Search(text string, limit int) ([]Hit, error) {
	var hits []Hit

	for _, field := range indexedFields {
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		q.Analyzer = queryAnalyzer
		q.SetOperator(query.MatchQueryOperatorAnd)

		req := bleve.NewSearchRequestOptions(q, limit, 0, false)
		req.SortBy([]string{"-_score", "_id"})

		res, err := b.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("search on %s failed: %w", field, err)
		}

		for _, hit := range res.Hits {
			hits = append(hits, Hit{ID: hit.ID, Field: field})
		}
	}

	return hits, nil
}

func (b *bleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *bleveIndex) Close() error {
	return b.index.Close()
}
