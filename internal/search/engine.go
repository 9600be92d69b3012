package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/nextdocs/mcp-server/internal/indexing"
)

// DefaultLimit is the number of results returned when none is requested
const DefaultLimit = 10

// SearchOptions holds a query and its optional filters
type SearchOptions struct {
	Query               string
	Version             string            // empty = any version
	Category            indexing.Category // empty = any category
	Limit               int               // <= 0 = DefaultLimit
	IncludeCodeExamples bool
}

// Relevance is the coarse classification of a result's score
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// Match is a field-level hit with its surrounding text
type Match struct {
	Field   string `json:"field"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

// SearchResult is one ranked document
type SearchResult struct {
	Document  indexing.DocumentRecord `json:"document"`
	Score     float64                 `json:"score"`
	Matches   []Match                 `json:"matches"`
	Relevance Relevance               `json:"relevance"`
}

// Search expands the query with synonyms, probes the index, filters and
// ranks the candidates. An empty result is not an error; the query is
// expected to be validated by the caller.
func (e *Engine) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	candidates, err := e.probe(ctx, opts.Query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, limit)
	accepted := make(map[string]bool)

	for _, hit := range candidates {
		if len(results) >= limit {
			break
		}
		if accepted[hit.ID] {
			continue
		}

		doc, ok := e.docs[hit.ID]
		if !ok {
			continue
		}
		if opts.Version != "" && doc.Version != opts.Version {
			continue
		}
		if opts.Category != "" && doc.Category != opts.Category {
			continue
		}
		accepted[hit.ID] = true

		score := calculateScore(doc, opts.Query, hit.Field)
		if !opts.IncludeCodeExamples {
			doc.CodeBlocks = []indexing.CodeBlock{}
		}

		results = append(results, SearchResult{
			Document:  doc,
			Score:     score,
			Matches:   extractMatches(doc, opts.Query),
			Relevance: determineRelevance(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// probe runs the query variants against the index. Later variants are
// only tried when the literal query found nothing.
func (e *Engine) probe(ctx context.Context, query string, limit int) ([]Hit, error) {
	var candidates []Hit

	for i, variant := range e.synonyms.Expand(query) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits, err := e.index.Search(variant, limit*2)
		if err != nil {
			return nil, fmt.Errorf("failed to search for %q: %w", variant, err)
		}
		candidates = append(candidates, hits...)

		if i == 0 && len(candidates) > 0 {
			break
		}
	}

	return candidates, nil
}
