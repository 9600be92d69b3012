package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nextdocs/mcp-server/internal/cache"
	"github.com/nextdocs/mcp-server/internal/indexing"
	"github.com/nextdocs/mcp-server/internal/registry"
	"github.com/nextdocs/mcp-server/internal/runtime"
	"github.com/nextdocs/mcp-server/internal/search"
)

const (
	defaultLimit    = 10
	maxLimit        = 50
	maxCodeExamples = 2 // Code blocks returned per search result
)

// DocService serves the documentation tools, resources and prompts.
// It holds the version registry and the result cache; handlers never
// reach for package state.
type DocService struct {
	registry *registry.Registry
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewDocService creates a service over reg. c may be nil to disable caching.
func NewDocService(reg *registry.Registry, c *cache.Cache, cacheTTL time.Duration) *DocService {
	if c == nil {
		c = cache.New(nil)
	}
	return &DocService{registry: reg, cache: c, cacheTTL: cacheTTL}
}

// SearchDocsInput defines input for search_docs tool
type SearchDocsInput struct {
	Query               string `json:"query" jsonschema:"Search query, a question or keywords (e.g. How to use Server Components?)"`
	Version             string `json:"version,omitempty" jsonschema:"Documentation version: 13, 14, 15, 16 or latest (optional, detected from package.json)"`
	Category            string `json:"category,omitempty" jsonschema:"Filter by category: app-router, pages-router, api-reference, architecture or community (optional)"`
	Limit               int    `json:"limit,omitempty" jsonschema:"Maximum number of results, 1 to 50 (optional, defaults to 10)"`
	IncludeCodeExamples *bool  `json:"include_code_examples,omitempty" jsonschema:"Include code examples in results (optional, defaults to true)"`
}

// SearchDocsOutput defines output for search_docs tool
type SearchDocsOutput struct {
	Query   string      `json:"query"`
	Version string      `json:"version"`
	Results []DocResult `json:"results"`
	Count   int         `json:"count"`
	Cached  bool        `json:"cached"`
	Message string      `json:"message,omitempty"`
}

// DocResult is one ranked documentation page
type DocResult struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	URL         string               `json:"url"`
	Category    indexing.Category    `json:"category"`
	Version     string               `json:"version"`
	Description string               `json:"description"`
	Excerpt     string               `json:"excerpt"`
	Score       float64              `json:"score"`
	Relevance   search.Relevance     `json:"relevance"`
	Matches     []search.Match       `json:"matches"`
	CodeBlocks  []indexing.CodeBlock `json:"code_blocks,omitempty"`
}

// validateSearchInput normalizes input and rejects what the engine must never see
func validateSearchInput(input *SearchDocsInput) error {
	input.Query = strings.TrimSpace(input.Query)
	if input.Query == "" {
		return errors.New("query must not be empty")
	}

	if input.Limit == 0 {
		input.Limit = defaultLimit
	}
	if input.Limit < 1 || input.Limit > maxLimit {
		return fmt.Errorf("limit must be between 1 and %d, got %d", maxLimit, input.Limit)
	}

	if input.Category != "" && !indexing.Category(input.Category).IsValid() {
		return fmt.Errorf("unknown category %q (valid: %s)", input.Category, categoryNames())
	}

	return validateVersion(input.Version)
}

func validateVersion(version string) error {
	if version != "" && !runtime.IsVersionSupported(version) {
		return fmt.Errorf("unsupported version %q (available: %s)", version, strings.Join(runtime.AvailableVersions(), ", "))
	}
	return nil
}

func categoryNames() string {
	names := make([]string, 0, len(indexing.Categories))
	for _, c := range indexing.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// engineFor loads the engine of a version, turning a missing snapshot into
// a setup error the caller can tell apart from an empty search
func (s *DocService) engineFor(ctx context.Context, version string) (*search.Engine, string, error) {
	label := s.registry.Resolve(version)

	engine, err := s.registry.EnsureLoaded(ctx, label)
	if errors.Is(err, registry.ErrDocsUnavailable) {
		return nil, label, fmt.Errorf("documentation for version %s is not installed, run the indexer to build it: %w", label, err)
	}
	if err != nil {
		return nil, label, fmt.Errorf("failed to load documentation: %w", err)
	}
	return engine, label, nil
}

// SearchDocs searches the documentation of one version
func (s *DocService) SearchDocs(ctx context.Context, req *mcp.CallToolRequest, input SearchDocsInput) (*mcp.CallToolResult, SearchDocsOutput, error) {
	if err := validateSearchInput(&input); err != nil {
		return nil, SearchDocsOutput{}, err
	}

	includeCode := input.IncludeCodeExamples == nil || *input.IncludeCodeExamples

	engine, version, err := s.engineFor(ctx, input.Version)
	if err != nil {
		return nil, SearchDocsOutput{}, err
	}

	var category any
	if input.Category != "" {
		category = input.Category
	}
	key := cache.Key(input.Query, map[string]any{
		"category": category,
		"limit":    input.Limit,
		"version":  version,
		"code":     includeCode,
	})

	var output SearchDocsOutput
	if s.cache.Get(ctx, key, &output) == cache.Hit {
		output.Cached = true
		return nil, output, nil
	}

	// The engine was picked by version already, a fallback snapshot may
	// carry another version label
	results, err := engine.Search(ctx, search.SearchOptions{
		Query:               input.Query,
		Category:            indexing.Category(input.Category),
		Limit:               input.Limit,
		IncludeCodeExamples: includeCode,
	})
	if err != nil {
		return nil, SearchDocsOutput{}, fmt.Errorf("search failed: %w", err)
	}

	output = SearchDocsOutput{
		Query:   input.Query,
		Version: version,
		Results: make([]DocResult, 0, len(results)),
		Count:   len(results),
	}
	for _, r := range results {
		output.Results = append(output.Results, toDocResult(r, includeCode))
	}
	if len(results) == 0 {
		output.Message = fmt.Sprintf("No results found for %q. Try different keywords or check spelling.", input.Query)
	}

	s.cache.Set(ctx, key, output, s.cacheTTL)
	return nil, output, nil
}

func toDocResult(r search.SearchResult, includeCode bool) DocResult {
	doc := r.Document
	result := DocResult{
		ID:          doc.ID,
		Title:       doc.Title,
		URL:         doc.URL,
		Category:    doc.Category,
		Version:     doc.Version,
		Description: doc.Description,
		Excerpt:     doc.Excerpt,
		Score:       r.Score,
		Relevance:   r.Relevance,
		Matches:     r.Matches,
	}
	if includeCode && len(doc.CodeBlocks) > 0 {
		result.CodeBlocks = doc.CodeBlocks[:min(len(doc.CodeBlocks), maxCodeExamples)]
	}
	return result
}

// RegisterDocTools registers the documentation tools, resources and prompts
func RegisterDocTools(server *mcp.Server, svc *DocService) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_docs",
			Description: "Search the framework documentation with synonym expansion, category and version filters. Returns ranked pages with relevance and matching snippets.",
		},
		svc.SearchDocs,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_doc",
			Description: "Get the full content of a documentation page by ID or path (use search_docs to find IDs)",
		},
		svc.GetDoc,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_categories",
			Description: "List documentation categories with document counts and the available versions",
		},
		svc.ListCategories,
	)

	svc.registerResources(server)
	registerPrompts(server)

	log.Printf("✓ Documentation tools registered: 3 tools, 2 resources, %d prompts", len(prompts))
}

// Close releases every loaded index
func (s *DocService) Close() error {
	if err := s.registry.Close(); err != nil {
		log.Printf("Error closing doc indexes: %v", err)
		return err
	}
	log.Printf("✓ Doc indexes closed successfully")
	return nil
}
