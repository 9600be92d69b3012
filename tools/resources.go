package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nextdocs/mcp-server/internal/search"
)

const (
	uriScheme     = "nextdocs://"
	docsURIPrefix = uriScheme + "docs/"
	searchURIBase = uriScheme + "search"
	resourceLimit = 10
)

// registerResources registers the page and search resources
func (s *DocService) registerResources(server *mcp.Server) {
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: docsURIPrefix + "{id}",
		Name:        "docs",
		Description: "A documentation page of the default version, as markdown",
		MIMEType:    "text/markdown",
	}, s.handleDocResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: searchURIBase + "{?q}",
		Name:        "docs-search",
		Description: "Top documentation matches for a query",
		MIMEType:    "application/json",
	}, s.handleSearchResource)
}

// handleDocResource returns one page as markdown
func (s *DocService) handleDocResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := strings.TrimPrefix(req.Params.URI, docsURIPrefix)
	if id == "" || id == req.Params.URI {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	engine, _, err := s.engineFor(ctx, "")
	if err != nil {
		return nil, err
	}

	doc, ok := lookupDocument(engine, id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     renderMarkdown(doc),
		}},
	}, nil
}

// searchMatch is the compact result of the search resource
type searchMatch struct {
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Excerpt   string           `json:"excerpt"`
	Category  string           `json:"category"`
	Relevance search.Relevance `json:"relevance"`
}

// handleSearchResource runs a search from the q parameter
func (s *DocService) handleSearchResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	u, err := url.Parse(req.Params.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URI: %w", err)
	}
	query := strings.TrimSpace(u.Query().Get("q"))
	if query == "" {
		return nil, fmt.Errorf("missing q parameter in %s", req.Params.URI)
	}

	engine, _, err := s.engineFor(ctx, "")
	if err != nil {
		return nil, err
	}

	results, err := engine.Search(ctx, search.SearchOptions{Query: query, Limit: resourceLimit})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]searchMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, searchMatch{
			Title:     r.Document.Title,
			URL:       r.Document.URL,
			Excerpt:   r.Document.Excerpt,
			Category:  string(r.Document.Category),
			Relevance: r.Relevance,
		})
	}

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling results: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
