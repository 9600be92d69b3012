package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nextdocs/mcp-server/internal/indexing"
	"github.com/nextdocs/mcp-server/internal/runtime"
	"github.com/nextdocs/mcp-server/internal/search"
)

// categoryDescriptions explains each category for list_categories
var categoryDescriptions = map[indexing.Category]string{
	indexing.CategoryAppRouter:    "App Router documentation (React Server Components, Server Actions, etc.)",
	indexing.CategoryPagesRouter:  "Pages Router documentation (getStaticProps, getServerSideProps, etc.)",
	indexing.CategoryAPIReference: "Complete API reference for all features",
	indexing.CategoryArchitecture: "Architecture and internals documentation",
	indexing.CategoryCommunity:    "Community guides and contribution documentation",
}

// GetDocInput defines input for get_doc tool
type GetDocInput struct {
	DocID   string `json:"doc_id" jsonschema:"Document ID or path (e.g. 01-app-getting-started-installation)"`
	Version string `json:"version,omitempty" jsonschema:"Documentation version (optional, detected from package.json)"`
}

// GetDocOutput defines output for get_doc tool
type GetDocOutput struct {
	Document indexing.DocumentRecord `json:"document"`
	Version  string                  `json:"version"`
}

// GetDoc returns the full record of one page
func (s *DocService) GetDoc(ctx context.Context, req *mcp.CallToolRequest, input GetDocInput) (*mcp.CallToolResult, GetDocOutput, error) {
	docID := strings.TrimSpace(input.DocID)
	if docID == "" {
		return nil, GetDocOutput{}, fmt.Errorf("doc_id must not be empty")
	}
	if err := validateVersion(input.Version); err != nil {
		return nil, GetDocOutput{}, err
	}

	engine, version, err := s.engineFor(ctx, input.Version)
	if err != nil {
		return nil, GetDocOutput{}, err
	}

	doc, ok := lookupDocument(engine, docID)
	if !ok {
		return nil, GetDocOutput{}, fmt.Errorf("document not found: %s. Use search_docs to find document IDs", docID)
	}

	return nil, GetDocOutput{Document: doc, Version: version}, nil
}

// lookupDocument accepts an ID or the page's relative path
func lookupDocument(engine *search.Engine, docID string) (indexing.DocumentRecord, bool) {
	if doc, ok := engine.GetDocument(docID); ok {
		return doc, true
	}
	return engine.GetDocument(indexing.GenerateID(docID))
}

// ListCategoriesInput defines input for list_categories tool
type ListCategoriesInput struct {
	Version string `json:"version,omitempty" jsonschema:"Documentation version (optional, detected from package.json)"`
}

// ListCategoriesOutput defines output for list_categories tool
type ListCategoriesOutput struct {
	Version           string         `json:"version"`
	TotalDocuments    int            `json:"total_documents"`
	Categories        []CategoryInfo `json:"categories"`
	DocVersions       []string       `json:"doc_versions"` // Version labels of the loaded records
	AvailableVersions []string       `json:"available_versions"`
}

// CategoryInfo describes one category
type CategoryInfo struct {
	Name        indexing.Category `json:"name"`
	Description string            `json:"description"`
	Documents   int               `json:"documents"`
}

// ListCategories reports the categories and statistics of one version
func (s *DocService) ListCategories(ctx context.Context, req *mcp.CallToolRequest, input ListCategoriesInput) (*mcp.CallToolResult, ListCategoriesOutput, error) {
	if err := validateVersion(input.Version); err != nil {
		return nil, ListCategoriesOutput{}, err
	}

	engine, version, err := s.engineFor(ctx, input.Version)
	if err != nil {
		return nil, ListCategoriesOutput{}, err
	}

	stats := engine.GetStats()
	output := ListCategoriesOutput{
		Version:           version,
		TotalDocuments:    stats.TotalDocuments,
		Categories:        make([]CategoryInfo, 0, len(indexing.Categories)),
		DocVersions:       stats.Versions,
		AvailableVersions: runtime.AvailableVersions(),
	}
	for _, c := range indexing.Categories {
		output.Categories = append(output.Categories, CategoryInfo{
			Name:        c,
			Description: categoryDescriptions[c],
			Documents:   stats.Categories[c],
		})
	}

	return nil, output, nil
}

// renderMarkdown formats a page for the docs resource
func renderMarkdown(doc indexing.DocumentRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	fmt.Fprintf(&sb, "**Category:** %s | **Version:** %s\n", doc.Category, doc.Version)
	fmt.Fprintf(&sb, "**URL:** %s\n\n", doc.URL)
	if doc.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", doc.Description)
	}
	fmt.Fprintf(&sb, "%s\n", doc.Content)

	for i, block := range doc.CodeBlocks {
		if i == 0 {
			fmt.Fprintf(&sb, "\n## Code Examples (%d)\n", len(doc.CodeBlocks))
		}
		fmt.Fprintf(&sb, "\n```%s\n%s\n```\n", block.Language, block.Code)
	}

	for i, h := range doc.Headings {
		if i == 0 {
			sb.WriteString("\n## Table of Contents\n")
		}
		fmt.Fprintf(&sb, "%s- %s\n", strings.Repeat("  ", max(h.Level-1, 0)), h.Text)
	}

	return sb.String()
}
