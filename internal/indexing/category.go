package indexing

import "strings"

// categoryRule maps a top-level folder marker to a category
type categoryRule struct {
	marker   string
	category Category
}

// categoryRules are checked in order, first match wins
var categoryRules = []categoryRule{
	{marker: "01-app", category: CategoryAppRouter},
	{marker: "02-pages", category: CategoryPagesRouter},
	{marker: "03-architecture", category: CategoryArchitecture},
	{marker: "04-community", category: CategoryCommunity},
}

// apiReferenceMarkers put a page in the API reference wherever they appear
var apiReferenceMarkers = []string{"api-reference", "03-api-reference", "04-api-reference"}

// CategoryFromPath classifies a page by the folders of its relative path.
// An API reference folder anywhere in the path overrides the section folder.
func CategoryFromPath(relativePath string) Category {
	normalized := strings.ReplaceAll(relativePath, `\`, "/")

	for _, marker := range apiReferenceMarkers {
		if hasSegment(normalized, marker) {
			return CategoryAPIReference
		}
	}

	for _, rule := range categoryRules {
		if hasSegment(normalized, rule.marker) {
			return rule.category
		}
	}

	return DefaultCategory
}

// hasSegment reports whether marker is a directory segment of path
func hasSegment(path, marker string) bool {
	return strings.HasPrefix(path, marker+"/") || strings.Contains(path, "/"+marker+"/")
}
