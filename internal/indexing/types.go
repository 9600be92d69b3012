package indexing

// Category is the documentation section a page belongs to.
type Category string

const (
	CategoryAppRouter    Category = "app-router"
	CategoryPagesRouter  Category = "pages-router"
	CategoryAPIReference Category = "api-reference"
	CategoryArchitecture Category = "architecture"
	CategoryCommunity    Category = "community"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAppRouter,
	CategoryPagesRouter,
	CategoryAPIReference,
	CategoryArchitecture,
	CategoryCommunity,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DocumentRecord represents one documentation page in a version's corpus
type DocumentRecord struct {
	ID           string      `json:"id"`
	Path         string      `json:"path"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Category     Category    `json:"category"`
	Version      string      `json:"version"`
	Headings     []Heading   `json:"headings"`
	CodeBlocks   []CodeBlock `json:"codeBlocks"`
	Content      string      `json:"content"`               // Cleaned plain text used for scoring
	Excerpt      string      `json:"excerpt"`               // ~200 char preview
	URL          string      `json:"url"`
	LastModified string      `json:"lastModified,omitempty"`
}

// Heading is one entry of a page's outline
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// CodeBlock is a fenced code example extracted from a page
type CodeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Context  string `json:"context,omitempty"` // Info string metadata after the language
}

// BuildStats summarises one snapshot build
type BuildStats struct {
	TotalDocs         int              `json:"totalDocs"`
	TotalCodeExamples int              `json:"totalCodeExamples"`
	Categories        map[Category]int `json:"categories"`
	Version           string           `json:"version"`
	BuildDate         string           `json:"buildDate"`
	BuildDuration     string           `json:"buildDuration"`
}
