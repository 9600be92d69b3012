package indexing

// Extraction constants
const (
	// ExcerptLength is the size of the stored excerpt
	ExcerptLength = 200

	// DescriptionExcerptLength is used when a page has no front-matter description
	DescriptionExcerptLength = 150

	// UntitledTitle is the fallback when neither front matter nor body has a title
	UntitledTitle = "Untitled"

	// DefaultCodeLanguage tags fenced blocks without a language
	DefaultCodeLanguage = "text"

	// DefaultCategory is used when no path rule matches
	DefaultCategory = CategoryAppRouter

	// DefaultBaseURL is the canonical documentation site
	DefaultBaseURL = "https://nextjs.org/docs"

	// SnapshotSchemaVersion increments when the DocumentRecord layout changes
	SnapshotSchemaVersion = 1
)
