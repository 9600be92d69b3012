package indexing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\([^\)]+\)`)
	fencedCodeRegex   = regexp.MustCompile("(?s)```.*?```")
	mdxCommentRegex   = regexp.MustCompile(`(?s)\{/\*.*?\*/\}`)
	tagRegex          = regexp.MustCompile(`<[^>]+>`)
	markupCharsRegex  = regexp.MustCompile("[#*_`]")
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	nonSlugCharsRegex = regexp.MustCompile(`[^\w-]`)
	mdExtensionRegex  = regexp.MustCompile(`\.mdx?$`)
	leadingSlashRegex = regexp.MustCompile(`^/+`)
	slashRunRegex     = regexp.MustCompile(`/+`)
)

// StripMarkdownLinks removes markdown link syntax, keeping only the text
// Example: "[Text](url)" -> "Text"
func StripMarkdownLinks(text string) string {
	return markdownLinkRegex.ReplaceAllString(text, "$1")
}

// CleanContent turns an MDX body into plain text for lexical scoring.
// Code fences and MDX comments are dropped, links keep their label.
func CleanContent(content string) string {
	content = fencedCodeRegex.ReplaceAllString(content, "")
	content = mdxCommentRegex.ReplaceAllString(content, "")
	content = tagRegex.ReplaceAllString(content, "")
	content = StripMarkdownLinks(content)
	content = markupCharsRegex.ReplaceAllString(content, "")
	content = whitespaceRegex.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// GenerateExcerpt returns at most maxLength characters of the cleaned body.
// Longer text is cut at the last word boundary and suffixed with "...".
func GenerateExcerpt(content string, maxLength int) string {
	cleaned := CleanContent(content)
	return truncateWords(cleaned, maxLength)
}

func truncateWords(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	// Cut on a rune boundary first
	cut, runes := 0, 0
	for i := range text {
		if runes == maxLength {
			cut = i
			break
		}
		runes++
	}
	prefix := text[:cut]

	// Prefer not to split a word when the cut landed inside one
	if text[cut] != ' ' {
		if i := strings.LastIndexByte(prefix, ' '); i > 0 {
			prefix = prefix[:i]
		}
	}

	return strings.TrimSpace(prefix) + "..."
}

// Slugify builds a heading anchor
// Example: "Fetching Data (Server)" -> "fetching-data-server"
func Slugify(text string) string {
	slug := strings.ToLower(text)
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	return nonSlugCharsRegex.ReplaceAllString(slug, "")
}

// GenerateID derives the stable document identifier from a relative path
// Example: "01-app/02-guides/caching.mdx" -> "01-app-02-guides-caching"
func GenerateID(relativePath string) string {
	id := mdExtensionRegex.ReplaceAllString(relativePath, "")
	id = strings.ReplaceAll(id, `\`, "/")
	id = leadingSlashRegex.ReplaceAllString(id, "")
	return slashRunRegex.ReplaceAllString(id, "-")
}

// URLPath converts a relative file path into the path segment of its public URL
func URLPath(relativePath string) string {
	p := mdExtensionRegex.ReplaceAllString(relativePath, "")
	p = strings.ReplaceAll(p, `\`, "/")
	p = leadingSlashRegex.ReplaceAllString(p, "")
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}

// IsDocumentFile reports whether name has a markdown or MDX extension
func IsDocumentFile(name string) bool {
	return mdExtensionRegex.MatchString(name)
}
