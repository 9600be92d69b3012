package indexing

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExtractOptions carries the corpus-level values stamped on every record
type ExtractOptions struct {
	Version string
	BaseURL string // Version-aware docs root, e.g. https://nextjs.org/docs/v14
}

// frontMatter holds the keys we read from a page's YAML header
type frontMatter struct {
	Title       string
	Description string
}

// ExtractFile reads a page from disk and extracts it
func ExtractFile(filePath, relativePath string, opts ExtractOptions) (DocumentRecord, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("failed to read %s: %w", relativePath, err)
	}
	return Extract(raw, relativePath, opts)
}

// Extract parses one MDX/Markdown page into a DocumentRecord
func Extract(raw []byte, relativePath string, opts ExtractOptions) (DocumentRecord, error) {
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return DocumentRecord{}, fmt.Errorf("failed to parse front matter of %s: %w", relativePath, err)
	}

	source := []byte(body)
	tree := markdown.Parser().Parse(text.NewReader(source))

	headings := extractHeadings(tree, source)
	codeBlocks := extractCodeBlocks(tree, source)

	title := fm.Title
	if title == "" {
		title = firstTitle(tree, source)
	}

	description := fm.Description
	if description == "" {
		description = GenerateExcerpt(body, DescriptionExcerptLength)
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	url := strings.TrimSuffix(baseURL, "/")
	if p := URLPath(relativePath); p != "" {
		url += "/" + p
	}

	return DocumentRecord{
		ID:          GenerateID(relativePath),
		Path:        relativePath,
		Title:       title,
		Description: description,
		Category:    CategoryFromPath(relativePath),
		Version:     opts.Version,
		Headings:    headings,
		CodeBlocks:  codeBlocks,
		Content:     CleanContent(body),
		Excerpt:     GenerateExcerpt(body, ExcerptLength),
		URL:         url,
	}, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body
func splitFrontMatter(raw []byte) (frontMatter, string, error) {
	var fm frontMatter

	content := string(bytes.TrimPrefix(raw, []byte("\ufeff")))
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return fm, content, nil
	}

	rest := content[len("---"):]
	end := strings.Index(rest, "\n---")
	if end == -1 {
		// No closing delimiter: treat the whole file as body
		return fm, content, nil
	}

	header := rest[:end]
	body := rest[end+len("\n---"):]
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	var values map[string]any
	if err := yaml.Unmarshal([]byte(header), &values); err != nil {
		return fm, "", err
	}
	fm.Title = scalarString(values["title"])
	fm.Description = scalarString(values["description"])

	return fm, body, nil
}

// scalarString renders a YAML scalar (title: 404 decodes as an int).
// Maps, lists and null yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t)
	}
	return ""
}

// extractHeadings collects every heading in document order
func extractHeadings(tree ast.Node, source []byte) []Heading {
	headings := []Heading{}

	ast.Walk(tree, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		// Only direct text children count, inline code and links are skipped
		var sb strings.Builder
		for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
			sb.WriteString(nodeText(c, source))
		}

		if value := sb.String(); value != "" {
			headings = append(headings, Heading{
				Level: heading.Level,
				Text:  value,
				Slug:  Slugify(value),
			})
		}
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// nodeText returns the rendered value of a text-bearing node, with
// backslash escapes and character references resolved
func nodeText(n ast.Node, source []byte) string {
	switch t := n.(type) {
	case *ast.Text:
		value := util.UnescapePunctuations(t.Segment.Value(source))
		value = util.ResolveNumericReferences(value)
		return string(util.ResolveEntityNames(value))
	case *ast.String:
		return string(t.Value)
	}
	return ""
}

// extractCodeBlocks collects every non-empty fenced code block
func extractCodeBlocks(tree ast.Node, source []byte) []CodeBlock {
	blocks := []CodeBlock{}

	ast.Walk(tree, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			code.Write(segment.Value(source))
		}
		value := strings.TrimSuffix(code.String(), "\n")
		if value == "" {
			return ast.WalkSkipChildren, nil
		}

		language := string(fenced.Language(source))
		var context string
		if fenced.Info != nil {
			info := string(fenced.Info.Segment.Value(source))
			context = strings.TrimSpace(strings.TrimPrefix(info, language))
		}
		if language == "" {
			language = DefaultCodeLanguage
		}

		blocks = append(blocks, CodeBlock{
			Language: language,
			Code:     value,
			Context:  context,
		})
		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// firstTitle returns the text of the first level-1 heading, or UntitledTitle
func firstTitle(tree ast.Node, source []byte) string {
	title := ""

	ast.Walk(tree, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		heading, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level != 1 {
			return ast.WalkSkipChildren, nil
		}

		// Title keeps inline code and link labels
		var sb strings.Builder
		_ = ast.Walk(heading, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering {
				sb.WriteString(nodeText(c, source))
			}
			return ast.WalkContinue, nil
		})
		if t := strings.TrimSpace(sb.String()); t != "" {
			title = t
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	if title == "" {
		return UntitledTitle
	}
	return title
}
